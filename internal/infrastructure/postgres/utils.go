package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// auditColumns columnas de auditoría comunes a item, inventory y customer_order.
const auditColumns = `create_by, create_date, update_by, update_date, delete_by, delete_date, is_deleted`

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: el ítem referenciado no existe.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// auditDest destinos de Scan para auditColumns; apply vuelca is_deleted al Lifecycle.
func auditDest(rec *entity.Record) (dest []any, apply func()) {
	var isDeleted bool
	dest = []any{
		&rec.CreatedBy, &rec.CreatedAt,
		&rec.UpdatedBy, &rec.UpdatedAt,
		&rec.DeletedBy, &rec.DeletedAt,
		&isDeleted,
	}
	return dest, func() { rec.Lifecycle = entity.LifecycleFromDeleted(isDeleted) }
}
