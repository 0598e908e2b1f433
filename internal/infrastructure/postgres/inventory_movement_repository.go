package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, item_id, qty, type, ` + auditColumns

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento y asigna su ID.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory (item_id, qty, type, create_by, create_date, is_deleted)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, m.ItemID, m.Qty, string(m.Type), m.CreatedBy, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("ítem %d: %w", m.ItemID, domain.ErrNotFound)
		}
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID (incluye eliminados).
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id int) (*entity.InventoryMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM inventory WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// Update reescribe ítem, qty, tipo y auditoría.
func (r *InventoryMovementRepo) Update(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		UPDATE inventory SET item_id = $2, qty = $3, type = $4, update_by = $5, update_date = $6,
			delete_by = $7, delete_date = $8, is_deleted = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ItemID, m.Qty, string(m.Type), m.UpdatedBy, m.UpdatedAt,
		m.DeletedBy, m.DeletedAt, m.IsDeleted(),
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	return nil
}

// ListActive lista movimientos no eliminados con paginación y devuelve el total.
func (r *InventoryMovementRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory WHERE is_deleted = false`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+movementColumns+` FROM inventory WHERE is_deleted = false ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// SumQtyByItemAndType suma qty de los movimientos activos del ítem y tipo; 0 si no hay filas.
func (r *InventoryMovementRepo) SumQtyByItemAndType(ctx context.Context, itemID int, t entity.MovementType) (int, error) {
	query := `SELECT COALESCE(SUM(qty), 0) FROM inventory WHERE item_id = $1 AND type = $2 AND is_deleted = false`
	var total int64
	if err := r.q.QueryRow(ctx, query, itemID, string(t)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return int(total), nil
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	var t string
	audit, apply := auditDest(&m.Record)
	if err := row.Scan(append([]any{&m.ID, &m.ItemID, &m.Qty, &t}, audit...)...); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(t)
	apply()
	return &m, nil
}
