package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, price, ` + auditColumns

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un ítem y asigna el ID generado por la BD.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO item (name, price, create_by, create_date, is_deleted)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id`
	if err := r.q.QueryRow(ctx, query, item.Name, item.Price, item.CreatedBy, item.CreatedAt).Scan(&item.ID); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID (incluye eliminados).
func (r *ItemRepo) GetByID(ctx context.Context, id int) (*entity.Item, error) {
	return r.get(ctx, `SELECT `+itemColumns+` FROM item WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del ítem (SELECT FOR UPDATE) hasta el fin de la transacción.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id int) (*entity.Item, error) {
	return r.get(ctx, `SELECT `+itemColumns+` FROM item WHERE id = $1 FOR UPDATE`, id)
}

func (r *ItemRepo) get(ctx context.Context, query string, id int) (*entity.Item, error) {
	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update reescribe nombre, precio y auditoría.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE item SET name = $2, price = $3, update_by = $4, update_date = $5,
			delete_by = $6, delete_date = $7, is_deleted = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Price, item.UpdatedBy, item.UpdatedAt,
		item.DeletedBy, item.DeletedAt, item.IsDeleted(),
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// ListActive lista ítems no eliminados con paginación y devuelve el total.
func (r *ItemRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.Item, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM item WHERE is_deleted = false`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+itemColumns+` FROM item WHERE is_deleted = false ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, item)
	}
	return list, total, rows.Err()
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	audit, apply := auditDest(&it.Record)
	if err := row.Scan(append([]any{&it.ID, &it.Name, &it.Price}, audit...)...); err != nil {
		return nil, err
	}
	apply()
	return &it, nil
}
