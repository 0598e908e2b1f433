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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `order_no, item_id, qty, price, ` + auditColumns

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (tabla customer_order).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste una orden. order_no repetido → ErrDuplicate.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO customer_order (order_no, item_id, qty, price, create_by, create_date, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, false)`
	_, err := r.q.Exec(ctx, query, o.OrderNo, o.ItemID, o.Qty, o.Price, o.CreatedBy, o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByOrderNo obtiene una orden por su número (incluye eliminadas).
func (r *OrderRepo) GetByOrderNo(ctx context.Context, orderNo string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM customer_order WHERE order_no = $1`, orderNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ExistsByOrderNo indica si el número ya está tomado, aunque la orden esté eliminada.
func (r *OrderRepo) ExistsByOrderNo(ctx context.Context, orderNo string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customer_order WHERE order_no = $1)`, orderNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists order: %w", err)
	}
	return exists, nil
}

// Update reescribe ítem, qty, precio y auditoría.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE customer_order SET item_id = $2, qty = $3, price = $4, update_by = $5, update_date = $6,
			delete_by = $7, delete_date = $8, is_deleted = $9
		WHERE order_no = $1`
	_, err := r.q.Exec(ctx, query,
		o.OrderNo, o.ItemID, o.Qty, o.Price, o.UpdatedBy, o.UpdatedAt,
		o.DeletedBy, o.DeletedAt, o.IsDeleted(),
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

// ListActive lista órdenes no eliminadas con paginación y devuelve el total.
func (r *OrderRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.Order, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM customer_order WHERE is_deleted = false`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+orderColumns+` FROM customer_order WHERE is_deleted = false ORDER BY create_date, order_no LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	audit, apply := auditDest(&o.Record)
	if err := row.Scan(append([]any{&o.OrderNo, &o.ItemID, &o.Qty, &o.Price}, audit...)...); err != nil {
		return nil, err
	}
	apply()
	return &o, nil
}
