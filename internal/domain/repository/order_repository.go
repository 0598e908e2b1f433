package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order. La clave de negocio es OrderNo.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByOrderNo(ctx context.Context, orderNo string) (*entity.Order, error)
	ExistsByOrderNo(ctx context.Context, orderNo string) (bool, error)
	Update(ctx context.Context, order *entity.Order) error
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Order, int, error)
}
