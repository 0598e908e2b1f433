package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
// GetByID devuelve (nil, nil) si no existe; incluye ítems eliminados.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id int) (*entity.Item, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Item, int, error)
}
