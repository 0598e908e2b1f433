package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia del libro de movimientos.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, id int) (*entity.InventoryMovement, error)
	Update(ctx context.Context, movement *entity.InventoryMovement) error
	ListActive(ctx context.Context, limit, offset int) ([]*entity.InventoryMovement, int, error)
	// SumQtyByItemAndType suma qty de movimientos no eliminados del ítem y tipo; 0 si no hay filas.
	SumQtyByItemAndType(ctx context.Context, itemID int, movementType entity.MovementType) (int, error)
}
