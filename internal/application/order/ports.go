package order

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner transacción con los repos de ítems, libro y órdenes (alta de orden + salida atómicas).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		movRepo repository.InventoryMovementRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// SlipGenerator genera el PDF del comprobante de una orden.
type SlipGenerator interface {
	GenerateOrderSlip(ctx context.Context, order *entity.Order, item *entity.Item) ([]byte, error)
}
