package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Ledger lo que el validador necesita del libro: sumas y lectura por id.
type Ledger interface {
	LedgerSums
	GetByID(ctx context.Context, id int) (*entity.InventoryMovement, error)
}

// StockValidator verifica que entradas >= salidas tras aplicar un cambio propuesto. Nunca escribe.
type StockValidator struct {
	ledger  Ledger
	balance *BalanceCalculator
}

// NewStockValidator construye el validador sobre el libro dado (normalmente atado a la transacción).
func NewStockValidator(ledger Ledger) *StockValidator {
	return &StockValidator{ledger: ledger, balance: NewBalanceCalculator(ledger)}
}

// Validate simula el movimiento propuesto. Si excludeMovementID apunta a un movimiento activo del mismo
// ítem, su qty se descuenta del total de su tipo antes de sumar la propuesta; si no se encuentra o
// pertenece a otro ítem no ajusta nada.
// Available del error es el saldo resultante (entradas' - salidas').
func (v *StockValidator) Validate(
	ctx context.Context,
	itemID, proposedQty int,
	proposedType entity.MovementType,
	excludeMovementID *int,
) error {
	b, err := v.balance.Balance(ctx, itemID)
	if err != nil {
		return err
	}

	if excludeMovementID != nil {
		existing, err := v.ledger.GetByID(ctx, *excludeMovementID)
		if err != nil {
			return fmt.Errorf("leer movimiento %d: %w", *excludeMovementID, err)
		}
		if existing != nil && existing.ItemID == itemID && existing.IsActive() {
			b = apply(b, existing.Type, -existing.Qty)
		}
	}

	b = apply(b, proposedType, proposedQty)
	if b.TopUp < b.Withdrawal {
		return &domain.InsufficientStockError{
			ItemID:    itemID,
			Available: b.Available(),
			Required:  proposedQty,
		}
	}
	return nil
}

// ValidateAvailability acepta si entradas - salidas >= requiredQty.
func (v *StockValidator) ValidateAvailability(ctx context.Context, itemID, requiredQty int) error {
	b, err := v.balance.Balance(ctx, itemID)
	if err != nil {
		return err
	}
	if b.Available() < requiredQty {
		return &domain.InsufficientStockError{
			ItemID:    itemID,
			Available: b.Available(),
			Required:  requiredQty,
		}
	}
	return nil
}

func apply(b Balance, t entity.MovementType, qty int) Balance {
	switch t {
	case entity.MovementTypeTopUp:
		b.TopUp += qty
	case entity.MovementTypeWithdrawal:
		b.Withdrawal += qty
	}
	return b
}
