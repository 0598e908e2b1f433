package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// LedgerSums fuente de las sumas por ítem y tipo (movimientos no eliminados).
type LedgerSums interface {
	SumQtyByItemAndType(ctx context.Context, itemID int, movementType entity.MovementType) (int, error)
}

// Balance totales de entradas y salidas activas de un ítem.
type Balance struct {
	TopUp      int
	Withdrawal int
}

// Available stock disponible: entradas - salidas.
func (b Balance) Available() int { return b.TopUp - b.Withdrawal }

// BalanceCalculator calcula el saldo de un ítem agregando el libro en cada llamada (sin caché).
type BalanceCalculator struct {
	sums LedgerSums
}

// NewBalanceCalculator construye el calculador.
func NewBalanceCalculator(sums LedgerSums) *BalanceCalculator {
	return &BalanceCalculator{sums: sums}
}

// Balance suma qty de movimientos activos por tipo. Sin filas → 0.
func (c *BalanceCalculator) Balance(ctx context.Context, itemID int) (Balance, error) {
	topUp, err := c.sums.SumQtyByItemAndType(ctx, itemID, entity.MovementTypeTopUp)
	if err != nil {
		return Balance{}, fmt.Errorf("sumar entradas del ítem %d: %w", itemID, err)
	}
	withdrawal, err := c.sums.SumQtyByItemAndType(ctx, itemID, entity.MovementTypeWithdrawal)
	if err != nil {
		return Balance{}, fmt.Errorf("sumar salidas del ítem %d: %w", itemID, err)
	}
	return Balance{TopUp: topUp, Withdrawal: withdrawal}, nil
}
