package memory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner emula transacciones: una a la vez y, si fn falla, el store vuelve al estado previo.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con los repos del store; error → restaura la copia tomada al inicio.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.InventoryMovementRepository,
	orderRepo repository.OrderRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	s := r.store
	snap := s.snapshot()
	if err := fn(&ItemRepo{s: s, inTx: true}, &InventoryMovementRepo{s: s, inTx: true}, &OrderRepo{s: s, inTx: true}); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}
