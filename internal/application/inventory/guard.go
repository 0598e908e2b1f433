package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/lock"
)

// Guard serialización opcional de mutaciones por ítem. El valor cero no bloquea nada
// (lectura y escritura sin lock, como el motor de stock por defecto).
type Guard struct {
	locker  lock.Locker
	rowLock bool
}

// NewGuard locker serializa antes de abrir la tx; rowLock carga el ítem con SELECT FOR UPDATE.
func NewGuard(locker lock.Locker, rowLock bool) Guard {
	return Guard{locker: locker, rowLock: rowLock}
}

// Acquire toma los locks de los ítems; la función devuelta los libera.
func (g Guard) Acquire(ctx context.Context, itemIDs ...int) (func(), error) {
	if g.locker == nil {
		return func() {}, nil
	}
	return lock.LockItems(ctx, g.locker, itemIDs...)
}

// LoadItem lee el ítem dentro de la tx; inexistente → ErrNotFound.
func (g Guard) LoadItem(ctx context.Context, repo repository.ItemRepository, id int) (*entity.Item, error) {
	var (
		item *entity.Item
		err  error
	)
	if g.rowLock {
		item, err = repo.GetForUpdate(ctx, id)
	} else {
		item, err = repo.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("ítem %d: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

// LoadItems carga varios ítems en orden ascendente de id, para que los SELECT FOR UPDATE
// de dos ediciones cruzadas no se bloqueen mutuamente.
func (g Guard) LoadItems(ctx context.Context, repo repository.ItemRepository, ids ...int) (map[int]*entity.Item, error) {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	out := make(map[int]*entity.Item, len(sorted))
	for _, id := range sorted {
		if _, ok := out[id]; ok {
			continue
		}
		item, err := g.LoadItem(ctx, repo, id)
		if err != nil {
			return nil, err
		}
		out[id] = item
	}
	return out, nil
}
