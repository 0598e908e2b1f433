// Package lock serializa mutaciones de stock por ítem.
//
// Por defecto el motor de stock lee el saldo y luego escribe sin bloqueo (check-then-act).
// LocalLocker y RedisLocker son endurecimientos opcionales que se activan con STOCK_LOCK_MODE.
package lock

import (
	"context"
	"errors"
	"sort"
)

// ErrBusy se devuelve cuando no se pudo adquirir el lock del ítem.
var ErrBusy = errors.New("lock del ítem ocupado, intente más tarde")

// Locker adquiere un lock exclusivo por ítem. La función devuelta libera el lock.
type Locker interface {
	Lock(ctx context.Context, itemID int) (unlock func(), err error)
}

// LockItems adquiere los locks de varios ítems en orden ascendente (evita deadlocks
// cuando una edición mueve un registro de un ítem a otro). Ids repetidos se ignoran.
func LockItems(ctx context.Context, l Locker, itemIDs ...int) (func(), error) {
	ids := uniqueSorted(itemIDs)
	unlocks := make([]func(), 0, len(ids))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, id := range ids {
		unlock, err := l.Lock(ctx, id)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

func uniqueSorted(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		dup := false
		for _, o := range out {
			if o == id {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
