// Package memory guarda ítems, movimientos y órdenes en mapas del proceso.
// Se usa en tests y con STORE_DRIVER=memory; los datos se pierden al reiniciar.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository              = (*ItemRepo)(nil)
	_ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)
	_ repository.OrderRepository             = (*OrderRepo)(nil)
)

// Store estado compartido por los repositorios en memoria.
type Store struct {
	txMu      sync.Mutex // una transacción (o escritura suelta) a la vez
	mu        sync.RWMutex
	items     map[int]entity.Item
	movements map[int]entity.InventoryMovement
	orders    map[string]entity.Order
	nextItem  int
	nextMov   int
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:     make(map[int]entity.Item),
		movements: make(map[int]entity.InventoryMovement),
		orders:    make(map[string]entity.Order),
	}
}

// Items repositorio de ítems sobre el store. Sus escrituras esperan a la transacción en curso.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Movements repositorio del libro sobre el store.
func (s *Store) Movements() *InventoryMovementRepo { return &InventoryMovementRepo{s: s} }

// Orders repositorio de órdenes sobre el store.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// writeLock fuera de una transacción toma txMu, así un rollback no pisa escrituras ajenas.
func (s *Store) writeLock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

type snapshot struct {
	items     map[int]entity.Item
	movements map[int]entity.InventoryMovement
	orders    map[string]entity.Order
	nextItem  int
	nextMov   int
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		items:     make(map[int]entity.Item, len(s.items)),
		movements: make(map[int]entity.InventoryMovement, len(s.movements)),
		orders:    make(map[string]entity.Order, len(s.orders)),
		nextItem:  s.nextItem,
		nextMov:   s.nextMov,
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	for k, v := range s.movements {
		snap.movements[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snap.items
	s.movements = snap.movements
	s.orders = snap.orders
	s.nextItem = snap.nextItem
	s.nextMov = snap.nextMov
}

func window(total, limit, offset int) (int, int) {
	if offset < 0 || limit < 0 {
		return total, total
	}
	if offset >= total {
		return total, total
	}
	end := offset + limit
	if end > total || end < offset {
		end = total
	}
	return offset, end
}

// ─── ítems ───────────────────────────────────────────────────────────────────

// ItemRepo implementación en memoria de ItemRepository.
type ItemRepo struct {
	s    *Store
	inTx bool
}

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextItem++
	item.ID = r.s.nextItem
	r.s.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id int) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

// GetForUpdate en memoria la transacción ya es exclusiva.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id int) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) ListActive(_ context.Context, limit, offset int) ([]*entity.Item, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var active []*entity.Item
	for _, it := range r.s.items {
		it := it
		if it.IsActive() {
			active = append(active, &it)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	from, to := window(len(active), limit, offset)
	return active[from:to], len(active), nil
}

// ─── movimientos ─────────────────────────────────────────────────────────────

// InventoryMovementRepo implementación en memoria del libro.
type InventoryMovementRepo struct {
	s    *Store
	inTx bool
}

func (r *InventoryMovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[m.ItemID]; !ok {
		return domain.ErrNotFound
	}
	r.s.nextMov++
	m.ID = r.s.nextMov
	r.s.movements[m.ID] = *m
	return nil
}

func (r *InventoryMovementRepo) GetByID(_ context.Context, id int) (*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *InventoryMovementRepo) Update(_ context.Context, m *entity.InventoryMovement) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.movements[m.ID] = *m
	return nil
}

func (r *InventoryMovementRepo) ListActive(_ context.Context, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var active []*entity.InventoryMovement
	for _, m := range r.s.movements {
		m := m
		if m.IsActive() {
			active = append(active, &m)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	from, to := window(len(active), limit, offset)
	return active[from:to], len(active), nil
}

func (r *InventoryMovementRepo) SumQtyByItemAndType(_ context.Context, itemID int, t entity.MovementType) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := 0
	for _, m := range r.s.movements {
		if m.ItemID == itemID && m.Type == t && m.IsActive() {
			total += m.Qty
		}
	}
	return total, nil
}

// ─── órdenes ─────────────────────────────────────────────────────────────────

// OrderRepo implementación en memoria de OrderRepository.
type OrderRepo struct {
	s    *Store
	inTx bool
}

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.OrderNo]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.s.items[o.ItemID]; !ok {
		return domain.ErrNotFound
	}
	r.s.orders[o.OrderNo] = *o
	return nil
}

func (r *OrderRepo) GetByOrderNo(_ context.Context, orderNo string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[orderNo]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *OrderRepo) ExistsByOrderNo(_ context.Context, orderNo string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.orders[orderNo]
	return ok, nil
}

func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	defer r.s.writeLock(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.OrderNo]; !ok {
		return domain.ErrNotFound
	}
	r.s.orders[o.OrderNo] = *o
	return nil
}

func (r *OrderRepo) ListActive(_ context.Context, limit, offset int) ([]*entity.Order, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var active []*entity.Order
	for _, o := range r.s.orders {
		o := o
		if o.IsActive() {
			active = append(active, &o)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		}
		return active[i].OrderNo < active[j].OrderNo
	})
	from, to := window(len(active), limit, offset)
	return active[from:to], len(active), nil
}
