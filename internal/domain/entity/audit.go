package entity

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Lifecycle estado de vida de un registro. Deleted es terminal.
type Lifecycle int

const (
	LifecycleActive Lifecycle = iota
	LifecycleDeleted
)

func (l Lifecycle) String() string {
	if l == LifecycleDeleted {
		return "deleted"
	}
	return "active"
}

// LifecycleFromDeleted traduce la columna is_deleted.
func LifecycleFromDeleted(isDeleted bool) Lifecycle {
	if isDeleted {
		return LifecycleDeleted
	}
	return LifecycleActive
}

// Audit sellos de creación, modificación y borrado lógico.
type Audit struct {
	CreatedBy string
	CreatedAt time.Time
	UpdatedBy *string
	UpdatedAt *time.Time
	DeletedBy *string
	DeletedAt *time.Time
}

// Record datos comunes a ítems, movimientos y órdenes.
type Record struct {
	Audit
	Lifecycle Lifecycle
}

// IsActive indica si el registro no fue eliminado.
func (r *Record) IsActive() bool { return r.Lifecycle == LifecycleActive }

// IsDeleted valor para la columna is_deleted.
func (r *Record) IsDeleted() bool { return r.Lifecycle == LifecycleDeleted }

// StampCreated marca la creación.
func (r *Record) StampCreated(actor string, now time.Time) {
	r.CreatedBy = actor
	r.CreatedAt = now
	r.Lifecycle = LifecycleActive
}

// StampUpdated marca la última modificación.
func (r *Record) StampUpdated(actor string, now time.Time) {
	r.UpdatedBy = &actor
	r.UpdatedAt = &now
}

// MarkDeleted borrado lógico; sobre un registro ya eliminado devuelve ErrAlreadyDeleted sin tocarlo.
func (r *Record) MarkDeleted(actor string, now time.Time) error {
	if r.Lifecycle == LifecycleDeleted {
		return domain.ErrAlreadyDeleted
	}
	r.Lifecycle = LifecycleDeleted
	r.DeletedBy = &actor
	r.DeletedAt = &now
	return nil
}
