package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// NewAuditResponse traduce los sellos de un registro (fechas en RFC3339).
func NewAuditResponse(rec entity.Record) AuditResponse {
	return AuditResponse{
		CreatedBy: rec.CreatedBy,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		UpdatedBy: rec.UpdatedBy,
		UpdatedAt: formatTime(rec.UpdatedAt),
		DeletedBy: rec.DeletedBy,
		DeletedAt: formatTime(rec.DeletedAt),
		Deleted:   rec.IsDeleted(),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
