package dto

// CreateMovementRequest body para POST /api/inventory/save. Qty es puntero: ausente ≠ 0.
type CreateMovementRequest struct {
	ItemID int    `json:"item_id" validate:"required,gt=0"`
	Qty    *int   `json:"qty" validate:"required,min=0,max=2147483647"`
	Type   string `json:"type" validate:"required,oneof=T W"`
}

// UpdateMovementRequest body para PUT /api/inventory/edit.
type UpdateMovementRequest struct {
	ID     int    `json:"id" validate:"required,gt=0"`
	ItemID int    `json:"item_id" validate:"required,gt=0"`
	Qty    *int   `json:"qty" validate:"required,min=0,max=2147483647"`
	Type   string `json:"type" validate:"required,oneof=T W"`
}

// MovementResponse fila del libro de inventario.
type MovementResponse struct {
	ID       int    `json:"id"`
	ItemID   int    `json:"item_id"`
	ItemName string `json:"item_name,omitempty"`
	Qty      int    `json:"qty"`
	Type     string `json:"type"`
	AuditResponse
}
