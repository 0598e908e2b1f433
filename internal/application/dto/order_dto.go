package dto

import "github.com/shopspring/decimal"

// CreateOrderRequest body para POST /api/orders/save. El precio se toma del ítem.
type CreateOrderRequest struct {
	OrderNo string `json:"order_no" validate:"required,max=10"`
	ItemID  int    `json:"item_id" validate:"required,gt=0"`
	Qty     int    `json:"qty" validate:"required,min=1,max=2147483647"`
}

// UpdateOrderRequest body para PUT /api/orders/edit. El precio lo fija quien llama.
type UpdateOrderRequest struct {
	OrderNo string          `json:"order_no" validate:"required,max=10"`
	ItemID  int             `json:"item_id" validate:"required,gt=0"`
	Qty     int             `json:"qty" validate:"required,min=1,max=2147483647"`
	Price   decimal.Decimal `json:"price"`
}

// OrderResponse orden con su total.
type OrderResponse struct {
	OrderNo  string          `json:"order_no"`
	ItemID   int             `json:"item_id"`
	ItemName string          `json:"item_name,omitempty"`
	Qty      int             `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
	AuditResponse
}
