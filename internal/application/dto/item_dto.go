package dto

import "github.com/shopspring/decimal"

// CreateItemRequest body para POST /api/item/save.
type CreateItemRequest struct {
	Name  string          `json:"name" validate:"required,max=50"`
	Price decimal.Decimal `json:"price"`
}

// UpdateItemRequest body para PUT /api/item/edit.
type UpdateItemRequest struct {
	ID    int             `json:"id" validate:"required,gt=0"`
	Name  string          `json:"name" validate:"required,max=50"`
	Price decimal.Decimal `json:"price"`
}

// ItemResponse ítem con su stock disponible.
type ItemResponse struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	RemainingStock int             `json:"remaining_stock"`
	AuditResponse
}
