package entity

import "github.com/shopspring/decimal"

// OrderNoMaxLen largo máximo del número de orden.
const OrderNoMaxLen = 10

// Order pedido de un ítem. Price es el precio al momento de la orden.
type Order struct {
	OrderNo string
	ItemID  int
	Qty     int
	Price   decimal.Decimal
	Record
}

// Total qty * precio.
func (o *Order) Total() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(int64(o.Qty)))
}
