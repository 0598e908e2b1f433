package entity

import "github.com/shopspring/decimal"

// Límites del catálogo de ítems.
const (
	ItemNameMaxLen     = 50
	PriceMaxIntDigits  = 8
	PriceMaxFracDigits = 2
)

// MinPrice precio mínimo aceptado para ítems y órdenes.
var MinPrice = decimal.RequireFromString("0.01")

// Item producto del catálogo. Su saldo se deriva de los movimientos.
type Item struct {
	ID    int
	Name  string
	Price decimal.Decimal
	Record
}

// ValidPrice verifica mínimo, enteros y decimales del precio.
func ValidPrice(p decimal.Decimal) bool {
	if p.LessThan(MinPrice) {
		return false
	}
	if !p.Equal(p.Truncate(PriceMaxFracDigits)) {
		return false
	}
	intDigits := len(p.Truncate(0).Abs().String())
	return intDigits <= PriceMaxIntDigits
}
