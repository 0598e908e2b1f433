package entity

import "math"

// MovementType tipo de movimiento del libro de inventario.
type MovementType string

const (
	MovementTypeTopUp      MovementType = "T" // entrada
	MovementTypeWithdrawal MovementType = "W" // salida
)

// MaxQty tope de qty de un movimiento u orden (columna INTEGER).
const MaxQty = math.MaxInt32

// IsValid solo se aceptan exactamente "T" y "W".
func (t MovementType) IsValid() bool {
	return t == MovementTypeTopUp || t == MovementTypeWithdrawal
}

// InventoryMovement fila del libro: entrada o salida de un ítem.
type InventoryMovement struct {
	ID     int
	ItemID int
	Qty    int
	Type   MovementType
	Record
}
