package repository

import (
	"math"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// MaxPageSize tope de filas por página.
const MaxPageSize = 100

// Page petición de página 1-based.
type Page struct {
	Number int
	Size   int
}

// NewPage valida la petición y acota el tamaño.
func NewPage(number, size int) (Page, error) {
	if number < 1 {
		return Page{}, domain.Invalid("page debe ser >= 1")
	}
	if size < 1 {
		return Page{}, domain.Invalid("size debe ser >= 1")
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}, nil
}

// Limit filas a leer.
func (p Page) Limit() int { return p.Size }

// Offset filas a saltar. Satura en math.MaxInt: una página fuera de rango
// devuelve contenido vacío.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// TotalPages páginas necesarias para total filas.
func (p Page) TotalPages(total int) int {
	if p.Size <= 0 || total <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}
