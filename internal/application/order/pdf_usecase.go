package order

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// PDFUseCase genera el comprobante PDF de una orden.
type PDFUseCase struct {
	orders    *OrderUseCase
	generator SlipGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(orderRepo repository.OrderRepository, itemRepo repository.ItemRepository, generator SlipGenerator) *PDFUseCase {
	return &PDFUseCase{
		orders:    &OrderUseCase{orderRepo: orderRepo, itemRepo: itemRepo},
		generator: generator,
	}
}

// DownloadOrderSlip devuelve (pdfBytes, filename). Orden inexistente → ErrNotFound.
func (uc *PDFUseCase) DownloadOrderSlip(ctx context.Context, orderNo string) ([]byte, string, error) {
	order, item, err := uc.orders.load(ctx, orderNo)
	if err != nil {
		return nil, "", err
	}
	if item == nil {
		item = &entity.Item{ID: order.ItemID, Name: fmt.Sprintf("Ítem %d", order.ItemID)}
	}
	pdfBytes, err := uc.generator.GenerateOrderSlip(ctx, order, item)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("orden_%s.pdf", order.OrderNo), nil
}
