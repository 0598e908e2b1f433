package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/order"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const orderDefaultPageSize = 10

// OrderHandler maneja las peticiones HTTP de órdenes.
type OrderHandler struct {
	uc    *order.OrderUseCase
	pdfUC *order.PDFUseCase
	log   *logger.Logger
}

// NewOrderHandler construye el handler. pdfUC puede ser nil (sin comprobante).
func NewOrderHandler(uc *order.OrderUseCase, pdfUC *order.PDFUseCase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, pdfUC: pdfUC, log: log}
}

// List godoc
// @Summary      Listar órdenes activas
// @Tags         orders
// @Produce      json
// @Param        page  query  int  false  "Página (desde 1)"  default(1)
// @Param        size  query  int  false  "Tamaño de página (máx. 100)"  default(10)
// @Success      200  {object}  dto.PageResponse[dto.OrderResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page, size := pageParams(c, orderDefaultPageSize)
	out, err := h.uc.List(c.UserContext(), page, size)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByOrderNo godoc
// @Summary      Obtener orden
// @Tags         orders
// @Produce      json
// @Param        orderNo  path  string  true  "Número de orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{orderNo} [get]
func (h *OrderHandler) GetByOrderNo(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("orderNo"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar comprobante de la orden
// @Tags         orders
// @Produce      application/pdf
// @Param        orderNo  path  string  true  "Número de orden"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{orderNo}/pdf [get]
func (h *OrderHandler) DownloadPDF(c *fiber.Ctx) error {
	if h.pdfUC == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "comprobante PDF no configurado"})
	}
	body, filename, err := h.pdfUC.DownloadOrderSlip(c.UserContext(), c.Params("orderNo"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(body)
}

// Save godoc
// @Summary      Crear orden
// @Description  Toma el precio del ítem y registra una salida por la cantidad ordenada.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "order_no, item_id, qty"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/orders/save [post]
func (h *OrderHandler) Save(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Edit godoc
// @Summary      Actualizar orden
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateOrderRequest  true  "order_no, item_id, qty, price"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/edit [put]
func (h *OrderHandler) Edit(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar orden (borrado lógico)
// @Tags         orders
// @Produce      plain
// @Param        orderNo  path  string  true  "Número de orden"
// @Success      200  {string}  string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/delete/{orderNo} [put]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("orderNo")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendString("Orden marcada como eliminada.")
}
