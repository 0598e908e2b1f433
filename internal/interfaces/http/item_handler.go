package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const itemDefaultPageSize = 5

// ItemHandler maneja las peticiones HTTP del catálogo de ítems.
type ItemHandler struct {
	uc  *usecase.ItemUseCase
	log *logger.Logger
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *usecase.ItemUseCase, log *logger.Logger) *ItemHandler {
	return &ItemHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar ítems activos
// @Tags         item
// @Produce      json
// @Param        page  query  int  false  "Página (desde 1)"  default(1)
// @Param        size  query  int  false  "Tamaño de página (máx. 100)"  default(5)
// @Success      200  {object}  dto.PageResponse[dto.ItemResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/item [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	page, size := pageParams(c, itemDefaultPageSize)
	out, err := h.uc.List(c.UserContext(), page, size)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ítem con stock disponible
// @Tags         item
// @Produce      json
// @Param        id   path  int  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/item/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Save godoc
// @Summary      Crear ítem
// @Tags         item
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "name, price"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/item/save [post]
func (h *ItemHandler) Save(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
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
// @Summary      Actualizar ítem
// @Tags         item
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateItemRequest  true  "id, name, price"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/item/edit [put]
func (h *ItemHandler) Edit(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
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
// @Summary      Eliminar ítem (borrado lógico)
// @Tags         item
// @Produce      plain
// @Param        id   path  int  true  "ID del ítem"
// @Success      200  {string}  string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/item/delete/{id} [put]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendString("Ítem marcado como eliminado.")
}
