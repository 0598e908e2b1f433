package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// pageParams lee ?page=&size= con los valores por defecto del listado.
func pageParams(c *fiber.Ctx, defaultSize int) (int, int) {
	return c.QueryInt("page", 1), c.QueryInt("size", defaultSize)
}

func intParam(c *fiber.Ctx, name string) (int, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("%s debe ser un entero positivo", name)
	}
	return id, nil
}
