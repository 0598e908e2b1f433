package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// LocalActor key en c.Locals con la identidad que firma las mutaciones.
const (
	LocalActor  = "actor"
	HeaderActor = "X-Actor"
)

// ActorMiddleware resuelve el actor: Bearer JWT válido → X-Actor → defaultActor.
// No autoriza nada; un Bearer inválido sí se rechaza con 401.
func ActorMiddleware(jwtSecret, defaultActor string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
			}
			actor, err := jwt.Parse(jwtSecret, strings.TrimSpace(parts[1]))
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
			}
			c.Locals(LocalActor, actor)
			return c.Next()
		}
		actor := strings.TrimSpace(c.Get(HeaderActor))
		if actor == "" {
			actor = defaultActor
		}
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// GetActor devuelve el actor resuelto por ActorMiddleware.
func GetActor(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalActor).(string)
	return s
}
