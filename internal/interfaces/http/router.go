package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/order"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC       *usecase.ItemUseCase
	MovementUC   *inventory.MovementUseCase
	OrderUC      *order.OrderUseCase
	PDFUC        *order.PDFUseCase
	JWTSecret    string
	DefaultActor string
	Logger       *logger.Logger
}

// Router registra las rutas de la API bajo /api.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api", ActorMiddleware(deps.JWTSecret, deps.DefaultActor))

	// Items
	itemHandler := NewItemHandler(deps.ItemUC, log)
	items := api.Group("/item")
	items.Get("/", itemHandler.List)
	items.Post("/save", itemHandler.Save)
	items.Put("/edit", itemHandler.Edit)
	items.Put("/delete/:id", itemHandler.Delete)
	items.Get("/:id", itemHandler.GetByID)

	// Inventory movements
	inventoryHandler := NewInventoryHandler(deps.MovementUC, log)
	inv := api.Group("/inventory")
	inv.Get("/", inventoryHandler.List)
	inv.Post("/save", inventoryHandler.Save)
	inv.Put("/edit", inventoryHandler.Edit)
	inv.Put("/delete/:id", inventoryHandler.Delete)
	inv.Get("/:id", inventoryHandler.GetByID)

	// Orders
	orderHandler := NewOrderHandler(deps.OrderUC, deps.PDFUC, log)
	orders := api.Group("/orders")
	orders.Get("/", orderHandler.List)
	orders.Post("/save", orderHandler.Save)
	orders.Put("/edit", orderHandler.Edit)
	orders.Put("/delete/:orderNo", orderHandler.Delete)
	orders.Get("/:orderNo/pdf", orderHandler.DownloadPDF)
	orders.Get("/:orderNo", orderHandler.GetByOrderNo)
}
