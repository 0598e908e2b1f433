package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appinventory "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/order"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/lock"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/jhoicas/inventario-ledger/pkg/metrics"
	pkgredis "github.com/jhoicas/inventario-ledger/pkg/redis"
)

// storage agrupa el TxRunner y los repositorios del driver elegido.
type storage struct {
	txRunner  appinventory.TxRunner
	items     repository.ItemRepository
	movements repository.InventoryMovementRepository
	orders    repository.OrderRepository
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			txRunner:  memory.NewTxRunner(store),
			items:     store.Items(),
			movements: store.Movements(),
			orders:    store.Orders(),
			close:     func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool),
		items:     postgres.NewItemRepository(pool),
		movements: postgres.NewInventoryMovementRepository(pool),
		orders:    postgres.NewOrderRepository(pool),
		close:     pool.Close,
	}, nil
}

// buildGuard traduce STOCK_LOCK_MODE a la serialización por ítem.
func buildGuard(ctx context.Context, cfg *config.Config, log *logger.Logger) (appinventory.Guard, func(), error) {
	noop := func() {}
	switch cfg.Stock.LockMode {
	case config.LockModeRow:
		return appinventory.NewGuard(nil, true), noop, nil
	case config.LockModeLocal:
		return appinventory.NewGuard(lock.NewLocalLocker(), false), noop, nil
	case config.LockModeRedis:
		client, err := pkgredis.New(ctx, cfg.Redis)
		if err != nil {
			return appinventory.Guard{}, noop, err
		}
		ttl := time.Duration(cfg.Stock.LockTTLSeconds) * time.Second
		locker := lock.NewRedisLocker(client, cfg.App.Name, ttl)
		return appinventory.NewGuard(locker, false), func() { _ = client.Close() }, nil
	default:
		log.Warn().Msg("STOCK_LOCK_MODE=none: validar y escribir no es atómico entre peticiones concurrentes")
		return appinventory.Guard{}, noop, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Str("lock_mode", cfg.Stock.LockMode).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer store.close()

	guard, closeGuard, err := buildGuard(ctx, cfg, log.Component("lock"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer closeGuard()

	registry := prometheus.NewRegistry()
	var stockMetrics *metrics.StockMetrics
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		stockMetrics = metrics.NewStockMetrics(registry)
	}

	itemUC := usecase.NewItemUseCase(store.txRunner, store.items, store.movements, stockMetrics)
	movementUC := appinventory.NewMovementUseCase(store.txRunner, store.movements, store.items,
		appinventory.WithGuard(guard),
		appinventory.WithMetrics(stockMetrics),
	)
	orderUC := order.NewOrderUseCase(store.txRunner, store.orders, store.items,
		order.WithGuard(guard),
		order.WithMetrics(stockMetrics),
	)
	slipPDFUC := order.NewPDFUseCase(store.orders, store.items, infrapdf.NewOrderSlipGenerator(cfg.App.Name))

	httpLog := log.Component("http")
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(httpLog),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(httpLog))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:       itemUC,
		MovementUC:   movementUC,
		OrderUC:      orderUC,
		PDFUC:        slipPDFUC,
		JWTSecret:    cfg.JWT.Secret,
		DefaultActor: cfg.App.DefaultActor,
		Logger:       httpLog,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
