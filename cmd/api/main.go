package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/application/usecase"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/cache"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/memory"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/metrics"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/taller-inventario/internal/interfaces/http"
	"github.com/jhoicas/taller-inventario/pkg/config"
	"github.com/jhoicas/taller-inventario/pkg/logger"
)

// storage repositorios no transaccionales más el runner de transacciones.
type storage struct {
	txRunner  inventory.TxRunner
	locations repository.LocationRepository
	products  repository.ProductRepository
	documents repository.DocumentRepository
	stock     repository.StockRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	var idem cache.IdempotencyStore = cache.NewMemoryIdempotencyStore()
	if cfg.Redis.Enabled() {
		redisStore, err := cache.NewRedisIdempotencyStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisStore.Close()
		idem = redisStore
	}

	var recorder inventory.Recorder
	var prom *metrics.Prometheus
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus(cfg.Metrics.Namespace)
		recorder = prom
	}

	valuation := inventory.NewCostValuationService(store.documents)
	coordinator := inventory.NewCoordinator(inventory.CoordinatorDeps{
		TxRunner:      store.txRunner,
		Sequences:     inventory.NewSequenceGenerator(store.txRunner, cfg.Inventory.SequenceMaxAttempts),
		Ledger:        inventory.NewStockLedger(),
		Valuation:     valuation,
		Locations:     store.locations,
		Products:      store.products,
		Documents:     store.documents,
		Logger:        log.Zerolog(),
		Metrics:       recorder,
		MaxTxAttempts: cfg.Inventory.TxMaxAttempts,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	if prom != nil {
		app.Use(prom.Middleware())
		app.Get("/metrics", prom.Handler())
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Taller Inventario API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Coordinator:    coordinator,
		StockQuery:     inventory.NewStockQueryUseCase(store.stock, store.locations, store.products, valuation),
		LocationUC:     usecase.NewLocationUseCase(store.locations),
		ProductUC:      usecase.NewProductUseCase(store.products),
		Idempotency:    idem,
		IdempotencyTTL: cfg.Idempotency.TTL(),
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log.Zerolog(),
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

// openStorage abre PostgreSQL (aplicando migraciones si MIGRATIONS_AUTO) o el almacén en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Store.Driver == config.StoreMemory {
		mem := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			txRunner:  mem,
			locations: mem.Locations(),
			products:  mem.Products(),
			documents: mem.Documents(),
			stock:     mem.Stock(),
			close:     func() {},
		}, nil
	}

	if cfg.Migrations.Auto {
		m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Zerolog())
		if err != nil {
			return nil, err
		}
		upErr := m.Up()
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
		if upErr != nil {
			return nil, upErr
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool, cfg.DB.LockTimeout()),
		locations: postgres.NewLocationRepository(pool),
		products:  postgres.NewProductRepository(pool),
		documents: postgres.NewDocumentRepository(pool),
		stock:     postgres.NewStockRepository(pool),
		close:     pool.Close,
	}, nil
}
