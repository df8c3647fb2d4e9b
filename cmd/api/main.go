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

	"github.com/jhoicas/retail-api/internal/application/access"
	"github.com/jhoicas/retail-api/internal/application/billing"
	"github.com/jhoicas/retail-api/internal/application/checkout"
	"github.com/jhoicas/retail-api/internal/application/inventory"
	"github.com/jhoicas/retail-api/internal/application/ports"
	"github.com/jhoicas/retail-api/internal/domain/repository"
	"github.com/jhoicas/retail-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/retail-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/retail-api/internal/interfaces/http"
	"github.com/jhoicas/retail-api/pkg/config"
	"github.com/jhoicas/retail-api/pkg/logger"
	"github.com/jhoicas/retail-api/pkg/metrics"
)

// txRunner lo implementan postgres.TxRunner y memory.TxRunner.
type txRunner interface {
	inventory.TxRunner
	billing.BillingTxRunner
}

// storage adaptadores de persistencia según STORAGE_DRIVER.
type storage struct {
	tx        txRunner
	stock     repository.InventoryRepository
	movements repository.StockMovementRepository
	sales     repository.SaleRepository
	products  repository.ProductRepository
	stores    repository.StoreRepository
	orgs      repository.OrganizationRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st := openStorage(ctx, cfg, log)
	defer st.close()

	m := metrics.New("retail")
	publisher := lowStockPublisher(ctx, cfg, log)

	stockUC := inventory.NewStockUseCase(
		st.tx, st.stock, st.movements, st.products, st.stores,
		publisher, m, log.Zerolog(),
		inventory.Options{MaxAttempts: cfg.Checkout.MaxAttempts},
	)
	checkoutUC := checkout.NewCheckoutUseCase(st.tx, stockUC, st.sales, log.Zerolog())
	webhookUC := billing.NewWebhookUseCase(st.tx, st.orgs, billing.Config{
		WebhookToken: cfg.Billing.WebhookToken,
		GraceDays:    cfg.Billing.GraceDays,
		Location:     cfg.Billing.Location(),
	}, m, log.Zerolog())
	if cfg.Billing.WebhookToken == "" {
		log.Warn().Msg("ASAAS_WEBHOOK_TOKEN vacío: el webhook responderá 500")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Retail API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Checkout:  checkoutUC,
		Stock:     stockUC,
		Webhook:   webhookUC,
		Status:    billing.NewStatusUseCase(st.orgs),
		Gate:      access.NewGate(st.orgs),
		JWTSecret: cfg.JWT.Secret,
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

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return storage{
			tx:        memory.NewTxRunner(s),
			stock:     memory.NewInventoryRepository(s),
			movements: memory.NewStockMovementRepository(s),
			sales:     memory.NewSaleRepository(s),
			products:  memory.NewProductRepository(s),
			stores:    memory.NewStoreRepository(s),
			orgs:      memory.NewOrganizationRepository(s),
			close:     func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Zerolog()); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	return storage{
		tx:        postgres.NewTxRunner(pool),
		stock:     postgres.NewInventoryRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		products:  postgres.NewProductRepository(pool),
		stores:    postgres.NewStoreRepository(pool),
		orgs:      postgres.NewOrganizationRepository(pool),
		close:     pool.Close,
	}
}

// lowStockPublisher stream de Redis si REDIS_ADDR está definido; si no, solo log.
func lowStockPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger) ports.LowStockPublisher {
	if cfg.Redis.Addr == "" {
		return infraredis.NewLogPublisher(log.Zerolog())
	}
	client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Error().Err(err).Msg("redis no disponible, avisos de stock bajo solo en log")
		return infraredis.NewLogPublisher(log.Zerolog())
	}
	log.Info().Str("stream", cfg.Redis.LowStockStream).Msg("avisos de stock bajo en Redis")
	return infraredis.NewStreamPublisher(client, cfg.Redis.LowStockStream)
}
