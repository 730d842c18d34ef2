package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/config"
	"github.com/corebank/corebank/internal/cryptowallet"
	"github.com/corebank/corebank/internal/customer"
	"github.com/corebank/corebank/internal/idgen"
	"github.com/corebank/corebank/internal/logging"
	"github.com/corebank/corebank/internal/metrics"
	"github.com/corebank/corebank/internal/middleware"
	"github.com/corebank/corebank/internal/notification"
	"github.com/corebank/corebank/internal/rates"
	"github.com/corebank/corebank/internal/transaction"
)

// Deps aggregates shared dependencies required to wire routes. DB and Cache
// are optional in development; Metrics, IDs and Notifier default when nil.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Metrics  *metrics.Collector
	IDs      idgen.Generator
	Notifier notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewCollector()
	}
	if d.IDs == nil {
		d.IDs = idgen.NewRandom()
	}
	if d.Notifier == nil {
		d.Notifier = notification.NewLoggerNotifier(d.Logger)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", d.Metrics.Handler())

	var (
		customerRepo    customer.Repository
		accountRepo     account.Repository
		transactionRepo transaction.Repository
		walletRepo      cryptowallet.Repository
		rateCache       rates.Cache
	)
	if d.DB != nil {
		customerRepo = customer.NewPostgresRepository(d.DB)
		accountRepo = account.NewPostgresRepository(d.DB)
		transactionRepo = transaction.NewPostgresRepository(d.DB)
		walletRepo = cryptowallet.NewPostgresRepository(d.DB)
	} else {
		customerRepo = customer.NewMemoryRepository()
		accountRepo = account.NewMemoryRepository()
		transactionRepo = transaction.NewMemoryRepository()
		walletRepo = cryptowallet.NewMemoryRepository()
	}
	if d.Cache != nil {
		rateCache = rates.NewRedisCache(d.Cache, d.Cfg.RateCacheTTL)
	} else {
		rateCache = rates.NewMemoryCache(d.Cfg.RateCacheTTL)
	}

	customerSvc := customer.NewService(customerRepo, d.IDs)
	accountSvc := account.NewService(accountRepo, customerSvc, d.IDs, account.Options{
		IBANCountry: d.Cfg.IBANCountry,
		BankCode:    d.Cfg.BankCode,
		Metrics:     d.Metrics,
		Logger:      d.Logger,
	})
	transactionSvc := transaction.NewService(transactionRepo, accountSvc, d.IDs, transaction.Options{
		Notifier: d.Notifier,
		Metrics:  d.Metrics,
		Logger:   d.Logger,
	})
	walletSvc := cryptowallet.NewService(walletRepo, customerSvc, accountSvc, rateCache, d.IDs, cryptowallet.Options{
		Metrics: d.Metrics,
		Logger:  d.Logger,
	})

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	transactionHandler := transaction.NewHandler(transactionSvc)
	RegisterCustomerRoutes(api, customer.NewHandler(customerSvc))
	RegisterAccountRoutes(api, account.NewHandler(accountSvc), transactionHandler)
	RegisterTransactionRoutes(api, transactionHandler)
	RegisterWalletRoutes(api, cryptowallet.NewHandler(walletSvc))
	RegisterRateRoutes(api, rates.NewHandler(rateCache))

	return nil
}
