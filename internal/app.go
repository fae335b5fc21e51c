// internal/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "splitflow/internal/api"
	"splitflow/internal/api/auth"
	"splitflow/internal/api/handler"
	"splitflow/internal/config"
	"splitflow/internal/events"
	"splitflow/internal/registry"
	"splitflow/internal/repository"
	"splitflow/internal/repository/sqlrepo"
	"splitflow/internal/service"
	"splitflow/internal/txlog"
	"splitflow/internal/util"
	"splitflow/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	AccountRepository     repository.AccountRepository
	TransactionRepository repository.TransactionRepository

	// Ledger state
	Registry       *registry.Registry
	TransactionLog *txlog.Log
	Publisher      events.Publisher

	// Services
	LedgerService service.LedgerService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize loads configuration from the environment and initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		app.Logger = util.GetLogger()
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return app.InitializeWithConfig(ctx, cfg)
}

// InitializeWithConfig initializes all application components from cfg.
func (app *Application) InitializeWithConfig(ctx context.Context, cfg *config.AppConfig) error {
	app.Config = cfg

	// 1. Initialize Logger
	if err := util.InitLogger(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "db_driver", cfg.Database.Driver)

	// 2. Connect to Database and apply migrations
	database, err := db.Open(cfg.DB())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 3. Initialize Repositories
	app.AccountRepository = sqlrepo.NewAccountRepository()
	app.TransactionRepository = sqlrepo.NewTransactionRepository()

	// 4. Restore the transaction log and build the account registry on top of it
	app.TransactionLog, err = txlog.Open(ctx, app.DB, app.TransactionRepository, app.Logger)
	if err != nil {
		return err
	}
	app.Registry = registry.New(
		db.NewTxManager(app.DB), // This is the DBTxBeginner
		app.DB,                  // This is the DBExecutor for reads
		app.AccountRepository,
		app.TransactionLog,
		app.Logger,
	)

	// 5. Connect the event publisher
	if cfg.AMQP.URL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		app.Publisher = publisher
	} else {
		app.Logger.Info("AMQP_URL not set, ledger events are disabled.")
		app.Publisher = events.NopPublisher{}
	}

	// 6. Initialize Services
	app.LedgerService = service.NewLedgerService(app.Registry, app.TransactionLog, app.Publisher, app.Logger)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	ledgerHandler := handler.NewLedgerHandler(app.LedgerService, app.Logger)
	verifier := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)
	app.HTTPHandler = router.NewRouter(ledgerHandler, verifier, cfg.RequestTimeout, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	var errs []error
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Logger.Error("Failed to close event publisher", "error", err)
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		} else {
			app.Logger.Info("Database connection closed.")
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
