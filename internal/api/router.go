// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"splitflow/internal/api/auth"
	"splitflow/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(ledgerHandler *handler.LedgerHandler, verifier *auth.Verifier, timeout time.Duration, logger *slog.Logger) http.Handler {
	if timeout <= 0 {
		timeout = handler.DefaultTimeout
	}
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)        // Add a request ID to the context
	r.Use(middleware.RealIP)           // Use the real IP address
	r.Use(middleware.Logger)           // Log HTTP requests
	r.Use(middleware.Recoverer)        // Recover from panics and return 500
	r.Use(middleware.Timeout(timeout)) // Bound request handling time

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/v1", func(r chi.Router) {
		// Every ledger route acts on the identity carried by the bearer token.
		r.Use(verifier.Middleware(ledgerHandler.WriteError))

		r.Route("/account", func(r chi.Router) {
			r.Post("/", ledgerHandler.InitializeAccount)
			r.Get("/", ledgerHandler.GetAccount)
			r.Put("/policy", ledgerHandler.SetSplitPolicy)
			r.Post("/income", ledgerHandler.RecordIncome)
			r.Post("/spend", ledgerHandler.Spend)
			r.Post("/transfers", ledgerHandler.Transfer)
			r.Get("/transactions", ledgerHandler.ListTransactions)
		})

		r.With(auth.RequireAdmin(ledgerHandler.WriteError)).Get("/stats", ledgerHandler.GetSystemStats)
	})

	logger.Debug("HTTP routes registered")
	return r
}
