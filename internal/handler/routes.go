package handler

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"

	"github.com/nulln0ne/dex-engine/internal/metrics"
)

// Routes groups the handlers mounted by Register.
type Routes struct {
	Health  *HealthHandler
	Token   *TokenHandler
	Swap    *SwapHandler
	Pool    *PoolHandler
	Staking *StakingHandler

	// Metrics serves the Prometheus exposition. Optional.
	Metrics http.Handler
}

// Register mounts the middleware chain and every route on app.
func Register(app *fiber.App, r Routes, m *metrics.Metrics, timeout time.Duration) {
	app.Use(cors.New())
	app.Use(recordRequest(m))

	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics))
	}

	app.Get("/health", requestTimeout(timeout), r.Health.Handle())

	api := app.Group("/api", requestTimeout(timeout))
	api.Get("/token/:address", r.Token.Token())
	api.Get("/balance/:token/:user", r.Token.Balance())
	api.Get("/swap/quote", r.Swap.Quote())
	api.Get("/pool/info", r.Pool.Info())
	api.Get("/pool/position/:user", r.Pool.Position())
	api.Get("/pool/deposit", r.Pool.Deposit())
	api.Get("/staking/info/:user", r.Staking.Info())
}
