package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/netric-solutions/quote-bridge/internal/relay"
	"github.com/netric-solutions/quote-bridge/internal/store"
)

func RegisterRoutes(app *fiber.App, nc *nats.Conn, relayStore relay.Store, historyStore store.Store,
	relayHandler *RelayHandler,
	quoteHandler *QuoteHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Server is running. POST /webhook or /process-data to submit data.")
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"nats":  "ok",
			"relay": "ok",
			"store": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc == nil {
			checks["nats"] = "not configured"
		} else if !nc.IsConnected() {
			checks["nats"] = "disconnected"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
			checks["nats"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := relayStore.HealthCheck(healthCtx); err != nil {
			checks["relay"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}
		if historyStore == nil {
			checks["store"] = "not configured"
		} else if err := historyStore.HealthCheck(healthCtx); err != nil {
			checks["store"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// Relay routes
	app.Post("/webhook", relayHandler.HandleWebhook)
	app.Get("/stored-data", relayHandler.HandleStoredData)
	app.Post("/retry-share/:position", relayHandler.HandleRetryShare)

	// Quote route
	app.Post("/process-data", quoteHandler.HandleProcessData)
}
