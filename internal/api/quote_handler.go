package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/internal/metrics"
	"github.com/netric-solutions/quote-bridge/internal/quote"
)

// QuoteHandler serves the quote intake endpoint.
type QuoteHandler struct {
	logger  *zap.Logger
	service *quote.Service
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(logger *zap.Logger, service *quote.Service) *QuoteHandler {
	return &QuoteHandler{
		logger:  logger,
		service: service,
	}
}

// HandleProcessData accepts a quote, captures it to CSV and runs the
// invoice pipeline against the accounting system.
// POST /process-data
func (h *QuoteHandler) HandleProcessData(c *fiber.Ctx) error {
	if err := validateQuoteSchema(c.Body()); err != nil {
		h.logger.Warn("quote.process_data.schema_invalid", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	var req QuoteSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn("quote.process_data.parse_error", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "invalid payload",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	h.logger.Info("quote.process_data.received",
		zap.String("company", req.CompanyName),
		zap.Int("items", len(req.Items)))

	filename, summary, err := h.service.HandleQuote(c.UserContext(), req.toModel())
	if err != nil {
		h.logger.Error("quote.process_data.failed",
			zap.String("company", req.CompanyName),
			zap.Error(err))
		metrics.IncError("quote", "handle_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":     "success",
		"message":    "Data received and processed successfully",
		"filename":   filename,
		"processing": summary,
	})
}
