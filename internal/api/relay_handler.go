package api

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/internal/metrics"
	"github.com/netric-solutions/quote-bridge/internal/publisher"
	"github.com/netric-solutions/quote-bridge/internal/relay"
)

// RelayHandler serves the webhook relay endpoints: intake, inspection
// and manual re-forwarding of stored payloads.
type RelayHandler struct {
	logger    *zap.Logger
	store     relay.Store
	forwarder *relay.Forwarder
	publisher *publisher.Publisher // optional
}

// NewRelayHandler creates a RelayHandler. publisher may be nil.
func NewRelayHandler(logger *zap.Logger, st relay.Store, fwd *relay.Forwarder, pub *publisher.Publisher) *RelayHandler {
	return &RelayHandler{
		logger:    logger,
		store:     st,
		forwarder: fwd,
		publisher: pub,
	}
}

// HandleWebhook stores an incoming payload and forwards it downstream.
// POST /webhook
func (h *RelayHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload map[string]any
	if err := json.Unmarshal(c.Body(), &payload); err != nil || payload == nil {
		h.logger.Warn("relay.webhook.invalid_payload", zap.Error(err))
		metrics.IncWebhookPayload("rejected")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid JSON data",
		})
	}

	ctx := c.UserContext()
	payload["received_at"] = float64(time.Now().UnixNano()) / float64(time.Second)

	position, err := h.store.Append(ctx, payload)
	if err != nil {
		h.logger.Error("relay.webhook.store_failed", zap.Error(err))
		metrics.IncError("relay", "store_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "failed to store data",
		})
	}
	metrics.IncWebhookPayload("stored")

	h.logger.Info("relay.webhook.received", zap.Int("position", position))

	ok, message := h.forwarder.Share(ctx, payload)
	if !ok {
		h.publishForwardFailed(c, position, message)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":        "partial_success",
			"message":       message,
			"data_position": position,
		})
	}

	return c.JSON(fiber.Map{
		"status":        "success",
		"message":       message,
		"data_position": position,
	})
}

// HandleStoredData returns every stored payload in arrival order.
// GET /stored-data
func (h *RelayHandler) HandleStoredData(c *fiber.Ctx) error {
	payloads, err := h.store.All(c.UserContext())
	if err != nil {
		h.logger.Error("relay.stored_data.failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "failed to read stored data",
		})
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(payloads),
		"data":   payloads,
	})
}

// HandleRetryShare re-forwards the stored payload at a position.
// POST /retry-share/:position
func (h *RelayHandler) HandleRetryShare(c *fiber.Ctx) error {
	position, err := strconv.Atoi(c.Params("position"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "position must be an integer",
		})
	}

	ctx := c.UserContext()
	payload, err := h.store.Get(ctx, position)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid data position",
		})
	}

	ok, message := h.forwarder.Share(ctx, payload)
	if !ok {
		h.publishForwardFailed(c, position, message)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":        "error",
			"message":       message,
			"data_position": position,
		})
	}

	h.logger.Info("relay.retry_share.forwarded", zap.Int("position", position))
	return c.JSON(fiber.Map{
		"status":        "success",
		"message":       message,
		"data_position": position,
	})
}

func (h *RelayHandler) publishForwardFailed(c *fiber.Ctx, position int, message string) {
	if h.publisher == nil {
		return
	}
	err := h.publisher.PublishEvent(c.UserContext(), "evt.relay.forward_failed.v1", "relay.forward_failed", map[string]any{
		"position": position,
		"target":   h.forwarder.URL(),
		"reason":   message,
	})
	if err != nil {
		h.logger.Warn("relay.publish_forward_failed", zap.Error(err))
	}
}
