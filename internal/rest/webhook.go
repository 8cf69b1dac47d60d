package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"swiftcart/domain"
	"swiftcart/pkg/logger"
	"time"

	"github.com/labstack/echo/v4"
)

type WebhookService interface {
	VerifyWebhookSignature(body []byte, signature string) bool
	HandleWebhookEvent(ctx context.Context, event domain.RazorpayWebhookEvent) error
}

type WebhookHandler struct {
	webhookService WebhookService
	timeout        time.Duration
}

func NewWebhookHandler(webhookService WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		timeout:        15 * time.Second,
	}
}

// HandleRazorpay is the server-to-server notification endpoint. The
// signature covers the raw body, so the body must be read before any
// JSON decoding touches it.
func (h *WebhookHandler) HandleRazorpay(c echo.Context) error {
	signature := c.Request().Header.Get("X-Razorpay-Signature")
	if signature == "" {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "missing signature"})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Error("Failed to read webhook body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "unreadable body"})
	}

	if !h.webhookService.VerifyWebhookSignature(body, signature) {
		logger.Warn("Webhook signature mismatch")
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid signature"})
	}

	var event domain.RazorpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Error("Failed to decode webhook event", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid payload"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.webhookService.HandleWebhookEvent(ctx, event); err != nil {
		logger.Error("Failed to handle webhook event", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
