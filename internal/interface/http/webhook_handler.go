package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	tg "github.com/yanqian/iknowall-bot/internal/infra/telegram"
	tgiface "github.com/yanqian/iknowall-bot/internal/interface/telegram"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives Telegram updates pushed to the public URL.
type WebhookHandler struct {
	dispatcher *tgiface.Dispatcher
	secret     string
	logger     *slog.Logger
}

// NewWebhookHandler builds the handler; secret is the last path segment of the webhook URL.
func NewWebhookHandler(dispatcher *tgiface.Dispatcher, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher, secret: secret, logger: logger.With("component", "http.webhook")}
}

// Receive handles one update. Delivery failures are logged and still
// acknowledged so Telegram does not redeliver the same update forever.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if !h.authorized(c) {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "not found", nil))
		return
	}
	var update tg.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if err := h.dispatcher.Dispatch(c.Request.Context(), update); err != nil {
		h.logger.Error("webhook dispatch failed", "update_id", update.UpdateID, "error", err)
	}
	c.Status(http.StatusOK)
}

func (h *WebhookHandler) authorized(c *gin.Context) bool {
	if h.secret == "" {
		return false
	}
	secret := []byte(h.secret)
	if subtle.ConstantTimeCompare([]byte(c.Param("secret")), secret) != 1 {
		return false
	}
	if header := c.GetHeader(telegramSecretHeader); header != "" {
		return subtle.ConstantTimeCompare([]byte(header), secret) == 1
	}
	return true
}
