package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

// Handler wires the HTTP transport to the Q&A service.
type Handler struct {
	qaSvc  qa.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(qaSvc qa.Service, logger *slog.Logger) *Handler {
	return &Handler{
		qaSvc:  qaSvc,
		logger: logger.With("component", "http.handler"),
	}
}

// Ask answers one question.
func (h *Handler) Ask(c *gin.Context) {
	var req qa.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.qaSvc.Answer(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err, "qa_failed"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Trending returns the most asked questions.
func (h *Handler) Trending(c *gin.Context) {
	items, err := h.qaSvc.Trending(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err, "qa_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": items})
}

// Misses lists unanswered questions, most frequent first.
func (h *Handler) Misses(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}
	items, err := h.qaSvc.Misses(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromAppError(err, "qa_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"misses": items})
}

// Status reports the cache state.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.qaSvc.Status(c.Request.Context()))
}

// Refresh forces a document reload.
func (h *Handler) Refresh(c *gin.Context) {
	status, err := h.qaSvc.Refresh(c.Request.Context())
	if err != nil {
		httpErr := fromAppError(err, "refresh_failed")
		h.logger.Warn("manual refresh failed", "error", err)
		c.JSON(httpErr.Status, gin.H{
			"error":  gin.H{"code": httpErr.Code, "message": httpErr.Message},
			"status": status,
		})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Health is the liveness probe; it never touches the document source.
func (h *Handler) Health(c *gin.Context) {
	status := h.qaSvc.Status(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "ok", "loaded": status.Loaded})
}
