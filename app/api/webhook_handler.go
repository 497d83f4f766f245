package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rivalmap/rivalmap/app/research"
	"github.com/rivalmap/rivalmap/app/webhook"
)

// Webhook receives task completion events from the research service. The
// signature check happens before any parsing, and processing failures are
// still acknowledged with 200 so the sender does not retry a delivery we
// cannot ever handle.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhook.MaxBodySize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	if len(body) > webhook.MaxBodySize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body too large"})
		return
	}

	id := c.GetHeader(webhook.IDHeader)
	timestamp := c.GetHeader(webhook.TimestampHeader)
	signature := c.GetHeader(webhook.SignatureHeader)

	if err := h.verifier.Verify(id, timestamp, signature, body); err != nil {
		if errors.Is(err, webhook.ErrMissingHeaders) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing signature headers"})
			return
		}
		slog.Warn("Webhook signature rejected", "id", id, "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	ev, err := research.ParseEvent(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	if err := h.service.HandleCompletion(c.Request.Context(), ev); err != nil {
		slog.Error("Webhook processing failed", "event", ev.Type, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
