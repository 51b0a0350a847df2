package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/whatsapp"
)

const defaultDeliveryLimit = 50

// PendingSource lists reminders waiting to fire.
type PendingSource interface {
	Pending() []models.PendingReminder
}

// DeliverySource lists recorded reminder deliveries.
type DeliverySource interface {
	RecentDeliveries(ctx context.Context, limit int64) ([]models.ReminderDelivery, error)
}

// RemindersHandler exposes the job scheduler state.
type RemindersHandler struct {
	pending    PendingSource
	deliveries DeliverySource
	logger     *zap.Logger
}

// NewRemindersHandler constructs the HTTP handler adapter.
func NewRemindersHandler(pending PendingSource, deliveries DeliverySource, logger *zap.Logger) *RemindersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemindersHandler{pending: pending, deliveries: deliveries, logger: logger}
}

// Pending returns scheduled reminders, soonest first.
func (h *RemindersHandler) Pending(c *gin.Context) {
	c.JSON(http.StatusOK, h.pending.Pending())
}

// Deliveries returns the latest delivered reminders.
func (h *RemindersHandler) Deliveries(c *gin.Context) {
	limit := int64(defaultDeliveryLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	deliveries, err := h.deliveries.RecentDeliveries(c.Request.Context(), limit)
	if errors.Is(err, whatsapp.ErrDeliveryLogDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, deliveries)
}
