package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// PreferencesService reads and writes user settings.
type PreferencesService interface {
	Get(ctx context.Context) (models.Preferences, error)
	SaveProfile(ctx context.Context, name, description string) error
	SetTestMode(ctx context.Context, enabled bool) error
}

// PreferencesHandler serves the profile and reminder mode.
type PreferencesHandler struct {
	svc    PreferencesService
	logger *zap.Logger
}

// NewPreferencesHandler constructs the HTTP handler adapter.
func NewPreferencesHandler(svc PreferencesService, logger *zap.Logger) *PreferencesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferencesHandler{svc: svc, logger: logger}
}

// Get returns every preference.
func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.svc.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// SaveProfile updates name and description.
func (h *PreferencesHandler) SaveProfile(c *gin.Context) {
	var req models.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if err := h.svc.SaveProfile(c.Request.Context(), req.Name, req.Description); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.Get(c)
}

type testModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetTestMode toggles fast-test reminders.
func (h *PreferencesHandler) SetTestMode(c *gin.Context) {
	var req testModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if err := h.svc.SetTestMode(c.Request.Context(), *req.Enabled); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.Get(c)
}
