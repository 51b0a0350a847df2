package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// InventoryService is the write side the handlers drive.
type InventoryService interface {
	AddItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error)
	UpdateItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error)
	DeleteItem(ctx context.Context, id int64) error
	ClearAll(ctx context.Context) (int64, error)
	AddCategory(ctx context.Context, name string) (models.InventoryItem, error)
	RenameCategory(ctx context.Context, oldName, newName string) error
	DeleteCategory(ctx context.Context, name string) (int64, error)
}

// ViewService is the read side.
type ViewService interface {
	Current(filter *string) models.ViewState
	Categories() []models.CategoryCount
	Watch(ctx context.Context, filters <-chan *string, initial *string) <-chan models.ViewState
}

// InventoryHandler serves items and categories.
type InventoryHandler struct {
	svc    InventoryService
	view   ViewService
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc InventoryService, view ViewService, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, view: view, logger: logger}
}

type itemRequest struct {
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Quantity  int       `json:"quantity"`
	ExpiresAt *time.Time `json:"expires_at" binding:"required"`
	Note      string    `json:"note"`
}

func (r itemRequest) model(id int64) models.InventoryItem {
	return models.InventoryItem{
		ID:        id,
		Name:      r.Name,
		Category:  r.Category,
		Quantity:  r.Quantity,
		ExpiresAt: *r.ExpiresAt,
		Note:      r.Note,
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// ListItems returns the grouped view, optionally restricted by ?category=.
func (h *InventoryHandler) ListItems(c *gin.Context) {
	var filter *string
	if category, ok := c.GetQuery("category"); ok {
		filter = &category
	}
	c.JSON(http.StatusOK, h.view.Current(filter))
}

// CreateItem stores a new product.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	saved, err := h.svc.AddItem(c.Request.Context(), req.model(0))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// UpdateItem replaces an existing product.
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	saved, err := h.svc.UpdateItem(c.Request.Context(), req.model(id))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteItem removes one product.
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearItems removes every product, keeping categories.
func (h *InventoryHandler) ClearItems(c *gin.Context) {
	n, err := h.svc.ClearAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

// ListCategories returns each category with its product count.
func (h *InventoryHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.view.Categories())
}

// CreateCategory adds an empty category.
func (h *InventoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	saved, err := h.svc.AddCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// RenameCategory moves every row to the new name.
func (h *InventoryHandler) RenameCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.svc.RenameCategory(c.Request.Context(), c.Param("name"), req.Name); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteCategory removes a category and all of its products.
func (h *InventoryHandler) DeleteCategory(c *gin.Context) {
	n, err := h.svc.DeleteCategory(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

func (h *InventoryHandler) itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return 0, false
	}
	return id, true
}
