package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/server/handlers"
)

// Handlers groups the HTTP adapters the router mounts.
type Handlers struct {
	Inventory   *handlers.InventoryHandler
	Preferences *handlers.PreferencesHandler
	Reminders   *handlers.RemindersHandler
	Live        *handlers.LiveHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	items := r.Group("/items")
	items.GET("", h.Inventory.ListItems)
	items.POST("", h.Inventory.CreateItem)
	items.DELETE("", h.Inventory.ClearItems)
	items.PUT("/:id", h.Inventory.UpdateItem)
	items.DELETE("/:id", h.Inventory.DeleteItem)

	categories := r.Group("/categories")
	categories.GET("", h.Inventory.ListCategories)
	categories.POST("", h.Inventory.CreateCategory)
	categories.PUT("/:name", h.Inventory.RenameCategory)
	categories.DELETE("/:name", h.Inventory.DeleteCategory)

	prefs := r.Group("/preferences")
	prefs.GET("", h.Preferences.Get)
	prefs.PUT("/profile", h.Preferences.SaveProfile)
	prefs.PUT("/test-mode", h.Preferences.SetTestMode)

	r.GET("/reminders", h.Reminders.Pending)
	r.GET("/reminders/deliveries", h.Reminders.Deliveries)

	r.GET("/ws", h.Live.Stream)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
