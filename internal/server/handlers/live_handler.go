package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { return true },
}

// filterMessage changes the category filter; a null category shows all.
type filterMessage struct {
	Category *string `json:"category"`
}

type liveMessage struct {
	Type     string           `json:"type"`
	ClientID string           `json:"client_id"`
	Data     models.ViewState `json:"data"`
}

// LiveHandler streams the grouped view over a websocket.
type LiveHandler struct {
	view    ViewService
	clients atomic.Int64
	logger  *zap.Logger
}

// NewLiveHandler constructs the websocket handler.
func NewLiveHandler(view ViewService, logger *zap.Logger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveHandler{view: view, logger: logger}
}

// Clients returns the number of connected websocket clients.
func (h *LiveHandler) Clients() int64 {
	return h.clients.Load()
}

// Stream upgrades the connection and pushes a ViewState on every change.
func (h *LiveHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	clientID := uuid.New().String()
	logger := h.logger.With(zap.String("client_id", clientID))
	h.clients.Add(1)
	defer h.clients.Add(-1)
	logger.Info("live view client connected")

	var initial *string
	if category, ok := c.GetQuery("category"); ok {
		initial = &category
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	filters := make(chan *string)
	go h.readFilters(ctx, cancel, conn, filters, logger)

	for state := range h.view.Watch(ctx, filters, initial) {
		if err := conn.WriteJSON(liveMessage{Type: "view", ClientID: clientID, Data: state}); err != nil {
			logger.Debug("live view write failed", zap.Error(err))
			cancel()
		}
	}

	logger.Info("live view client disconnected")
}

func (h *LiveHandler) readFilters(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, filters chan<- *string, logger *zap.Logger) {
	defer cancel()

	for {
		var msg filterMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("live view read failed", zap.Error(err))
			}
			return
		}

		select {
		case filters <- msg.Category:
		case <-ctx.Done():
			return
		}
	}
}
