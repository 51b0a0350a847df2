package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository/mongodb"
	client "github.com/mamadbah2/pantry/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrMessagingDisabled is returned by SendOutbound without a WhatsApp client.
var ErrMessagingDisabled = errors.New("whatsapp messaging is not configured")

// ErrDeliveryLogDisabled is returned by RecentDeliveries without a delivery log.
var ErrDeliveryLogDisabled = errors.New("reminder delivery log is not configured")

// Notifier presents fired reminders as WhatsApp messages and pushes digests.
// Without a client reminders are only logged.
type Notifier struct {
	client     client.Client
	recipient  string
	deliveries mongodb.DeliveryLog
	logger     *zap.Logger
	now        func() time.Time
}

// NewNotifier wires a notifier. client and deliveries may be nil.
func NewNotifier(c client.Client, recipient string, deliveries mongodb.DeliveryLog, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		client:     c,
		recipient:  recipient,
		deliveries: deliveries,
		logger:     logger,
		now:        time.Now,
	}
}

// Present delivers one reminder. Failures are logged and swallowed.
func (n *Notifier) Present(ctx context.Context, payload models.ReminderPayload) {
	key := models.ReminderKey{ItemID: payload.ItemID, Kind: payload.Kind}
	delivery := models.ReminderDelivery{
		Key:    key.String(),
		ItemID: payload.ItemID,
		Kind:   payload.Kind,
		Title:  payload.Title,
		Body:   payload.Body,
		Status: models.DeliveryLogged,
		At:     n.now(),
	}

	if n.client == nil || n.recipient == "" {
		n.logger.Info("reminder",
			zap.String("key", delivery.Key),
			zap.String("title", payload.Title),
			zap.String("body", payload.Body))
	} else {
		messageID, err := n.send(ctx, n.recipient, fmt.Sprintf("%s\n%s", payload.Title, payload.Body))
		if err != nil {
			n.logger.Warn("reminder delivery failed", zap.String("key", delivery.Key), zap.Error(err))
			delivery.Status = models.DeliveryFailed
			delivery.Error = err.Error()
		} else {
			n.logger.Info("reminder delivered", zap.String("key", delivery.Key), zap.String("message_id", messageID))
			delivery.Status = models.DeliverySent
			delivery.MessageID = messageID
		}
	}

	if n.deliveries == nil {
		return
	}
	if err := n.deliveries.RecordDelivery(ctx, delivery); err != nil {
		n.logger.Warn("recording reminder delivery failed", zap.String("key", delivery.Key), zap.Error(err))
	}
}

// SendOutbound pushes a free-form text, used for the daily digest.
func (n *Notifier) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if n.client == nil {
		return ErrMessagingDisabled
	}
	to := req.To
	if to == "" {
		to = n.recipient
	}
	_, err := n.send(ctx, to, req.Message)
	return err
}

// RecentDeliveries lists the latest recorded deliveries.
func (n *Notifier) RecentDeliveries(ctx context.Context, limit int64) ([]models.ReminderDelivery, error) {
	if n.deliveries == nil {
		return nil, ErrDeliveryLogDisabled
	}
	return n.deliveries.RecentDeliveries(ctx, limit)
}

func (n *Notifier) send(ctx context.Context, to, body string) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := n.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   to,
		Body: body,
	})
	if err != nil {
		return "", err
	}
	return resp.MessageID(), nil
}
