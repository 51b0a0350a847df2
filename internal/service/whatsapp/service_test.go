package whatsapp

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/pantry/internal/domain/models"
	client "github.com/mamadbah2/pantry/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.sent = append(f.sent, req)
	if f.err != nil {
		return nil, f.err
	}
	resp := &client.SendTextMessageResponse{}
	resp.Messages = append(resp.Messages, struct {
		ID string `json:"id"`
	}{ID: "wamid.42"})
	return resp, nil
}

type memoryLog struct {
	records []models.ReminderDelivery
	err     error
}

func (m *memoryLog) RecordDelivery(_ context.Context, d models.ReminderDelivery) error {
	m.records = append(m.records, d)
	return m.err
}

func (m *memoryLog) RecentDeliveries(context.Context, int64) ([]models.ReminderDelivery, error) {
	return m.records, nil
}

var payload = models.ReminderPayload{
	ItemID: 4, Kind: models.OffsetOneDay, Title: "Expiry warning!",
	Body: "ATTENTION! 'Milk' expires TOMORROW!", NotificationID: 4,
}

func TestPresentSendsAndRecords(t *testing.T) {
	wa := &fakeClient{}
	log := &memoryLog{}
	n := NewNotifier(wa, "62811", log, zaptest.NewLogger(t))

	n.Present(context.Background(), payload)

	if len(wa.sent) != 1 || wa.sent[0].To != "62811" {
		t.Fatalf("unexpected sends %+v", wa.sent)
	}
	if wa.sent[0].Body != "Expiry warning!\nATTENTION! 'Milk' expires TOMORROW!" {
		t.Errorf("unexpected body %q", wa.sent[0].Body)
	}
	if len(log.records) != 1 {
		t.Fatalf("expected one delivery record, got %d", len(log.records))
	}
	rec := log.records[0]
	if rec.Status != models.DeliverySent || rec.MessageID != "wamid.42" || rec.Key != "reminder:4:h1" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestPresentSwallowsFailures(t *testing.T) {
	wa := &fakeClient{err: errors.New("network down")}
	log := &memoryLog{err: errors.New("mongo down")}
	n := NewNotifier(wa, "62811", log, zaptest.NewLogger(t))

	n.Present(context.Background(), payload)

	if len(log.records) != 1 || log.records[0].Status != models.DeliveryFailed || log.records[0].Error != "network down" {
		t.Errorf("expected a failed delivery record, got %+v", log.records)
	}
}

func TestPresentWithoutClientOnlyLogs(t *testing.T) {
	log := &memoryLog{}
	n := NewNotifier(nil, "", log, zaptest.NewLogger(t))
	n.Present(context.Background(), payload)

	if len(log.records) != 1 || log.records[0].Status != models.DeliveryLogged {
		t.Errorf("expected a logged delivery, got %+v", log.records)
	}

	if err := n.SendOutbound(context.Background(), models.OutboundMessageRequest{Message: "x"}); !errors.Is(err, ErrMessagingDisabled) {
		t.Errorf("expected ErrMessagingDisabled, got %v", err)
	}
}

func TestSendOutboundDefaultsRecipient(t *testing.T) {
	wa := &fakeClient{}
	n := NewNotifier(wa, "62811", nil, zaptest.NewLogger(t))

	if err := n.SendOutbound(context.Background(), models.OutboundMessageRequest{Message: "digest"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if wa.sent[0].To != "62811" || wa.sent[0].Body != "digest" {
		t.Errorf("unexpected send %+v", wa.sent[0])
	}

	if _, err := n.RecentDeliveries(context.Background(), 5); !errors.Is(err, ErrDeliveryLogDisabled) {
		t.Errorf("expected ErrDeliveryLogDisabled, got %v", err)
	}
}
