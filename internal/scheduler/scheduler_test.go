package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/reporting"
)

type stubDigest struct {
	text      string
	exportErr error
	exported  int
}

func (s *stubDigest) BuildDigest(time.Time) string { return s.text }

func (s *stubDigest) ExportSnapshot(context.Context, time.Time) (int, error) {
	s.exported++
	return 3, s.exportErr
}

type recordingMessenger struct {
	sent []models.OutboundMessageRequest
	err  error
}

func (m *recordingMessenger) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	m.sent = append(m.sent, req)
	return m.err
}

func TestRunDigestSendsAndExports(t *testing.T) {
	digest := &stubDigest{text: "Pantry digest"}
	messenger := &recordingMessenger{}
	s := NewScheduler("0 20 * * *", time.UTC, digest, messenger, "62811", zaptest.NewLogger(t))

	s.RunDigest(context.Background())

	if len(messenger.sent) != 1 || messenger.sent[0].To != "62811" || messenger.sent[0].Message != "Pantry digest" {
		t.Errorf("unexpected messages %+v", messenger.sent)
	}
	if digest.exported != 1 {
		t.Errorf("expected one export, got %d", digest.exported)
	}
}

func TestRunDigestToleratesFailures(t *testing.T) {
	digest := &stubDigest{text: "x", exportErr: reporting.ErrExportDisabled}
	messenger := &recordingMessenger{err: errors.New("offline")}
	s := NewScheduler("0 20 * * *", time.UTC, digest, messenger, "", zaptest.NewLogger(t))

	s.RunDigest(context.Background())
	if digest.exported != 1 {
		t.Error("export must still run after a failed send")
	}

	withoutMessenger := NewScheduler("0 20 * * *", time.UTC, digest, nil, "", zaptest.NewLogger(t))
	withoutMessenger.RunDigest(context.Background())
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler("not a cron", time.UTC, &stubDigest{}, nil, "", zaptest.NewLogger(t))
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected an invalid schedule error")
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler("0 20 * * *", time.UTC, &stubDigest{}, nil, "", zaptest.NewLogger(t))
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(s.cron.Entries()) != 1 {
		t.Errorf("expected the digest entry registered")
	}
	s.Stop()
}
