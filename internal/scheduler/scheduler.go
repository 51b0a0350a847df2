package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/reporting"
)

const digestTimeout = 2 * time.Minute

// DigestBuilder produces the daily inventory summary and optional export.
type DigestBuilder interface {
	BuildDigest(now time.Time) string
	ExportSnapshot(ctx context.Context, now time.Time) (int, error)
}

// Messenger pushes a text to the configured recipient.
type Messenger interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler runs the recurring daily digest.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	digest    DigestBuilder
	messenger Messenger
	recipient string
	loc       *time.Location
	logger    *zap.Logger
}

// NewScheduler creates a digest scheduler evaluating the cron schedule in loc.
func NewScheduler(schedule string, loc *time.Location, digest DigestBuilder, messenger Messenger, recipient string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(cron.WithLocation(loc), cron.WithLogger(cronLogger{logger.Sugar()}))

	return &Scheduler{
		cron:      c,
		schedule:  schedule,
		digest:    digest,
		messenger: messenger,
		recipient: recipient,
		loc:       loc,
		logger:    logger,
	}
}

// Start registers the digest and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("digest_cron", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunDigest(context.Background()) }); err != nil {
		return fmt.Errorf("schedule daily digest: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running digest.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunDigest builds the digest, sends it and refreshes the spreadsheet
// export. Each step logs its own failure.
func (s *Scheduler) RunDigest(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, digestTimeout)
	defer cancel()

	now := time.Now().In(s.loc)
	s.logger.Info("generating daily digest")
	text := s.digest.BuildDigest(now)

	if s.messenger != nil {
		req := models.OutboundMessageRequest{To: s.recipient, Message: text}
		if err := s.messenger.SendOutbound(ctx, req); err != nil {
			s.logger.Error("failed to send daily digest", zap.Error(err))
		} else {
			s.logger.Info("daily digest sent successfully")
		}
	} else {
		s.logger.Info("daily digest", zap.String("text", text))
	}

	n, err := s.digest.ExportSnapshot(ctx, now)
	switch {
	case errors.Is(err, reporting.ErrExportDisabled):
	case err != nil:
		s.logger.Error("failed to export inventory", zap.Error(err))
	default:
		s.logger.Info("inventory exported", zap.Int("rows", n))
	}
}
