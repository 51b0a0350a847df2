package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

const deliveryTimeout = 30 * time.Second

// Presenter surfaces a fired reminder to the user.
type Presenter interface {
	Present(ctx context.Context, payload models.ReminderPayload)
}

// onceSchedule fires a single time at the given instant. Returning the zero
// time afterwards parks the entry at the end of cron's queue.
type onceSchedule struct {
	at time.Time
}

func (s onceSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}

type pendingEntry struct {
	id      cron.EntryID
	seq     uint64
	fireAt  time.Time
	payload models.ReminderPayload
}

// Jobs is a keyed one-shot job scheduler on top of robfig/cron. At most one
// entry exists per reminder key: scheduling replaces, cancelling an unknown
// key does nothing.
type Jobs struct {
	cron      *cron.Cron
	presenter Presenter
	logger    *zap.Logger

	mu      sync.Mutex
	seq     uint64
	pending map[models.ReminderKey]pendingEntry
}

// NewJobs creates a job scheduler delivering fired reminders to presenter.
func NewJobs(presenter Presenter, logger *zap.Logger) *Jobs {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Jobs{
		cron:      cron.New(cron.WithLogger(cronLogger{logger.Sugar()})),
		presenter: presenter,
		logger:    logger,
		pending:   make(map[models.ReminderKey]pendingEntry),
	}
}

// Start begins dispatching due reminders.
func (j *Jobs) Start() {
	j.logger.Info("starting reminder jobs")
	j.cron.Start()
}

// Stop halts dispatching and waits for running deliveries.
func (j *Jobs) Stop() {
	j.logger.Info("stopping reminder jobs")
	<-j.cron.Stop().Done()
}

// ScheduleOnce registers payload to fire at fireAt under key, replacing any
// pending entry with the same key.
func (j *Jobs) ScheduleOnce(key models.ReminderKey, fireAt time.Time, payload models.ReminderPayload) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if existing, ok := j.pending[key]; ok {
		j.cron.Remove(existing.id)
	}

	j.seq++
	seq := j.seq
	id := j.cron.Schedule(onceSchedule{at: fireAt}, cron.FuncJob(func() {
		j.fire(key, seq, payload)
	}))

	j.pending[key] = pendingEntry{id: id, seq: seq, fireAt: fireAt, payload: payload}
	j.logger.Debug("reminder scheduled", zap.Stringer("key", key), zap.Time("fire_at", fireAt))
}

// Cancel drops the pending entry under key, if any.
func (j *Jobs) Cancel(key models.ReminderKey) {
	j.mu.Lock()
	defer j.mu.Unlock()

	existing, ok := j.pending[key]
	if !ok {
		return
	}
	j.cron.Remove(existing.id)
	delete(j.pending, key)
	j.logger.Debug("reminder cancelled", zap.Stringer("key", key))
}

// Pending lists the entries waiting to fire, soonest first.
func (j *Jobs) Pending() []models.PendingReminder {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]models.PendingReminder, 0, len(j.pending))
	for key, e := range j.pending {
		out = append(out, models.PendingReminder{Key: key, FireAt: e.fireAt, Payload: e.payload})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].FireAt.Equal(out[b].FireAt) {
			return out[a].Key.String() < out[b].Key.String()
		}
		return out[a].FireAt.Before(out[b].FireAt)
	})
	return out
}

func (j *Jobs) fire(key models.ReminderKey, seq uint64, payload models.ReminderPayload) {
	j.mu.Lock()
	current, ok := j.pending[key]
	if !ok || current.seq != seq {
		// Replaced or cancelled while the timer was already running.
		j.mu.Unlock()
		return
	}
	delete(j.pending, key)
	j.cron.Remove(current.id)
	j.mu.Unlock()

	j.logger.Info("reminder due", zap.Stringer("key", key), zap.Int64("item_id", payload.ItemID))

	if j.presenter == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	j.presenter.Present(ctx, payload)
}

// cronLogger routes robfig/cron errors into zap. Its info output is
// per-wakeup noise and is dropped.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(string, ...interface{}) {}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
