package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultTickInterval is how often observers are told to reclassify.
const DefaultTickInterval = time.Minute

// Ticker is a shared repeating clock. The underlying cron runs only while at
// least one observer is attached and is restarted when one reattaches.
type Ticker struct {
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	nextID int
	subs   map[int]chan time.Time
}

// NewTicker builds an idle ticker firing every interval once observed.
func NewTicker(interval time.Duration, logger *zap.Logger) *Ticker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Ticker{
		interval: interval,
		logger:   logger,
		subs:     make(map[int]chan time.Time),
	}
}

// Subscribe attaches an observer. Ticks are dropped for observers that have
// not consumed the previous one. The returned func detaches and is safe to
// call more than once.
func (t *Ticker) Subscribe() (<-chan time.Time, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan time.Time, 1)
	t.subs[id] = ch

	if t.cron == nil {
		t.cron = cron.New(cron.WithLogger(cronLogger{t.logger.Sugar()}))
		t.cron.Schedule(cron.Every(t.interval), cron.FuncJob(t.broadcast))
		t.cron.Start()
		t.logger.Debug("clock ticker started", zap.Duration("interval", t.interval))
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() { t.unsubscribe(id) })
	}
}

// Running reports whether the underlying timer is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cron != nil
}

// Observers returns the number of attached observers.
func (t *Ticker) Observers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *Ticker) unsubscribe(id int) {
	t.mu.Lock()
	delete(t.subs, id)
	var stopping *cron.Cron
	if len(t.subs) == 0 && t.cron != nil {
		stopping = t.cron
		t.cron = nil
	}
	t.mu.Unlock()

	if stopping != nil {
		<-stopping.Stop().Done()
		t.logger.Debug("clock ticker stopped")
	}
}

func (t *Ticker) broadcast() {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- now:
		default:
		}
	}
}
