package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/classifier"
)

// Snapshots is the read side of the inventory.
type Snapshots interface {
	Snapshot() ([]models.InventoryItem, bool)
	Subscribe() (<-chan []models.InventoryItem, func())
}

// Clock is a shared tick source observers attach to while watching.
type Clock interface {
	Subscribe() (<-chan time.Time, func())
}

// Service derives the grouped list view from inventory snapshots.
type Service struct {
	snapshots Snapshots
	clock     Clock
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the live view.
func NewService(snapshots Snapshots, clock Clock, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{snapshots: snapshots, clock: clock, logger: logger, now: time.Now}
}

// Current classifies the latest snapshot once. Loading is returned until the
// inventory has been read.
func (s *Service) Current(filter *string) models.ViewState {
	items, ok := s.snapshots.Snapshot()
	if !ok {
		return models.ViewState{Phase: models.PhaseLoading}
	}
	return classifier.Classify(items, s.now(), filter)
}

// Categories summarizes the latest snapshot per category.
func (s *Service) Categories() []models.CategoryCount {
	items, _ := s.snapshots.Snapshot()
	return classifier.Summarize(items)
}

// Watch emits a fresh ViewState whenever the snapshot changes, the clock
// ticks or a new filter arrives on filters. The first value is Loading until
// a snapshot is available. The channel closes once ctx is done.
func (s *Service) Watch(ctx context.Context, filters <-chan *string, initial *string) <-chan models.ViewState {
	out := make(chan models.ViewState, 1)

	snapshots, stopSnapshots := s.snapshots.Subscribe()
	ticks, stopTicks := s.clock.Subscribe()

	go func() {
		defer close(out)
		defer stopTicks()
		defer stopSnapshots()

		filter := copyFilter(initial)
		var items []models.InventoryItem
		loaded := false

		emit := func() bool {
			state := models.ViewState{Phase: models.PhaseLoading}
			if loaded {
				state = classifier.Classify(items, s.now(), filter)
			}
			select {
			case out <- state:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case next, ok := <-snapshots:
				if !ok {
					return
				}
				items, loaded = next, true
			case <-ticks:
				if !loaded {
					continue
				}
			case f, ok := <-filters:
				if !ok {
					filters = nil
					continue
				}
				filter = copyFilter(f)
				s.logger.Debug("view filter changed", zap.Stringp("category", filter))
			}
			if !emit() {
				return
			}
		}
	}()

	return out
}

func copyFilter(f *string) *string {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
