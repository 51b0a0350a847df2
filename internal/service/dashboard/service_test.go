package dashboard

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/pubsub"
	"github.com/mamadbah2/pantry/internal/scheduler"
)

type hubSnapshots struct {
	hub *pubsub.Hub[[]models.InventoryItem]
}

func (h hubSnapshots) Snapshot() ([]models.InventoryItem, bool) { return h.hub.Latest() }

func (h hubSnapshots) Subscribe() (<-chan []models.InventoryItem, func()) { return h.hub.Subscribe() }

type manualClock struct {
	ticks    chan time.Time
	attached int
}

func (c *manualClock) Subscribe() (<-chan time.Time, func()) {
	c.attached++
	return c.ticks, func() { c.attached-- }
}

var now = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func receive(t *testing.T, ch <-chan models.ViewState) models.ViewState {
	t.Helper()
	select {
	case state, ok := <-ch:
		if !ok {
			t.Fatal("view channel closed")
		}
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("no view state received")
	}
	return models.ViewState{}
}

func TestWatchLoadingThenReady(t *testing.T) {
	hub := pubsub.NewHub[[]models.InventoryItem]()
	clock := &manualClock{ticks: make(chan time.Time)}
	svc := NewService(hubSnapshots{hub}, clock, zaptest.NewLogger(t))
	svc.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	views := svc.Watch(ctx, nil, nil)

	if state := receive(t, views); state.Phase != models.PhaseLoading {
		t.Fatalf("expected loading first, got %s", state.Phase)
	}

	hub.Publish(nil)
	if state := receive(t, views); state.Phase != models.PhaseEmpty {
		t.Fatalf("expected empty for an empty snapshot, got %s", state.Phase)
	}

	hub.Publish([]models.InventoryItem{
		{ID: 1, Name: "Milk", Category: "Dairy", Quantity: 1, ExpiresAt: now.Add(24 * time.Hour)},
	})
	state := receive(t, views)
	if state.Phase != models.PhaseReady || len(state.Groups[models.StatusExpiringSoon]) != 1 {
		t.Fatalf("unexpected ready state %+v", state)
	}
}

func TestWatchReclassifiesOnTickAndFilter(t *testing.T) {
	hub := pubsub.NewHub[[]models.InventoryItem]()
	hub.Publish([]models.InventoryItem{
		{ID: 1, Name: "Milk", Category: "Dairy", Quantity: 1, ExpiresAt: now.Add(time.Minute)},
		{ID: 2, Name: "Apple", Category: "Fruit", Quantity: 3, ExpiresAt: now.Add(10 * 24 * time.Hour)},
	})
	clock := &manualClock{ticks: make(chan time.Time)}
	svc := NewService(hubSnapshots{hub}, clock, zaptest.NewLogger(t))
	current := now
	svc.now = func() time.Time { return current }

	ctx, cancel := context.WithCancel(context.Background())
	filters := make(chan *string)
	views := svc.Watch(ctx, filters, nil)

	receive(t, views) // loading
	state := receive(t, views)
	if len(state.Groups[models.StatusExpiringSoon]) != 1 {
		t.Fatalf("expected milk expiring soon, got %+v", state.Groups)
	}

	current = now.Add(2 * time.Minute)
	clock.ticks <- current
	state = receive(t, views)
	if len(state.Groups[models.StatusExpired]) != 1 {
		t.Fatalf("expected milk expired after tick, got %+v", state.Groups)
	}

	fruit := "Fruit"
	filters <- &fruit
	state = receive(t, views)
	if _, ok := state.Groups[models.StatusExpired]; ok {
		t.Error("filtered view must not contain other categories")
	}
	if len(state.Groups[models.StatusSafe]) != 1 {
		t.Errorf("expected apple in safe group, got %+v", state.Groups)
	}

	cancel()
	for range views {
	}
	if clock.attached != 0 {
		t.Errorf("expected watcher detached from the clock, got %d", clock.attached)
	}
}

func TestWatchDetachesSharedTicker(t *testing.T) {
	hub := pubsub.NewHub[[]models.InventoryItem]()
	ticker := scheduler.NewTicker(time.Hour, zaptest.NewLogger(t))
	svc := NewService(hubSnapshots{hub}, ticker, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	views := svc.Watch(ctx, nil, nil)
	receive(t, views)
	if !ticker.Running() {
		t.Fatal("watching must start the shared ticker")
	}

	cancel()
	for range views {
	}
	if ticker.Running() {
		t.Error("ticker still running after the last watcher left")
	}
}

func TestCurrentAndCategories(t *testing.T) {
	hub := pubsub.NewHub[[]models.InventoryItem]()
	svc := NewService(hubSnapshots{hub}, &manualClock{}, zaptest.NewLogger(t))
	svc.now = func() time.Time { return now }

	if svc.Current(nil).Phase != models.PhaseLoading {
		t.Fatal("expected loading before the first snapshot")
	}

	hub.Publish([]models.InventoryItem{
		models.NewPlaceholder("Frozen"),
		{ID: 2, Name: "Milk", Category: "Dairy", Quantity: 1, ExpiresAt: now.Add(-time.Hour)},
	})
	if state := svc.Current(nil); len(state.Groups[models.StatusExpired]) != 1 {
		t.Errorf("unexpected current state %+v", state)
	}

	counts := svc.Categories()
	want := []models.CategoryCount{{Name: "Dairy", Count: 1}, {Name: "Frozen", Count: 0}}
	if len(counts) != len(want) {
		t.Fatalf("expected %v, got %v", want, counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("category %d = %+v, want %+v", i, counts[i], want[i])
		}
	}
}
