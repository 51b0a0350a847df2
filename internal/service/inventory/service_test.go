package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository/sqlite"
	"github.com/mamadbah2/pantry/internal/service/reminders"
)

type fakeJobs struct {
	calls     []string
	scheduled map[models.ReminderKey]time.Time
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{scheduled: make(map[models.ReminderKey]time.Time)}
}

func (f *fakeJobs) ScheduleOnce(key models.ReminderKey, fireAt time.Time, _ models.ReminderPayload) {
	f.calls = append(f.calls, "schedule "+key.String())
	f.scheduled[key] = fireAt
}

func (f *fakeJobs) Cancel(key models.ReminderKey) {
	f.calls = append(f.calls, "cancel "+key.String())
	delete(f.scheduled, key)
}

func (f *fakeJobs) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

type fixedMode models.ReminderMode

func (m fixedMode) Mode(context.Context) models.ReminderMode { return models.ReminderMode(m) }

var testNow = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, mode models.ReminderMode) (*Service, *fakeJobs, *sqlite.ItemRepository) {
	t.Helper()
	repo := sqlite.NewItemRepository(sqlite.NewTestDB(t))
	jobs := newFakeJobs()
	svc := NewService(repo, reminders.NewPlanner(time.UTC), jobs, fixedMode(mode), zaptest.NewLogger(t))
	svc.now = func() time.Time { return testNow }
	return svc, jobs, repo
}

func product(name, category string, expiresIn time.Duration) models.InventoryItem {
	return models.InventoryItem{Name: name, Category: category, Quantity: 1, ExpiresAt: testNow.Add(expiresIn)}
}

func TestAddItemSchedulesAndPublishes(t *testing.T) {
	ctx := context.Background()
	svc, jobs, _ := newTestService(t, models.ModeNormal)
	updates, cancel := svc.Subscribe()
	defer cancel()

	saved, err := svc.AddItem(ctx, product("Yogurt", "Dairy", 10*24*time.Hour))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if len(jobs.scheduled) != 2 {
		t.Errorf("expected 2 scheduled reminders, got %d", len(jobs.scheduled))
	}

	snapshot := <-updates
	if len(snapshot) != 1 || snapshot[0].ID != saved.ID {
		t.Errorf("unexpected snapshot %+v", snapshot)
	}
}

func TestAddItemFastTestMode(t *testing.T) {
	svc, jobs, _ := newTestService(t, models.ModeFastTest)
	saved, err := svc.AddItem(context.Background(), product("Cheese", "Dairy", -time.Hour))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	key := models.ReminderKey{ItemID: saved.ID, Kind: models.OffsetTest}
	fireAt, ok := jobs.scheduled[key]
	if !ok || !fireAt.Equal(testNow.Add(5*time.Second)) {
		t.Errorf("expected test reminder 5s after save, got %v (present=%v)", fireAt, ok)
	}
}

func TestAddItemValidation(t *testing.T) {
	svc, jobs, repo := newTestService(t, models.ModeNormal)
	cases := []struct {
		name string
		item models.InventoryItem
		want error
	}{
		{"blank name", models.InventoryItem{Name: " ", Category: "Dairy", Quantity: 1}, models.ErrBlankName},
		{"blank category", models.InventoryItem{Name: "Milk", Category: "", Quantity: 1}, models.ErrBlankCategory},
		{"zero quantity", models.InventoryItem{Name: "Milk", Category: "Dairy", Quantity: 0}, models.ErrNonPositiveQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(context.Background(), tc.item)
			if !errors.Is(err, tc.want) || !errors.Is(err, models.ErrInvalidItem) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if len(jobs.calls) != 0 {
		t.Errorf("validation failures must not touch the scheduler, got %v", jobs.calls)
	}
	items, _ := repo.List(context.Background())
	if len(items) != 0 {
		t.Errorf("validation failures must not store rows, got %d", len(items))
	}
}

func TestUpdateItemCancelsThenReschedules(t *testing.T) {
	ctx := context.Background()
	svc, jobs, _ := newTestService(t, models.ModeNormal)
	saved, _ := svc.AddItem(ctx, product("Ham", "Meat", 10*24*time.Hour))
	jobs.calls = nil

	saved.ExpiresAt = testNow.Add(-24 * time.Hour)
	if _, err := svc.UpdateItem(ctx, saved); err != nil {
		t.Fatalf("update: %v", err)
	}

	if jobs.count("cancel") != len(models.OffsetKinds) {
		t.Errorf("expected every kind cancelled, got %v", jobs.calls)
	}
	if jobs.count("schedule") != 0 || len(jobs.scheduled) != 0 {
		t.Errorf("an item already expired gets no reminders, got %v", jobs.calls)
	}
}

type failingUpdateRepo struct {
	*sqlite.ItemRepository
}

func (failingUpdateRepo) Update(context.Context, models.InventoryItem) error {
	return errors.New("disk full")
}

func TestUpdateItemFailureRestoresPreviousPlan(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewItemRepository(sqlite.NewTestDB(t))
	jobs := newFakeJobs()
	svc := NewService(failingUpdateRepo{repo}, reminders.NewPlanner(time.UTC), jobs, fixedMode(models.ModeNormal), zaptest.NewLogger(t))
	svc.now = func() time.Time { return testNow }

	saved, err := svc.AddItem(ctx, product("Ham", "Meat", 10*24*time.Hour))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	before := len(jobs.scheduled)

	edited := saved
	edited.ExpiresAt = testNow.Add(30 * 24 * time.Hour)
	if _, err := svc.UpdateItem(ctx, edited); err == nil {
		t.Fatal("expected update error")
	}

	if len(jobs.scheduled) != before {
		t.Fatalf("expected previous plan restored (%d entries), got %d", before, len(jobs.scheduled))
	}
	want := reminders.NewPlanner(time.UTC).FireTime(saved.ExpiresAt, 3)
	if got := jobs.scheduled[models.ReminderKey{ItemID: saved.ID, Kind: models.OffsetThreeDays}]; !got.Equal(want) {
		t.Errorf("restored reminder at %v, want %v", got, want)
	}
}

func TestUpdateMissingItem(t *testing.T) {
	svc, _, _ := newTestService(t, models.ModeNormal)
	_, err := svc.UpdateItem(context.Background(), models.InventoryItem{ID: 42, Name: "Ghost", Category: "X", Quantity: 1})
	if !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestDeleteItemCancelsFirst(t *testing.T) {
	ctx := context.Background()
	svc, jobs, repo := newTestService(t, models.ModeNormal)
	saved, _ := svc.AddItem(ctx, product("Milk", "Dairy", 10*24*time.Hour))
	jobs.calls = nil

	if err := svc.DeleteItem(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if jobs.count("cancel") != len(models.OffsetKinds) || len(jobs.scheduled) != 0 {
		t.Errorf("expected all reminders cancelled, got %v", jobs.calls)
	}
	if _, err := repo.Get(ctx, saved.ID); !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("expected row removed, got %v", err)
	}
}

func TestDeleteCategoryCancelsEveryProduct(t *testing.T) {
	ctx := context.Background()
	svc, jobs, repo := newTestService(t, models.ModeNormal)

	if _, err := svc.AddCategory(ctx, "Dairy"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	for _, name := range []string{"Milk", "Cream", "Butter"} {
		if _, err := svc.AddItem(ctx, product(name, "Dairy", 10*24*time.Hour)); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	apple, _ := svc.AddItem(ctx, product("Apple", "Fruit", 10*24*time.Hour))
	jobs.calls = nil

	n, err := svc.DeleteCategory(ctx, "Dairy")
	if err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 rows removed, got %d", n)
	}
	if got := jobs.count("cancel"); got != 3*len(models.OffsetKinds) {
		t.Errorf("expected %d cancels, got %d", 3*len(models.OffsetKinds), got)
	}

	items, _ := repo.List(ctx)
	if len(items) != 1 || items[0].ID != apple.ID {
		t.Errorf("unexpected remaining rows %+v", items)
	}
	if _, ok := jobs.scheduled[models.ReminderKey{ItemID: apple.ID, Kind: models.OffsetThreeDays}]; !ok {
		t.Error("other categories keep their reminders")
	}
}

func TestAddCategoryCreatesPlaceholder(t *testing.T) {
	ctx := context.Background()
	svc, jobs, _ := newTestService(t, models.ModeFastTest)

	saved, err := svc.AddCategory(ctx, " Frozen ")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	if saved.Name != "Category: Frozen" || saved.Category != "Frozen" || saved.Quantity != 0 {
		t.Errorf("unexpected placeholder %+v", saved)
	}
	if len(jobs.calls) != 0 {
		t.Errorf("placeholders get no reminders, got %v", jobs.calls)
	}
	if _, err := svc.AddCategory(ctx, "  "); !errors.Is(err, models.ErrBlankCategory) {
		t.Errorf("expected ErrBlankCategory, got %v", err)
	}
}

func TestRenameCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, repo := newTestService(t, models.ModeNormal)
	svc.AddCategory(ctx, "Dairy")
	svc.AddItem(ctx, product("Milk", "Dairy", 24*time.Hour))

	for _, noop := range []string{"", "  ", "DAIRY", "dairy"} {
		if err := svc.RenameCategory(ctx, "Dairy", noop); err != nil {
			t.Fatalf("rename to %q: %v", noop, err)
		}
	}
	rows, _ := repo.ListByCategory(ctx, "Dairy")
	if len(rows) != 2 {
		t.Fatalf("no-op renames changed rows: %+v", rows)
	}

	if err := svc.RenameCategory(ctx, "Dairy", "Milk products"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	rows, _ = repo.ListByCategory(ctx, "Milk products")
	if len(rows) != 2 {
		t.Errorf("expected 2 renamed rows, got %d", len(rows))
	}
}

func TestClearAllKeepsPlaceholders(t *testing.T) {
	ctx := context.Background()
	svc, jobs, _ := newTestService(t, models.ModeNormal)
	svc.AddCategory(ctx, "Dairy")
	svc.AddItem(ctx, product("Milk", "Dairy", 10*24*time.Hour))
	svc.AddItem(ctx, product("Apple", "Fruit", 10*24*time.Hour))
	jobs.calls = nil

	n, err := svc.ClearAll(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 products removed, got %d", n)
	}
	if got := jobs.count("cancel"); got != 2*len(models.OffsetKinds) {
		t.Errorf("expected %d cancels, got %d", 2*len(models.OffsetKinds), got)
	}

	snapshot, ok := svc.Snapshot()
	if !ok || len(snapshot) != 1 || !snapshot[0].IsPlaceholder() {
		t.Errorf("expected only the placeholder in the snapshot, got %+v", snapshot)
	}
}

func TestLoadPublishesInitialSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _, repo := newTestService(t, models.ModeNormal)
	if _, ok := svc.Snapshot(); ok {
		t.Fatal("snapshot must be absent before the first load")
	}

	repo.Insert(ctx, product("Bread", "Bakery", time.Hour))
	items, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	snapshot, ok := svc.Snapshot()
	if !ok || len(snapshot) != 1 || len(items) != 1 {
		t.Errorf("unexpected snapshot after load: %+v", snapshot)
	}
}

func TestRestoreReminders(t *testing.T) {
	ctx := context.Background()
	svc, jobs, repo := newTestService(t, models.ModeNormal)

	repo.Insert(ctx, models.NewPlaceholder("Dairy"))
	repo.Insert(ctx, product("Milk", "Dairy", 10*24*time.Hour))
	repo.Insert(ctx, product("Bread", "Bakery", -time.Hour))

	planned, err := svc.RestoreReminders(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if planned != 2 || len(jobs.scheduled) != 2 {
		t.Errorf("expected milk's two reminders, got planned=%d scheduled=%v", planned, jobs.scheduled)
	}
}
