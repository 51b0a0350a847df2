package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/pubsub"
	"github.com/mamadbah2/pantry/internal/service/reminders"
)

// Repository is the persistence the inventory is kept in.
type Repository interface {
	List(ctx context.Context) ([]models.InventoryItem, error)
	ListByCategory(ctx context.Context, category string) ([]models.InventoryItem, error)
	ListProducts(ctx context.Context) ([]models.InventoryItem, error)
	Get(ctx context.Context, id int64) (models.InventoryItem, error)
	Insert(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error)
	Update(ctx context.Context, item models.InventoryItem) error
	Delete(ctx context.Context, id int64) error
	DeleteProducts(ctx context.Context) (int64, error)
	RenameCategory(ctx context.Context, oldName, newName string) (int64, error)
	DeleteCategory(ctx context.Context, category string) (int64, error)
}

// ModeSource tells which reminder mode is active for new plans.
type ModeSource interface {
	Mode(ctx context.Context) models.ReminderMode
}

// Service owns every inventory write. Commands run one at a time and each
// successful one republishes the full ordered snapshot.
type Service struct {
	repo    Repository
	planner reminders.Planner
	jobs    reminders.JobScheduler
	modes   ModeSource
	hub     *pubsub.Hub[[]models.InventoryItem]
	logger  *zap.Logger
	now     func() time.Time

	mu sync.Mutex
}

// NewService wires the inventory service.
func NewService(repo Repository, planner reminders.Planner, jobs reminders.JobScheduler, modes ModeSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		planner: planner,
		jobs:    jobs,
		modes:   modes,
		hub:     pubsub.NewHub[[]models.InventoryItem](),
		logger:  logger,
		now:     time.Now,
	}
}

// Load reads the snapshot from storage and publishes it.
func (s *Service) Load(ctx context.Context) ([]models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

// Snapshot returns the last published snapshot. The second value is false
// until the first load completes.
func (s *Service) Snapshot() ([]models.InventoryItem, bool) {
	return s.hub.Latest()
}

// Subscribe streams snapshots. The returned slices are shared and must not
// be modified.
func (s *Service) Subscribe() (<-chan []models.InventoryItem, func()) {
	return s.hub.Subscribe()
}

// RestoreReminders re-plans every product. Job scheduler entries live in
// memory only, so this runs once at startup.
func (s *Service) RestoreReminders(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore reminders: %w", err)
	}

	mode := s.mode(ctx)
	planned := 0
	for _, item := range products {
		cancels, schedules := s.planner.Reschedule(item, mode, s.now())
		reminders.Apply(s.jobs, cancels, schedules)
		planned += len(schedules)
	}

	s.logger.Info("reminders restored", zap.Int("items", len(products)), zap.Int("planned", planned))
	return planned, nil
}

// AddItem validates and stores a new product, then plans its reminders.
func (s *Service) AddItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error) {
	if err := item.Validate(); err != nil {
		return models.InventoryItem{}, err
	}
	item.ID = 0

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.repo.Insert(ctx, item)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("add item: %w", err)
	}

	s.schedule(ctx, saved)
	s.logger.Info("item added", zap.Int64("item_id", saved.ID), zap.String("category", saved.Category))
	s.publish(ctx)
	return saved, nil
}

// UpdateItem replaces an existing product. Every reminder kind of the item is
// cancelled before the write; when the write fails the previous plan is put
// back and the error returned.
func (s *Service) UpdateItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error) {
	if err := item.Validate(); err != nil {
		return models.InventoryItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, err := s.repo.Get(ctx, item.ID)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("load item %d: %w", item.ID, err)
	}

	reminders.Apply(s.jobs, s.planner.OnItemRemoved(item.ID), nil)

	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Warn("update failed, restoring previous reminders", zap.Int64("item_id", item.ID), zap.Error(err))
		s.schedule(ctx, previous)
		return models.InventoryItem{}, fmt.Errorf("update item %d: %w", item.ID, err)
	}

	s.schedule(ctx, item)
	s.logger.Info("item updated", zap.Int64("item_id", item.ID))
	s.publish(ctx)
	return item, nil
}

// DeleteItem cancels the item's reminders and removes it.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders.Apply(s.jobs, s.planner.OnItemRemoved(id), nil)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}

	s.logger.Info("item deleted", zap.Int64("item_id", id))
	s.publish(ctx)
	return nil
}

// AddCategory records an empty category through a placeholder row.
func (s *Service) AddCategory(ctx context.Context, name string) (models.InventoryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.InventoryItem{}, models.ErrBlankCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.repo.Insert(ctx, models.NewPlaceholder(name))
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("add category %q: %w", name, err)
	}

	s.logger.Info("category added", zap.String("category", name))
	s.publish(ctx)
	return saved, nil
}

// RenameCategory moves every row of oldName to newName. A blank new name or
// one equal to the old name ignoring case does nothing.
func (s *Service) RenameCategory(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" || strings.EqualFold(oldName, newName) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.repo.RenameCategory(ctx, oldName, newName)
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}

	s.logger.Info("category renamed", zap.String("from", oldName), zap.String("to", newName), zap.Int64("rows", n))
	s.publish(ctx)
	return nil
}

// DeleteCategory cancels the reminders of every product in the category and
// then removes all of its rows, placeholder included.
func (s *Service) DeleteCategory(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.repo.ListByCategory(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}
	reminders.Apply(s.jobs, s.planner.OnCategoryRemoved(productIDs(rows)), nil)

	n, err := s.repo.DeleteCategory(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}

	s.logger.Info("category deleted", zap.String("category", name), zap.Int64("rows", n))
	s.publish(ctx)
	return n, nil
}

// ClearAll cancels every product's reminders and removes the products.
// Category placeholders are kept.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear inventory: %w", err)
	}
	reminders.Apply(s.jobs, s.planner.OnCategoryRemoved(productIDs(products)), nil)

	n, err := s.repo.DeleteProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear inventory: %w", err)
	}

	s.logger.Info("inventory cleared", zap.Int64("rows", n))
	s.publish(ctx)
	return n, nil
}

func (s *Service) mode(ctx context.Context) models.ReminderMode {
	if s.modes == nil {
		return models.ModeNormal
	}
	return s.modes.Mode(ctx)
}

func (s *Service) schedule(ctx context.Context, item models.InventoryItem) {
	mode := s.mode(ctx)
	commands := s.planner.OnItemSaved(item, mode, s.now())
	reminders.Apply(s.jobs, nil, commands)
	if len(commands) > 0 {
		s.logger.Debug("reminders planned",
			zap.Int64("item_id", item.ID),
			zap.Stringer("mode", mode),
			zap.Int("count", len(commands)))
	}
}

// publish reloads after a successful write. A failed reload leaves the
// previous snapshot in place; the write itself already succeeded.
func (s *Service) publish(ctx context.Context) {
	if _, err := s.refresh(ctx); err != nil {
		s.logger.Error("refreshing inventory snapshot failed", zap.Error(err))
	}
}

func (s *Service) refresh(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	s.hub.Publish(items)
	return items, nil
}

func productIDs(items []models.InventoryItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.IsPlaceholder() {
			continue
		}
		ids = append(ids, item.ID)
	}
	return ids
}
