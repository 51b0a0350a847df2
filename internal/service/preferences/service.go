package preferences

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/pubsub"
)

const (
	keyProfileName        = "profile.name"
	keyProfileDescription = "profile.description"
	keyTestMode           = "reminders.test_mode"

	DefaultName        = "Pantry keeper"
	DefaultDescription = "Home kitchen"
)

// Store is the key/value persistence the preferences live in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, values map[string]string) error
}

// Service reads and writes user preferences and publishes every change.
type Service struct {
	store  Store
	hub    *pubsub.Hub[models.Preferences]
	logger *zap.Logger
}

// NewService wires a preferences service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		hub:    pubsub.NewHub[models.Preferences](),
		logger: logger,
	}
}

// Get returns every preference, defaults filled in.
func (s *Service) Get(ctx context.Context) (models.Preferences, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return models.Preferences{}, err
	}
	testMode, err := s.TestMode(ctx)
	if err != nil {
		return models.Preferences{}, err
	}
	return models.Preferences{Profile: profile, TestMode: testMode}, nil
}

// Profile returns the stored profile or the defaults.
func (s *Service) Profile(ctx context.Context) (models.Profile, error) {
	name, err := s.stringOr(ctx, keyProfileName, DefaultName)
	if err != nil {
		return models.Profile{}, err
	}
	description, err := s.stringOr(ctx, keyProfileDescription, DefaultDescription)
	if err != nil {
		return models.Profile{}, err
	}
	return models.Profile{Name: name, Description: description}, nil
}

// SaveProfile stores name and description together.
func (s *Service) SaveProfile(ctx context.Context, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ErrBlankProfileName
	}

	err := s.store.Set(ctx, map[string]string{
		keyProfileName:        name,
		keyProfileDescription: strings.TrimSpace(description),
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("profile saved", zap.String("name", name))
	s.publish(ctx)
	return nil
}

// TestMode reports whether fast-test reminders are enabled. Defaults to false.
func (s *Service) TestMode(ctx context.Context) (bool, error) {
	raw, ok, err := s.store.Get(ctx, keyTestMode)
	if err != nil {
		return false, fmt.Errorf("load test mode: %w", err)
	}
	if !ok {
		return false, nil
	}

	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("ignoring malformed test mode value", zap.String("value", raw), zap.Error(err))
		return false, nil
	}
	return enabled, nil
}

// SetTestMode toggles fast-test reminders.
func (s *Service) SetTestMode(ctx context.Context, enabled bool) error {
	if err := s.store.Set(ctx, map[string]string{keyTestMode: strconv.FormatBool(enabled)}); err != nil {
		return fmt.Errorf("save test mode: %w", err)
	}

	s.logger.Info("reminder test mode changed", zap.Bool("enabled", enabled))
	s.publish(ctx)
	return nil
}

// Mode is the reminder mode currently in effect. A read failure falls back
// to normal mode.
func (s *Service) Mode(ctx context.Context) models.ReminderMode {
	enabled, err := s.TestMode(ctx)
	if err != nil {
		s.logger.Warn("reading test mode failed, using normal reminders", zap.Error(err))
		return models.ModeNormal
	}
	return models.Preferences{TestMode: enabled}.Mode()
}

// Subscribe streams preference values, starting with the current one once
// anything has been loaded or saved.
func (s *Service) Subscribe() (<-chan models.Preferences, func()) {
	return s.hub.Subscribe()
}

// Load reads the current preferences and publishes them.
func (s *Service) Load(ctx context.Context) (models.Preferences, error) {
	prefs, err := s.Get(ctx)
	if err != nil {
		return models.Preferences{}, err
	}
	s.hub.Publish(prefs)
	return prefs, nil
}

func (s *Service) publish(ctx context.Context) {
	if _, err := s.Load(ctx); err != nil {
		s.logger.Warn("reloading preferences after save failed", zap.Error(err))
	}
}

func (s *Service) stringOr(ctx context.Context, key, fallback string) (string, error) {
	value, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return fallback, nil
	}
	return value, nil
}
