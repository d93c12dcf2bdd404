package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/internal/statemachine"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

// PeriodConfig is a dues config together with its period, for listings
type PeriodConfig struct {
	Period string `json:"period"`
	models.DuesConfig
}

// DuesConfigService manages the per-period dues amount and closed flag
type DuesConfigService struct {
	mu   sync.Mutex
	repo repository.DuesConfigRepository
	feed *ChangeFeed
	now  Clock
}

// NewDuesConfigService creates a dues configuration service
func NewDuesConfigService(repo repository.DuesConfigRepository, feed *ChangeFeed, now Clock) *DuesConfigService {
	if now == nil {
		now = time.Now
	}
	return &DuesConfigService{repo: repo, feed: feed, now: now}
}

// Get returns the configured amount for period, or 0
func (s *DuesConfigService) Get(ctx context.Context, period string) int64 {
	cfg, err := s.Find(ctx, period)
	if err != nil {
		if err != ErrDuesNotConfigured {
			logger.Error("Failed to read dues config", "period", period, "error", err)
		}
		return 0
	}
	return cfg.Amount
}

// Find returns ErrDuesNotConfigured when the period has no config
func (s *DuesConfigService) Find(ctx context.Context, period string) (*models.DuesConfig, error) {
	configs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	cfg, ok := configs[period]
	if !ok {
		return nil, ErrDuesNotConfigured
	}
	return &cfg, nil
}

// Exists reports whether the period has a config
func (s *DuesConfigService) Exists(ctx context.Context, period string) bool {
	_, err := s.Find(ctx, period)
	return err == nil
}

// IsClosed reports whether the period has been closed
func (s *DuesConfigService) IsClosed(ctx context.Context, period string) bool {
	cfg, err := s.Find(ctx, period)
	return err == nil && cfg.Closed
}

// List returns every configured period, newest first
func (s *DuesConfigService) List(ctx context.Context) ([]PeriodConfig, error) {
	configs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PeriodConfig, 0, len(configs))
	for period, cfg := range configs {
		out = append(out, PeriodConfig{Period: period, DuesConfig: cfg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period > out[j].Period })
	return out, nil
}

// ValidateCreate checks the create rules without writing anything
func (s *DuesConfigService) ValidateCreate(ctx context.Context, period string, amount int64) error {
	if !models.ValidPeriod(period) {
		return ErrInvalidPeriod
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if period != models.PeriodOf(s.now()) {
		return ErrPeriodNotCurrent
	}
	cfg, err := s.Find(ctx, period)
	if err == nil && cfg.Amount > 0 {
		return ErrDuesAlreadyConfigured
	}
	if err != nil && err != ErrDuesNotConfigured {
		return err
	}
	return nil
}

// Create stores the dues amount of the current month. A period that already has a
// positive amount is rejected; the amount is changed through Edit instead.
func (s *DuesConfigService) Create(ctx context.Context, period string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ValidateCreate(ctx, period, amount); err != nil {
		return err
	}
	return s.mutate(ctx, func(configs models.DuesConfigs) bool {
		configs[period] = models.DuesConfig{Amount: amount, CreatedAt: s.now()}
		return true
	})
}

// Edit changes the amount of an existing period. Any month may be edited.
func (s *DuesConfigService) Edit(ctx context.Context, period string, amount int64) error {
	if !models.ValidPeriod(period) {
		return ErrInvalidPeriod
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var missing bool
	err := s.mutate(ctx, func(configs models.DuesConfigs) bool {
		cfg, ok := configs[period]
		if !ok {
			missing = true
			return false
		}
		cfg.Amount = amount
		configs[period] = cfg
		return true
	})
	if err != nil {
		return err
	}
	if missing {
		return ErrDuesNotConfigured
	}
	return nil
}

// Upsert writes the amount for period, creating the config when missing. It mirrors
// amounts reported by the remote service and skips the create rules.
func (s *DuesConfigService) Upsert(ctx context.Context, period string, amount int64) error {
	if amount <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(configs models.DuesConfigs) bool {
		cfg, ok := configs[period]
		if ok && cfg.Amount == amount {
			return false
		}
		if !ok {
			cfg.CreatedAt = s.now()
		}
		cfg.Amount = amount
		configs[period] = cfg
		return true
	})
}

// Close marks the period closed. It returns false when the period is missing or already closed.
func (s *DuesConfigService) Close(ctx context.Context, period string) (bool, error) {
	return s.transition(ctx, period, statemachine.EventClose)
}

// Reopen marks a closed period open again. It returns false when nothing changed.
func (s *DuesConfigService) Reopen(ctx context.Context, period string) (bool, error) {
	return s.transition(ctx, period, statemachine.EventReopen)
}

func (s *DuesConfigService) transition(ctx context.Context, period, event string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	var fsmErr error
	err := s.mutate(ctx, func(configs models.DuesConfigs) bool {
		cfg, ok := configs[period]
		if !ok {
			return false
		}
		pfsm := statemachine.NewPeriodFSM(&cfg)
		if !pfsm.Can(event) {
			return false
		}
		if event == statemachine.EventClose {
			fsmErr = pfsm.Close(ctx)
		} else {
			fsmErr = pfsm.Reopen(ctx)
		}
		if fsmErr != nil {
			return false
		}
		configs[period] = cfg
		changed = true
		return true
	})
	if err != nil {
		return false, err
	}
	if fsmErr != nil {
		return false, fsmErr
	}
	return changed, nil
}

// Delete removes the period's config. It returns false when there was none.
func (s *DuesConfigService) Delete(ctx context.Context, period string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := false
	err := s.mutate(ctx, func(configs models.DuesConfigs) bool {
		if _, ok := configs[period]; !ok {
			return false
		}
		delete(configs, period)
		deleted = true
		return true
	})
	return deleted, err
}

// MigrateLegacy folds the single-slot dues_config record into dues_configs and removes
// it. An existing per-period entry wins over the legacy value.
func (s *DuesConfigService) MigrateLegacy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	legacy, err := s.repo.FindLegacy(ctx)
	if err != nil {
		return fmt.Errorf("failed to read legacy dues config: %w", err)
	}
	if legacy == nil {
		return nil
	}

	if models.ValidPeriod(legacy.Month) && legacy.Amount > 0 {
		err := s.mutate(ctx, func(configs models.DuesConfigs) bool {
			if _, ok := configs[legacy.Month]; ok {
				return false
			}
			configs[legacy.Month] = models.DuesConfig{Amount: legacy.Amount, CreatedAt: s.now()}
			return true
		})
		if err != nil {
			return err
		}
		logger.Info("Legacy dues config migrated", "period", legacy.Month, "amount", legacy.Amount)
	} else {
		logger.Warn("Discarding unusable legacy dues config", "month", legacy.Month, "amount", legacy.Amount)
	}

	if err := s.repo.DeleteLegacy(ctx); err != nil {
		return fmt.Errorf("failed to remove legacy dues config: %w", err)
	}
	return nil
}

// mutate loads all configs, applies fn, and saves when fn reports a change. Callers hold s.mu.
func (s *DuesConfigService) mutate(ctx context.Context, fn func(configs models.DuesConfigs) bool) error {
	configs, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	if !fn(configs) {
		return nil
	}
	if err := s.repo.SaveAll(ctx, configs); err != nil {
		return fmt.Errorf("failed to save dues configs: %w", err)
	}
	s.feed.Touch(ctx)
	return nil
}
