package services

import (
	"context"
	"sync"
	"time"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/internal/storage"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

// SyncService keeps this process current with the calendar and with writes made by
// other processes sharing the store.
type SyncService struct {
	flags repository.FlagRepository
	feed  *ChangeFeed
	dues  *DuesService
	now   Clock

	mu     sync.Mutex
	period string
}

func NewSyncService(flags repository.FlagRepository, feed *ChangeFeed, dues *DuesService, now Clock) *SyncService {
	if now == nil {
		now = time.Now
	}
	return &SyncService{flags: flags, feed: feed, dues: dues, now: now}
}

// CurrentPeriod returns the period seen by the last rollover check
func (s *SyncService) CurrentPeriod() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// CheckRollover re-reads the current period's status, which also runs the closing
// policy. When the month changed since the last check, dependents are told.
func (s *SyncService) CheckRollover(ctx context.Context) error {
	period := models.PeriodOf(s.now())

	s.mu.Lock()
	previous := s.period
	s.period = period
	s.mu.Unlock()

	if previous != "" && previous != period {
		logger.Info("Dues period rolled over", "from", previous, "to", period)
		s.feed.Publish(ctx)
	}

	_, err := s.dues.Status(ctx, period)
	return err
}

// PollDirty compares the shared change signal with the last value this process saw.
// A foreign value means another process wrote shared data.
func (s *SyncService) PollDirty(ctx context.Context) error {
	v, err := s.flags.Dirty(ctx)
	if err != nil {
		return err
	}
	if s.feed.IsForeign(v) {
		logger.Debug("Foreign change detected", "dirty", v)
		s.feed.Publish(ctx)
	}
	return nil
}

// HandleStorageChange reacts to keys reported by the storage watcher. When the change
// signal is among them it decides; otherwise the data changed without a signal and
// dependents are told directly.
func (s *SyncService) HandleStorageChange(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if k == storage.KeyDirty {
			return s.PollDirty(ctx)
		}
	}
	if len(keys) > 0 {
		logger.Debug("Shared keys changed", "keys", keys)
		s.feed.Publish(ctx)
	}
	return nil
}
