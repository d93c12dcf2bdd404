package services

import (
	"context"
	"sync"
	"time"

	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

// ChangeListener is called after shared data changed, locally or in another process
type ChangeListener func(ctx context.Context)

// ChangeFeed writes the iuran_dirty signal after local mutations and fans change
// events out to listeners. It remembers the last value this process wrote so
// pollers can tell foreign writes apart from their own.
type ChangeFeed struct {
	flags repository.FlagRepository
	now   Clock

	mu        sync.RWMutex
	last      string
	listeners []ChangeListener
}

// NewChangeFeed creates a change feed over the flag store
func NewChangeFeed(flags repository.FlagRepository, now Clock) *ChangeFeed {
	if now == nil {
		now = time.Now
	}
	return &ChangeFeed{flags: flags, now: now}
}

// Subscribe registers a listener for every change event
func (f *ChangeFeed) Subscribe(fn ChangeListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// Touch records a local mutation: the dirty timestamp is written and listeners run.
// A failed write is logged only.
func (f *ChangeFeed) Touch(ctx context.Context) {
	v, err := f.flags.MarkDirty(ctx, f.now())
	if err != nil {
		logger.Error("Failed to write change signal", "error", err)
	} else {
		f.mu.Lock()
		f.last = v
		f.mu.Unlock()
	}
	f.Publish(ctx)
}

// Publish runs listeners without writing the dirty signal
func (f *ChangeFeed) Publish(ctx context.Context) {
	f.mu.RLock()
	listeners := append([]ChangeListener(nil), f.listeners...)
	f.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx)
	}
}

// IsForeign reports whether a dirty value was written by another process.
// The value is remembered, so each foreign write is reported once.
func (f *ChangeFeed) IsForeign(value string) bool {
	if value == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if value == f.last {
		return false
	}
	f.last = value
	return true
}

// Last returns the most recent dirty value seen by this process
func (f *ChangeFeed) Last() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.last
}
