package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sjperalta/komplek-api/internal/storage"
)

// FlagRepository manages the small marker keys: demo mode, dirty timestamp and
// the per-period "month closed" notification markers. Values are plain strings.
type FlagRepository interface {
	IsLocalMode(ctx context.Context) (bool, error)
	SetLocalMode(ctx context.Context, on bool) error
	MarkDirty(ctx context.Context, at time.Time) (string, error)
	Dirty(ctx context.Context) (string, error)
	ClosedNotified(ctx context.Context, period string) (bool, error)
	SetClosedNotified(ctx context.Context, period string, on bool) error
}

type flagRepository struct {
	store storage.Store
}

// NewFlagRepository creates a new flag repository
func NewFlagRepository(store storage.Store) FlagRepository {
	return &flagRepository{store: store}
}

func (r *flagRepository) IsLocalMode(ctx context.Context) (bool, error) {
	v, err := r.get(ctx, storage.KeyDemoMode)
	return v == "1", err
}

func (r *flagRepository) SetLocalMode(ctx context.Context, on bool) error {
	if !on {
		return r.store.Delete(ctx, storage.KeyDemoMode)
	}
	return r.store.Set(ctx, storage.KeyDemoMode, []byte("1"))
}

// MarkDirty writes the change signal as unix milliseconds and returns the written value
func (r *flagRepository) MarkDirty(ctx context.Context, at time.Time) (string, error) {
	v := strconv.FormatInt(at.UnixMilli(), 10)
	return v, r.store.Set(ctx, storage.KeyDirty, []byte(v))
}

func (r *flagRepository) Dirty(ctx context.Context) (string, error) {
	return r.get(ctx, storage.KeyDirty)
}

func (r *flagRepository) ClosedNotified(ctx context.Context, period string) (bool, error) {
	v, err := r.get(ctx, storage.KeyClosedNotifyPrefix+period)
	return v != "", err
}

func (r *flagRepository) SetClosedNotified(ctx context.Context, period string, on bool) error {
	key := storage.KeyClosedNotifyPrefix + period
	if !on {
		return r.store.Delete(ctx, key)
	}
	return r.store.Set(ctx, key, []byte("1"))
}

// get returns "" for missing keys
func (r *flagRepository) get(ctx context.Context, key string) (string, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(string(data)), `"`), nil
}
