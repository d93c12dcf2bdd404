package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sjperalta/komplek-api/internal/storage"
)

// Repositories holds all repository instances
type Repositories struct {
	Ledger       LedgerRepository
	DuesConfig   DuesConfigRepository
	DuesPayment  DuesPaymentRepository
	Resident     ResidentRepository
	Report       ReportRepository
	Flag         FlagRepository
	Notification NotificationRepository
}

// NewRepositories creates all repository instances over one shared store
func NewRepositories(store storage.Store) *Repositories {
	return &Repositories{
		Ledger:       NewLedgerRepository(store),
		DuesConfig:   NewDuesConfigRepository(store),
		DuesPayment:  NewDuesPaymentRepository(store),
		Resident:     NewResidentRepository(store),
		Report:       NewReportRepository(store),
		Flag:         NewFlagRepository(store),
		Notification: NewNotificationRepository(store),
	}
}

// loadJSON decodes the document under key into out. A missing key leaves out untouched.
func loadJSON(ctx context.Context, store storage.Store, key string, out interface{}) (bool, error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 || string(data) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// saveJSON encodes value and replaces the document under key
func saveJSON(ctx context.Context, store storage.Store, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, data)
}
