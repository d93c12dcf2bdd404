package storage

import (
	"context"
	"errors"
)

// Keys shared with the browser dashboard. Values are JSON documents.
const (
	KeyTransactions       = "financial_transactions_v2"
	KeyDuesConfigs        = "dues_configs"
	KeyLegacyDuesConfig   = "dues_config"
	KeyDuesPayments       = "dues_payments"
	KeyDemoMode           = "iuran_demo"
	KeyDirty              = "iuran_dirty"
	KeyClosedNotifyPrefix = "iuran_closed_notif_"
	KeyReports            = "financial_reports"
	KeyResidents          = "warga_data_v1"
	KeyResidentsLegacy    = "residents_data"
	KeyNotifications      = "app_notifications"
)

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("storage key not found")

// Store is a flat key/value blob store. Every write replaces the whole value;
// there is no compare-and-swap, so concurrent writers resolve as last writer wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// SharedKeys are the keys whose change must trigger re-aggregation in other processes
func SharedKeys() map[string]bool {
	return map[string]bool{
		KeyTransactions: true,
		KeyDuesConfigs:  true,
		KeyDuesPayments: true,
		KeyDirty:        true,
		KeyReports:      true,
	}
}
