package repository

import (
	"context"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/storage"
)

// LedgerRepository defines the interface for ledger data access
type LedgerRepository interface {
	FindAll(ctx context.Context) ([]models.Transaction, error)
	SaveAll(ctx context.Context, txs []models.Transaction) error
}

// ledgerRepository stores the whole ledger as one JSON array
type ledgerRepository struct {
	store storage.Store
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(store storage.Store) LedgerRepository {
	return &ledgerRepository{store: store}
}

// FindAll returns every transaction in stored order
func (r *ledgerRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	if _, err := loadJSON(ctx, r.store, storage.KeyTransactions, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// SaveAll replaces the ledger
func (r *ledgerRepository) SaveAll(ctx context.Context, txs []models.Transaction) error {
	if txs == nil {
		txs = []models.Transaction{}
	}
	return saveJSON(ctx, r.store, storage.KeyTransactions, txs)
}
