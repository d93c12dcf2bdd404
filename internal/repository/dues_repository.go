package repository

import (
	"context"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/storage"
)

// DuesConfigRepository defines the interface for per-period dues configuration
type DuesConfigRepository interface {
	FindAll(ctx context.Context) (models.DuesConfigs, error)
	SaveAll(ctx context.Context, configs models.DuesConfigs) error
	FindLegacy(ctx context.Context) (*models.LegacyDuesConfig, error)
	DeleteLegacy(ctx context.Context) error
}

type duesConfigRepository struct {
	store storage.Store
}

// NewDuesConfigRepository creates a new dues configuration repository
func NewDuesConfigRepository(store storage.Store) DuesConfigRepository {
	return &duesConfigRepository{store: store}
}

func (r *duesConfigRepository) FindAll(ctx context.Context) (models.DuesConfigs, error) {
	configs := models.DuesConfigs{}
	if _, err := loadJSON(ctx, r.store, storage.KeyDuesConfigs, &configs); err != nil {
		return nil, err
	}
	if configs == nil {
		configs = models.DuesConfigs{}
	}
	return configs, nil
}

func (r *duesConfigRepository) SaveAll(ctx context.Context, configs models.DuesConfigs) error {
	return saveJSON(ctx, r.store, storage.KeyDuesConfigs, configs)
}

// FindLegacy returns the single-slot config written by older versions, or nil
func (r *duesConfigRepository) FindLegacy(ctx context.Context) (*models.LegacyDuesConfig, error) {
	var legacy models.LegacyDuesConfig
	found, err := loadJSON(ctx, r.store, storage.KeyLegacyDuesConfig, &legacy)
	if err != nil || !found {
		return nil, err
	}
	return &legacy, nil
}

func (r *duesConfigRepository) DeleteLegacy(ctx context.Context) error {
	return r.store.Delete(ctx, storage.KeyLegacyDuesConfig)
}

// DuesPaymentRepository defines the interface for per-period paid sets
type DuesPaymentRepository interface {
	FindAll(ctx context.Context) (models.DuesPayments, error)
	SaveAll(ctx context.Context, payments models.DuesPayments) error
}

type duesPaymentRepository struct {
	store storage.Store
}

// NewDuesPaymentRepository creates a new dues payment repository
func NewDuesPaymentRepository(store storage.Store) DuesPaymentRepository {
	return &duesPaymentRepository{store: store}
}

func (r *duesPaymentRepository) FindAll(ctx context.Context) (models.DuesPayments, error) {
	payments := models.DuesPayments{}
	if _, err := loadJSON(ctx, r.store, storage.KeyDuesPayments, &payments); err != nil {
		return nil, err
	}
	if payments == nil {
		payments = models.DuesPayments{}
	}
	return payments, nil
}

func (r *duesPaymentRepository) SaveAll(ctx context.Context, payments models.DuesPayments) error {
	return saveJSON(ctx, r.store, storage.KeyDuesPayments, payments)
}
