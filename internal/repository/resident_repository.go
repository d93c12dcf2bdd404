package repository

import (
	"context"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/storage"
)

// ResidentRepository reads the roster published by the resident module
type ResidentRepository interface {
	FindAll(ctx context.Context) ([]models.Resident, error)
	FindActive(ctx context.Context) ([]models.Resident, error)
	FindByID(ctx context.Context, id string) (*models.Resident, error)
	ReplaceAll(ctx context.Context, residents []models.Resident) error
}

type residentRepository struct {
	store storage.Store
}

// NewResidentRepository creates a new resident repository
func NewResidentRepository(store storage.Store) ResidentRepository {
	return &residentRepository{store: store}
}

// FindAll reads warga_data_v1, falling back to the older residents_data key
func (r *residentRepository) FindAll(ctx context.Context) ([]models.Resident, error) {
	residents := []models.Resident{}
	found, err := loadJSON(ctx, r.store, storage.KeyResidents, &residents)
	if err != nil {
		return nil, err
	}
	if found {
		return residents, nil
	}
	if _, err := loadJSON(ctx, r.store, storage.KeyResidentsLegacy, &residents); err != nil {
		return nil, err
	}
	return residents, nil
}

func (r *residentRepository) FindActive(ctx context.Context) ([]models.Resident, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Resident, 0, len(all))
	for _, res := range all {
		if res.IsActive() {
			active = append(active, res)
		}
	}
	return active, nil
}

// FindByID returns nil without error when the resident is unknown
func (r *residentRepository) FindByID(ctx context.Context, id string) (*models.Resident, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if string(all[i].ID) == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (r *residentRepository) ReplaceAll(ctx context.Context, residents []models.Resident) error {
	if residents == nil {
		residents = []models.Resident{}
	}
	return saveJSON(ctx, r.store, storage.KeyResidents, residents)
}
