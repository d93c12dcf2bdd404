package repository

import (
	"context"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/storage"
)

// ReportRepository defines the interface for saved financial reports
type ReportRepository interface {
	FindAll(ctx context.Context) ([]models.Report, error)
	SaveAll(ctx context.Context, reports []models.Report) error
}

type reportRepository struct {
	store storage.Store
}

// NewReportRepository creates a new report repository
func NewReportRepository(store storage.Store) ReportRepository {
	return &reportRepository{store: store}
}

func (r *reportRepository) FindAll(ctx context.Context) ([]models.Report, error) {
	reports := []models.Report{}
	if _, err := loadJSON(ctx, r.store, storage.KeyReports, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) SaveAll(ctx context.Context, reports []models.Report) error {
	if reports == nil {
		reports = []models.Report{}
	}
	return saveJSON(ctx, r.store, storage.KeyReports, reports)
}
