package services

import (
	"context"
	"strings"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

// ResidentService exposes the roster owned by the resident module. Replace exists for
// that module to publish its roster; dues tracking only reads it.
type ResidentService struct {
	repo repository.ResidentRepository
	feed *ChangeFeed
}

func NewResidentService(repo repository.ResidentRepository, feed *ChangeFeed) *ResidentService {
	return &ResidentService{repo: repo, feed: feed}
}

func (s *ResidentService) List(ctx context.Context, activeOnly bool) ([]models.Resident, error) {
	if activeOnly {
		return s.repo.FindActive(ctx)
	}
	return s.repo.FindAll(ctx)
}

// Replace stores a full roster. Ids must be present and unique.
func (s *ResidentService) Replace(ctx context.Context, residents []models.Resident) error {
	seen := make(map[models.ResidentID]bool, len(residents))
	for i := range residents {
		r := &residents[i]
		r.ID = models.ResidentID(strings.TrimSpace(string(r.ID)))
		if r.ID == "" {
			return NewAppError("warga ke-%d tidak memiliki id", i+1)
		}
		if seen[r.ID] {
			return NewAppError("id warga %s ganda", r.ID)
		}
		seen[r.ID] = true
	}

	if err := s.repo.ReplaceAll(ctx, residents); err != nil {
		return err
	}
	logger.Info("Resident roster replaced", "count", len(residents))
	s.feed.Touch(ctx)
	return nil
}
