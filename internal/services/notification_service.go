package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/komplek-api/internal/jobs"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

type NotificationService struct {
	mu     sync.Mutex
	repo   repository.NotificationRepository
	email  *EmailService
	worker *jobs.Worker
	now    Clock
}

// NewNotificationService creates a notification service. email and worker may be nil,
// in which case no email goes out.
func NewNotificationService(repo repository.NotificationRepository, email *EmailService, worker *jobs.Worker, now Clock) *NotificationService {
	if now == nil {
		now = time.Now
	}
	return &NotificationService{repo: repo, email: email, worker: worker, now: now}
}

// Notify stores a notice. Failures are logged only.
func (s *NotificationService) Notify(ctx context.Context, notifType, title, message string) {
	n := &models.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Type:      notifType,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Error("Failed to store notification", "type", notifType, "error", err)
		return
	}
	logger.Info("Notification created", "type", notifType, "title", title)
}

// List returns notices newest first
func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]models.Notification, error) {
	ns, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if !unreadOnly {
		return ns, nil
	}
	unread := make([]models.Notification, 0, len(ns))
	for _, n := range ns {
		if !n.IsRead() {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	for i := range ns {
		if ns[i].ID != id {
			continue
		}
		if ns[i].IsRead() {
			return nil
		}
		ns[i].MarkAsRead(s.now())
		return s.repo.SaveAll(ctx, ns)
	}
	return ErrNotFound
}

// MarkAllAsRead returns the number of notices changed
func (s *NotificationService) MarkAllAsRead(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range ns {
		if !ns[i].IsRead() {
			ns[i].MarkAsRead(s.now())
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return count, s.repo.SaveAll(ctx, ns)
}

// MonthClosed announces a fully paid period and emails administrators in the background
func (s *NotificationService) MonthClosed(ctx context.Context, period string, amount int64, paid int) {
	s.Notify(ctx, models.NotificationTypeMonthClosed,
		"Iuran lunas",
		fmt.Sprintf("Semua warga aktif (%d) sudah membayar iuran %s. Periode ditutup.", paid, period))

	if s.email == nil || s.worker == nil {
		return
	}
	s.worker.Enqueue("email:month_closed:"+period, func(ctx context.Context) error {
		return s.email.SendMonthClosed(ctx, period, amount, paid)
	})
}
