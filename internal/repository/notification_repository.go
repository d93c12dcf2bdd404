package repository

import (
	"context"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/storage"
)

// maxNotifications caps the stored notice history
const maxNotifications = 200

// NotificationRepository defines the interface for administrator notices
type NotificationRepository interface {
	FindAll(ctx context.Context) ([]models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	SaveAll(ctx context.Context, ns []models.Notification) error
}

type notificationRepository struct {
	store storage.Store
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(store storage.Store) NotificationRepository {
	return &notificationRepository{store: store}
}

// FindAll returns notices newest first
func (r *notificationRepository) FindAll(ctx context.Context) ([]models.Notification, error) {
	ns := []models.Notification{}
	if _, err := loadJSON(ctx, r.store, storage.KeyNotifications, &ns); err != nil {
		return nil, err
	}
	return ns, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	ns, err := r.FindAll(ctx)
	if err != nil {
		return err
	}
	ns = append([]models.Notification{*n}, ns...)
	return r.SaveAll(ctx, ns)
}

func (r *notificationRepository) SaveAll(ctx context.Context, ns []models.Notification) error {
	if len(ns) > maxNotifications {
		ns = ns[:maxNotifications]
	}
	if ns == nil {
		ns = []models.Notification{}
	}
	return saveJSON(ctx, r.store, storage.KeyNotifications, ns)
}
