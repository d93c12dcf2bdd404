package services

import (
	"context"

	"github.com/sjperalta/komplek-api/internal/config"
	"github.com/sjperalta/komplek-api/internal/jobs"
	"github.com/sjperalta/komplek-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Feed         *ChangeFeed
	Ledger       *LedgerService
	DuesConfig   *DuesConfigService
	Closing      *ClosingPolicy
	Dues         *DuesService
	Resident     *ResidentService
	Analytics    *AnalyticsService
	Report       *ReportService
	Export       *ExportService
	Notification *NotificationService
	Email        *EmailService
	Sync         *SyncService
	Job          *JobService
}

// NewServices creates all service instances. gateway may be nil for local-only operation.
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, gateway DuesGateway, now Clock) *Services {
	feed := NewChangeFeed(repos.Flag, now)
	emailSvc := NewEmailService(cfg)
	notificationSvc := NewNotificationService(repos.Notification, emailSvc, worker, now)

	ledgerSvc := NewLedgerService(repos.Ledger, feed, now)
	configSvc := NewDuesConfigService(repos.DuesConfig, feed, now)
	closing := NewClosingPolicy(configSvc, repos.Flag, notificationSvc, cfg.ClosingPolicy)
	duesSvc := NewDuesService(gateway, configSvc, repos.DuesPayment, repos.Resident, repos.Flag, ledgerSvc, closing, notificationSvc, feed, now)
	analyticsSvc := NewAnalyticsService(repos.Ledger, now)

	// every local or foreign change drops cached aggregates and warms the default view
	feed.Subscribe(func(ctx context.Context) {
		analyticsSvc.Invalidate(ctx)
		if worker != nil {
			worker.Enqueue("analytics:refresh", analyticsSvc.Refresh)
		}
	})

	var jobSvc *JobService
	if worker != nil {
		jobSvc = NewJobService(worker)
	}

	return &Services{
		Feed:         feed,
		Ledger:       ledgerSvc,
		DuesConfig:   configSvc,
		Closing:      closing,
		Dues:         duesSvc,
		Resident:     NewResidentService(repos.Resident, feed),
		Analytics:    analyticsSvc,
		Report:       NewReportService(repos.Report, ledgerSvc, configSvc, notificationSvc, now),
		Export:       NewExportService(ledgerSvc, now),
		Notification: notificationSvc,
		Email:        emailSvc,
		Sync:         NewSyncService(repos.Flag, feed, duesSvc, now),
		Job:          jobSvc,
	}
}

// Startup folds the legacy dues config into the per-period map and repairs dues/ledger drift
func (s *Services) Startup(ctx context.Context) error {
	if err := s.DuesConfig.MigrateLegacy(ctx); err != nil {
		return err
	}
	if _, err := s.Dues.Reconcile(ctx); err != nil {
		return err
	}
	return s.Sync.CheckRollover(ctx)
}
