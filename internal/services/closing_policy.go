package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/komplek-api/internal/config"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

// ClosingPolicy closes a period once every active resident has paid and announces it once.
//
// In sticky mode a closed period stays closed. In derived mode closed always follows
// the pending count, and reopening clears the announcement marker so the next close
// is announced again.
type ClosingPolicy struct {
	configs       *DuesConfigService
	flags         repository.FlagRepository
	notifications *NotificationService
	mode          string
}

// NewClosingPolicy creates a closing policy. Unknown modes fall back to sticky.
func NewClosingPolicy(configs *DuesConfigService, flags repository.FlagRepository, notifications *NotificationService, mode string) *ClosingPolicy {
	if mode != config.ClosingPolicyDerived {
		mode = config.ClosingPolicySticky
	}
	return &ClosingPolicy{
		configs:       configs,
		flags:         flags,
		notifications: notifications,
		mode:          mode,
	}
}

// Mode returns the active policy mode
func (p *ClosingPolicy) Mode() string {
	return p.mode
}

// Evaluate applies the policy after a payment-store read and returns whether the
// period is closed afterwards. Periods without a config, or a roster without
// active residents, are never closed by this call.
func (p *ClosingPolicy) Evaluate(ctx context.Context, period string, pending, active int) bool {
	cfg, err := p.configs.Find(ctx, period)
	if err != nil {
		return false
	}

	switch {
	case pending == 0 && active > 0:
		return p.close(ctx, period, cfg.Amount, active)
	case pending > 0 && cfg.Closed && p.mode == config.ClosingPolicyDerived:
		p.reopen(ctx, period, pending)
		return false
	}
	return cfg.Closed
}

// close reports whether the period is closed in the store afterwards
func (p *ClosingPolicy) close(ctx context.Context, period string, amount int64, paid int) bool {
	changed, err := p.configs.Close(ctx, period)
	if err != nil {
		logger.Error("Failed to close dues period", "period", period, "error", err)
		return false
	}
	if changed {
		logger.Info("Dues period closed", "period", period, "paid", paid)
	}

	notified, err := p.flags.ClosedNotified(ctx, period)
	if err != nil {
		logger.Error("Failed to read closed notification marker", "period", period, "error", err)
		return true
	}
	if notified {
		return true
	}
	if err := p.flags.SetClosedNotified(ctx, period, true); err != nil {
		logger.Error("Failed to write closed notification marker", "period", period, "error", err)
		return true
	}
	p.notifications.MonthClosed(ctx, period, amount, paid)
	return true
}

func (p *ClosingPolicy) reopen(ctx context.Context, period string, pending int) {
	changed, err := p.configs.Reopen(ctx, period)
	if err != nil {
		logger.Error("Failed to reopen dues period", "period", period, "error", err)
		return
	}
	if !changed {
		return
	}
	if err := p.flags.SetClosedNotified(ctx, period, false); err != nil {
		logger.Error("Failed to clear closed notification marker", "period", period, "error", err)
	}
	logger.Info("Dues period reopened", "period", period, "pending", pending)
	p.notifications.Notify(ctx, models.NotificationTypeMonthReopen,
		"Iuran dibuka kembali",
		fmt.Sprintf("Iuran %s dibuka kembali, %d warga belum membayar.", period, pending))
}
