package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/remote"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/internal/statemachine"
	"github.com/sjperalta/komplek-api/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// DuesGateway is the hosted dues service. *remote.IuranClient implements it.
type DuesGateway interface {
	Status(ctx context.Context, period string) (*remote.StatusResponse, error)
	Generate(ctx context.Context, period string, amount int64) error
	Mark(ctx context.Context, period, residentID string, paid bool, amount int64) error
	UpdateNominal(ctx context.Context, period string, amount int64) error
}

// ErrRemoteNotConfigured is returned when switching back to remote mode without a remote service
var ErrRemoteNotConfigured = &AppError{Message: "layanan iuran online tidak dikonfigurasi", StatusCode: http.StatusConflict}

// ReconcileResult reports what Reconcile repaired
type ReconcileResult struct {
	DuplicatesRemoved  int `json:"duplicates_removed"`
	MembershipsAdded   int `json:"memberships_added"`
	MembershipsDropped int `json:"memberships_dropped"`
	EntriesAdded       int `json:"entries_added"`
}

// DuesService runs the dues workflow against the remote service while it is reachable
// and against the local stores otherwise. Every successful write is mirrored into the
// local payment set and the ledger, so the ledger is correct in both modes.
type DuesService struct {
	mu    sync.Mutex
	group singleflight.Group

	gateway       DuesGateway
	mode          *statemachine.ModeFSM
	configs       *DuesConfigService
	payments      repository.DuesPaymentRepository
	residents     repository.ResidentRepository
	flags         repository.FlagRepository
	ledger        *LedgerService
	closing       *ClosingPolicy
	notifications *NotificationService
	feed          *ChangeFeed
	now           Clock
}

// NewDuesService creates the dues orchestrator. A nil gateway runs in local mode only.
func NewDuesService(
	gateway DuesGateway,
	configs *DuesConfigService,
	payments repository.DuesPaymentRepository,
	residents repository.ResidentRepository,
	flags repository.FlagRepository,
	ledger *LedgerService,
	closing *ClosingPolicy,
	notifications *NotificationService,
	feed *ChangeFeed,
	now Clock,
) *DuesService {
	if now == nil {
		now = time.Now
	}
	initial := models.DuesModeRemote
	if gateway == nil {
		initial = models.DuesModeLocal
	}
	return &DuesService{
		gateway:       gateway,
		mode:          statemachine.NewModeFSM(initial),
		configs:       configs,
		payments:      payments,
		residents:     residents,
		flags:         flags,
		ledger:        ledger,
		closing:       closing,
		notifications: notifications,
		feed:          feed,
		now:           now,
	}
}

// Mode returns the current operating mode
func (s *DuesService) Mode(ctx context.Context) string {
	s.syncMode(ctx)
	return s.mode.Current()
}

// syncMode follows the persisted iuran_demo flag, which another process may have written
func (s *DuesService) syncMode(ctx context.Context) {
	if s.gateway == nil {
		return
	}
	local, err := s.flags.IsLocalMode(ctx)
	if err != nil {
		logger.Error("Failed to read dues mode flag", "error", err)
		return
	}
	if local {
		_, err = s.mode.Fallback(ctx)
	} else {
		_, err = s.mode.Reset(ctx)
	}
	if err != nil {
		logger.Error("Failed to apply persisted dues mode", "error", err)
	}
}

func (s *DuesService) remoteActive(ctx context.Context) bool {
	if s.gateway == nil {
		return false
	}
	s.syncMode(ctx)
	return !s.mode.IsLocal()
}

// fallback switches to local mode after a failed remote call. The notice is sent once
// per transition.
func (s *DuesService) fallback(ctx context.Context, op string, cause error) {
	if errors.Is(cause, remote.ErrUnauthorized) {
		logger.Warn("Remote dues service rejected credentials, switching to local mode", "op", op)
	} else {
		logger.Warn("Remote dues service failed, switching to local mode", "op", op, "error", cause)
	}

	if err := s.flags.SetLocalMode(ctx, true); err != nil {
		logger.Error("Failed to persist dues mode flag", "error", err)
	}
	changed, err := s.mode.Fallback(ctx)
	if err != nil {
		logger.Error("Failed to switch dues mode", "error", err)
		return
	}
	if !changed {
		return
	}
	s.feed.Touch(ctx)
	s.notifications.Notify(ctx, models.NotificationTypeModeFallback,
		"Mode lokal aktif",
		"Layanan iuran online tidak dapat diakses. Data iuran kini disimpan secara lokal (mode demo).")
}

// ResetMode returns to remote mode
func (s *DuesService) ResetMode(ctx context.Context) error {
	if s.gateway == nil {
		return ErrRemoteNotConfigured
	}
	if err := s.flags.SetLocalMode(ctx, false); err != nil {
		return fmt.Errorf("failed to clear dues mode flag: %w", err)
	}
	changed, err := s.mode.Reset(ctx)
	if err != nil {
		return err
	}
	if changed {
		logger.Info("Dues mode reset to remote")
		s.feed.Touch(ctx)
		s.notifications.Notify(ctx, models.NotificationTypeModeReset,
			"Mode online aktif",
			"Operasi iuran kembali menggunakan layanan online.")
	}
	return nil
}

// Status returns the paid/pending breakdown of period and applies the closing policy
func (s *DuesService) Status(ctx context.Context, period string) (*models.DuesStatus, error) {
	if period == "" {
		period = models.PeriodOf(s.now())
	}
	if !models.ValidPeriod(period) {
		return nil, ErrInvalidPeriod
	}

	v, err, _ := s.group.Do("status:"+period, func() (interface{}, error) {
		if s.remoteActive(ctx) {
			resp, err := s.gateway.Status(ctx, period)
			if err == nil {
				return s.remoteStatus(ctx, period, resp), nil
			}
			s.fallback(ctx, "status", err)
		}
		return s.localStatus(ctx, period)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DuesStatus), nil
}

func (s *DuesService) remoteStatus(ctx context.Context, period string, resp *remote.StatusResponse) *models.DuesStatus {
	status := &models.DuesStatus{
		Period:  period,
		Amount:  resp.Amount,
		Paid:    memberRefs(resp.Paid),
		Pending: memberRefs(resp.Pending),
		Mode:    models.DuesModeRemote,
	}

	if err := s.configs.Upsert(ctx, period, resp.Amount); err != nil {
		logger.Error("Failed to mirror remote dues amount", "period", period, "error", err)
	}
	amount := resp.Amount
	if amount <= 0 {
		amount = s.configs.Get(ctx, period)
	}
	s.mirrorPaidSet(ctx, period, status.Paid, amount)

	status.Closed = s.closing.Evaluate(ctx, period, len(status.Pending), len(status.Paid)+len(status.Pending))
	return status
}

// mirrorPaidSet makes the local paid set and ledger of period match the remote answer
func (s *DuesService) mirrorPaidSet(ctx context.Context, period string, paid []models.ResidentRef, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments, err := s.payments.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to read dues payments", "period", period, "error", err)
		return
	}

	remotePaid := make(map[string]models.ResidentRef, len(paid))
	for _, ref := range paid {
		remotePaid[ref.ID] = ref
	}

	var entries []DuesEntry
	for _, id := range payments[period].Paid {
		if _, ok := remotePaid[id]; !ok {
			entries = append(entries, DuesEntry{Period: period, ResidentID: id, Amount: amount, Paid: false})
		}
	}
	for _, ref := range paid {
		if !payments.IsPaid(period, ref.ID) {
			entries = append(entries, DuesEntry{Period: period, ResidentID: ref.ID, ResidentName: ref.Nama, Amount: amount, Paid: true})
		}
	}
	if len(entries) == 0 {
		return
	}

	for _, e := range entries {
		payments.SetPaid(period, e.ResidentID, e.Paid)
	}
	if err := s.payments.SaveAll(ctx, payments); err != nil {
		logger.Error("Failed to mirror remote paid set", "period", period, "error", err)
		return
	}
	s.feed.Touch(ctx)
	for _, e := range entries {
		s.ledger.Sync(ctx, e)
	}
}

func (s *DuesService) localStatus(ctx context.Context, period string) (*models.DuesStatus, error) {
	active, err := s.residents.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read residents: %w", err)
	}
	payments, err := s.payments.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read dues payments: %w", err)
	}

	status := &models.DuesStatus{
		Period:  period,
		Amount:  s.configs.Get(ctx, period),
		Paid:    []models.ResidentRef{},
		Pending: []models.ResidentRef{},
		Mode:    models.DuesModeLocal,
	}
	for i := range active {
		ref := active[i].Ref()
		if payments.IsPaid(period, ref.ID) {
			status.Paid = append(status.Paid, ref)
		} else {
			status.Pending = append(status.Pending, ref)
		}
	}

	status.Closed = s.closing.Evaluate(ctx, period, len(status.Pending), len(active))
	return status, nil
}

// Generate creates the dues config of the current month
func (s *DuesService) Generate(ctx context.Context, period string, amount int64) error {
	if period == "" {
		period = models.PeriodOf(s.now())
	}

	// not coalesced: of two concurrent creates, Create rejects the later one
	if err := s.configs.ValidateCreate(ctx, period, amount); err != nil {
		return err
	}
	if s.remoteActive(ctx) {
		if err := s.gateway.Generate(ctx, period, amount); err != nil {
			s.fallback(ctx, "generate", err)
		}
	}
	if err := s.configs.Create(ctx, period, amount); err != nil {
		return err
	}
	logger.Info("Dues generated", "period", period, "amount", amount, "mode", s.mode.Current())
	return nil
}

// Mark sets one resident's payment for period and returns the refreshed status
func (s *DuesService) Mark(ctx context.Context, period, residentID string, paid bool) (*models.DuesStatus, error) {
	if period == "" {
		period = models.PeriodOf(s.now())
	}
	if !models.ValidPeriod(period) {
		return nil, ErrInvalidPeriod
	}

	resident, err := s.residents.FindByID(ctx, residentID)
	if err != nil {
		return nil, fmt.Errorf("failed to read residents: %w", err)
	}
	if resident == nil {
		return nil, ErrResidentNotFound
	}
	if paid && !resident.IsActive() {
		return nil, ErrResidentInactive
	}

	amount := s.configs.Get(ctx, period)
	if paid && amount <= 0 {
		return nil, ErrDuesNotConfigured
	}

	key := fmt.Sprintf("mark:%s:%s:%t", period, residentID, paid)
	_, err, shared := s.group.Do(key, func() (interface{}, error) {
		if s.remoteActive(ctx) {
			if err := s.gateway.Mark(ctx, period, residentID, paid, amount); err != nil {
				s.fallback(ctx, "mark", err)
			}
		}
		return nil, s.applyPayment(ctx, DuesEntry{
			Period:       period,
			ResidentID:   residentID,
			ResidentName: resident.Nama,
			Amount:       amount,
			Paid:         paid,
		})
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Duplicate dues mark coalesced", "period", period, "resident_id", residentID, "paid", paid)
	}
	return s.Status(ctx, period)
}

// applyPayment updates the local paid set and then the ledger for one resident. The
// ledger is left alone when the paid set could not be written.
func (s *DuesService) applyPayment(ctx context.Context, e DuesEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments, err := s.payments.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read dues payments: %w", err)
	}
	if payments.SetPaid(e.Period, e.ResidentID, e.Paid) {
		if err := s.payments.SaveAll(ctx, payments); err != nil {
			return fmt.Errorf("failed to save dues payments: %w", err)
		}
		s.feed.Touch(ctx)
	}

	s.ledger.Sync(ctx, e)
	return nil
}

// UpdateAmount reprices period: the config amount and every dues entry already in the
// ledger change, residents who have not paid are untouched. It returns the number of
// repriced entries.
func (s *DuesService) UpdateAmount(ctx context.Context, period string, amount int64) (int, error) {
	if !models.ValidPeriod(period) {
		return 0, ErrInvalidPeriod
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	v, err, _ := s.group.Do(fmt.Sprintf("update:%s:%d", period, amount), func() (interface{}, error) {
		remoteOK := false
		if s.remoteActive(ctx) {
			if err := s.gateway.UpdateNominal(ctx, period, amount); err != nil {
				s.fallback(ctx, "update-nominal", err)
			} else {
				remoteOK = true
			}
		}

		var err error
		if remoteOK {
			err = s.configs.Upsert(ctx, period, amount)
		} else {
			err = s.configs.Edit(ctx, period, amount)
		}
		if err != nil {
			return 0, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		return s.ledger.RepriceDues(ctx, period, amount)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Reconcile repairs the paid-set and ledger so that each paid membership has exactly
// one dues entry and each dues entry has a membership. Ledger entries win: a dues
// entry without membership adds the membership. A membership without an entry gets
// an entry at the configured amount, or is dropped when the period has no amount.
func (s *DuesService) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &ReconcileResult{}

	removed, err := s.ledger.Dedupe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to dedupe ledger: %w", err)
	}
	result.DuplicatesRemoved = removed

	keys, err := s.ledger.DuesKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	payments, err := s.payments.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read dues payments: %w", err)
	}

	changed := false
	for key := range keys {
		if payments.SetPaid(key.Period, key.ResidentID, true) {
			result.MembershipsAdded++
			changed = true
		}
	}

	var missing []DuesEntry
	periods := make([]string, 0, len(payments))
	for period := range payments {
		periods = append(periods, period)
	}
	sort.Strings(periods)
	for _, period := range periods {
		amount := s.configs.Get(ctx, period)
		for _, id := range append([]string(nil), payments[period].Paid...) {
			if keys[models.DuesKey{Period: period, ResidentID: id}] {
				continue
			}
			if amount <= 0 {
				payments.SetPaid(period, id, false)
				result.MembershipsDropped++
				changed = true
				logger.Warn("Dropping dues membership without amount", "period", period, "resident_id", id)
				continue
			}
			missing = append(missing, DuesEntry{Period: period, ResidentID: id, ResidentName: s.residentName(ctx, id), Amount: amount, Paid: true})
		}
	}

	if changed {
		if err := s.payments.SaveAll(ctx, payments); err != nil {
			return nil, fmt.Errorf("failed to save dues payments: %w", err)
		}
		s.feed.Touch(ctx)
	}
	for _, e := range missing {
		s.ledger.Sync(ctx, e)
		result.EntriesAdded++
	}

	if *result != (ReconcileResult{}) {
		logger.Info("Dues reconciled",
			"duplicates_removed", result.DuplicatesRemoved,
			"memberships_added", result.MembershipsAdded,
			"memberships_dropped", result.MembershipsDropped,
			"entries_added", result.EntriesAdded)
	}
	return result, nil
}

func (s *DuesService) residentName(ctx context.Context, id string) string {
	r, err := s.residents.FindByID(ctx, id)
	if err != nil || r == nil {
		return ""
	}
	return r.Nama
}

// ImportLedger imports a ledger file and reconciles the dues rows it brought in
func (s *DuesService) ImportLedger(ctx context.Context, file io.Reader, format string) (*ImportResult, error) {
	result, err := s.ledger.Import(ctx, file, format)
	if err != nil {
		return nil, err
	}
	if result.Dues > 0 {
		if _, err := s.Reconcile(ctx); err != nil {
			logger.Error("Failed to reconcile after import", "error", err)
		}
	}
	return result, nil
}

func memberRefs(members []remote.Member) []models.ResidentRef {
	refs := make([]models.ResidentRef, 0, len(members))
	for _, m := range members {
		refs = append(refs, models.ResidentRef{ID: string(m.ID), Nama: m.Nama})
	}
	return refs
}
