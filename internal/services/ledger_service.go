package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

// DuesEntry is one resident's payment state for a period, as seen by the synchronizer
type DuesEntry struct {
	Period       string
	ResidentID   string
	ResidentName string
	Amount       int64
	Paid         bool
}

// Key returns the ledger identity of the entry
func (e DuesEntry) Key() models.DuesKey {
	return models.DuesKey{Period: e.Period, ResidentID: e.ResidentID}
}

// TransactionInput is the payload for manual ledger entries
type TransactionInput struct {
	Date        string `json:"date" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// LedgerService owns the transaction list. Dues-linked entries are only written by Sync.
type LedgerService struct {
	mu    sync.Mutex
	repo  repository.LedgerRepository
	feed  *ChangeFeed
	now   Clock
	newID func() string
}

// NewLedgerService creates a ledger service
func NewLedgerService(repo repository.LedgerRepository, feed *ChangeFeed, now Clock) *LedgerService {
	if now == nil {
		now = time.Now
	}
	return &LedgerService{
		repo:  repo,
		feed:  feed,
		now:   now,
		newID: uuid.NewString,
	}
}

// Sync makes the ledger agree with one resident's payment state: a paid entry gets
// exactly one dues income line dated on the first of the period, an unpaid entry
// gets none. Repeated calls are no-ops. Storage failures are logged, not returned.
func (s *LedgerService) Sync(ctx context.Context, e DuesEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sync(ctx, e); err != nil {
		logger.Error("Failed to sync dues ledger entry", "period", e.Period, "resident_id", e.ResidentID, "paid", e.Paid, "error", err)
	}
}

func (s *LedgerService) sync(ctx context.Context, e DuesEntry) error {
	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}

	key := e.Key()
	if e.Paid {
		for i := range txs {
			if txs[i].IsDuesFor(key) {
				return nil
			}
		}
		txs = append(txs, s.duesTransaction(e))
		logger.Info("Dues entry added to ledger", "period", e.Period, "resident_id", e.ResidentID, "amount", e.Amount)
	} else {
		kept, removed := removeDues(txs, key)
		if removed == 0 {
			return nil
		}
		txs = kept
		logger.Info("Dues entry removed from ledger", "period", e.Period, "resident_id", e.ResidentID)
	}

	return s.commit(ctx, txs)
}

func (s *LedgerService) duesTransaction(e DuesEntry) models.Transaction {
	key := e.Key()
	name := strings.TrimSpace(e.ResidentName)
	if name == "" {
		name = "Warga " + e.ResidentID
	}
	return models.Transaction{
		ID:          s.newID(),
		Date:        models.PeriodStartDate(e.Period),
		Type:        models.TransactionTypeIncome,
		Category:    models.CategoryDues,
		Description: fmt.Sprintf("Iuran %s - %s %s", e.Period, name, key.Token()),
		Amount:      e.Amount,
		LinkedKey:   &key,
		CreatedAt:   s.now(),
	}
}

// removeDues drops every entry linked to key. Duplicates left by older data go too.
func removeDues(txs []models.Transaction, key models.DuesKey) ([]models.Transaction, int) {
	kept := txs[:0:0]
	removed := 0
	for _, tx := range txs {
		if tx.IsDuesFor(key) {
			removed++
			continue
		}
		kept = append(kept, tx)
	}
	return kept, removed
}

// RepriceDues overwrites the amount of every dues entry of period and returns how many changed.
// Residents without an entry are left alone.
func (s *LedgerService) RepriceDues(ctx context.Context, period string, amount int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range txs {
		key, ok := txs[i].DuesLink()
		if !ok || key.Period != period {
			continue
		}
		txs[i].Amount = amount
		count++
	}
	if count == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, txs); err != nil {
		return 0, err
	}
	logger.Info("Dues entries repriced", "period", period, "amount", amount, "count", count)
	return count, nil
}

// DuesKeys returns the dues payments present in the ledger
func (s *LedgerService) DuesKeys(ctx context.Context) (map[models.DuesKey]bool, error) {
	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	keys := make(map[models.DuesKey]bool)
	for i := range txs {
		if key, ok := txs[i].DuesLink(); ok {
			keys[key] = true
		}
	}
	return keys, nil
}

// Dedupe keeps the first dues entry of every (period, resident) pair, backfills
// linked keys on entries known only by their description token, and returns the
// number of entries removed.
func (s *LedgerService) Dedupe(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	kept, removed, backfilled := dedupeDues(txs)
	if removed == 0 && backfilled == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, kept); err != nil {
		return 0, err
	}
	if removed > 0 {
		logger.Warn("Duplicate dues entries removed", "count", removed)
	}
	return removed, nil
}

func dedupeDues(txs []models.Transaction) ([]models.Transaction, int, int) {
	seen := make(map[models.DuesKey]bool)
	kept := make([]models.Transaction, 0, len(txs))
	removed, backfilled := 0, 0
	for _, tx := range txs {
		key, ok := tx.DuesLink()
		if ok {
			if seen[key] {
				removed++
				continue
			}
			seen[key] = true
			if tx.LinkedKey == nil {
				k := key
				tx.LinkedKey = &k
				backfilled++
			}
		}
		kept = append(kept, tx)
	}
	return kept, removed, backfilled
}

// List returns ledger entries matching filter in date order
func (s *LedgerService) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(txs), nil
}

// FindByID returns ErrNotFound for unknown ids
func (s *LedgerService) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if txs[i].ID == id {
			return &txs[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create adds a manual entry. Dues income can only be booked through the dues workflow.
func (s *LedgerService) Create(ctx context.Context, input TransactionInput) (*models.Transaction, error) {
	tx, err := s.buildTransaction(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	txs = append(txs, *tx)
	if err := s.commit(ctx, txs); err != nil {
		return nil, err
	}
	return tx, nil
}

// Update replaces the booking fields of a manual entry
func (s *LedgerService) Update(ctx context.Context, id string, input TransactionInput) (*models.Transaction, error) {
	updated, err := s.buildTransaction(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if txs[i].ID != id {
			continue
		}
		if txs[i].IsDuesLinked() {
			return nil, ErrLinkedTransaction
		}
		updated.ID = txs[i].ID
		updated.CreatedAt = txs[i].CreatedAt
		txs[i] = *updated
		if err := s.commit(ctx, txs); err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrNotFound
}

// Delete removes a manual entry
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	for i := range txs {
		if txs[i].ID != id {
			continue
		}
		if txs[i].IsDuesLinked() {
			return ErrLinkedTransaction
		}
		txs = append(txs[:i], txs[i+1:]...)
		return s.commit(ctx, txs)
	}
	return ErrNotFound
}

// RemoveMatching deletes the entry with id, or failing that the first entry with the
// same booking fields as like. It reports whether anything was removed.
func (s *LedgerService) RemoveMatching(ctx context.Context, id string, like *models.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return false, err
	}

	idx := -1
	if id != "" {
		for i := range txs {
			if txs[i].ID == id {
				idx = i
				break
			}
		}
	}
	if idx < 0 && like != nil {
		for i := range txs {
			if !txs[i].IsDuesLinked() && txs[i].Matches(like) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return false, nil
	}

	txs = append(txs[:idx], txs[idx+1:]...)
	return true, s.commit(ctx, txs)
}

// appendImported adds parsed rows, skipping rows already present. Dues rows are
// kept only when their (period, resident) has no entry yet.
func (s *LedgerService) appendImported(ctx context.Context, rows []models.Transaction) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i := range rows {
		row := rows[i]
		if s.isDuplicate(txs, &row) {
			result.Skipped++
			continue
		}
		row.ID = s.newID()
		row.CreatedAt = s.now()
		txs = append(txs, row)
		result.Imported++
		if row.IsDuesLinked() {
			result.Dues++
		}
	}
	if result.Imported == 0 {
		return result, nil
	}
	if err := s.commit(ctx, txs); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *LedgerService) isDuplicate(txs []models.Transaction, row *models.Transaction) bool {
	key, linked := row.DuesLink()
	for i := range txs {
		if linked && txs[i].IsDuesFor(key) {
			return true
		}
		if txs[i].Matches(row) {
			return true
		}
	}
	return false
}

func (s *LedgerService) buildTransaction(input TransactionInput) (*models.Transaction, error) {
	tx := &models.Transaction{
		ID:          s.newID(),
		Date:        strings.TrimSpace(input.Date),
		Type:        strings.ToLower(strings.TrimSpace(input.Type)),
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		CreatedAt:   s.now(),
	}
	if err := validateTransaction(tx); err != nil {
		return nil, err
	}
	if tx.IsDuesLinked() {
		return nil, ErrLinkedTransaction
	}
	return tx, nil
}

func validateTransaction(tx *models.Transaction) error {
	if !models.ValidDate(tx.Date) {
		return NewAppError("tanggal tidak valid: %q", tx.Date)
	}
	if tx.Type != models.TransactionTypeIncome && tx.Type != models.TransactionTypeExpense {
		return NewAppError("jenis transaksi tidak valid: %q", tx.Type)
	}
	if tx.Category == "" {
		return NewAppError("kategori wajib diisi")
	}
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// commit sorts by date, persists, and signals the change. Callers hold s.mu.
func (s *LedgerService) commit(ctx context.Context, txs []models.Transaction) error {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date < txs[j].Date
	})
	if err := s.repo.SaveAll(ctx, txs); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	s.feed.Touch(ctx)
	return nil
}
