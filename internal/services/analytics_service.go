package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

// Anomaly thresholds
const (
	criticalZScore       = 2.5
	expenseIncomeRatio   = 3
	categoryMedianFactor = 3
	averageInsightMinTxs = 50
)

// AnalyticsService aggregates the ledger for dashboards. Results are cached per filter
// until the ledger changes.
type AnalyticsService struct {
	repo repository.LedgerRepository
	now  Clock

	mu    sync.RWMutex
	cache map[models.TransactionFilter]*models.AnalyticsSummary
}

func NewAnalyticsService(repo repository.LedgerRepository, now Clock) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{
		repo:  repo,
		now:   now,
		cache: make(map[models.TransactionFilter]*models.AnalyticsSummary),
	}
}

// Summary returns totals, the daily series, anomalies and insights for the filtered ledger
func (s *AnalyticsService) Summary(ctx context.Context, filter models.TransactionFilter) (*models.AnalyticsSummary, error) {
	s.mu.RLock()
	cached, ok := s.cache[filter]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	txs = filter.Apply(txs)

	now := s.now()
	today := models.DateOf(now)
	summary := &models.AnalyticsSummary{
		Totals:      ComputeTotals(txs),
		Series:      BuildDailySeries(txs, today),
		Anomalies:   DetectAnomalies(txs, today),
		Insights:    GenerateInsights(txs),
		GeneratedAt: now,
	}

	s.mu.Lock()
	s.cache[filter] = summary
	s.mu.Unlock()
	return summary, nil
}

// Invalidate drops every cached summary
func (s *AnalyticsService) Invalidate(ctx context.Context) {
	s.mu.Lock()
	n := len(s.cache)
	s.cache = make(map[models.TransactionFilter]*models.AnalyticsSummary)
	s.mu.Unlock()
	if n > 0 {
		logger.Debug("Analytics cache invalidated", "entries", n)
	}
}

// Refresh rebuilds the unfiltered summary so the next dashboard read is warm
func (s *AnalyticsService) Refresh(ctx context.Context) error {
	s.Invalidate(ctx)
	_, err := s.Summary(ctx, models.TransactionFilter{})
	return err
}

// ComputeTotals sums income and expense. The zero value is returned for no input.
func ComputeTotals(txs []models.Transaction) models.Totals {
	var t models.Totals
	for i := range txs {
		switch {
		case txs[i].IsIncome():
			t.Income += txs[i].Amount
		case txs[i].IsExpense():
			t.Expense += txs[i].Amount
		}
	}
	t.Balance = t.Income - t.Expense
	t.Count = len(txs)
	return t
}

// BuildDailySeries buckets amounts per calendar day in date order, skipping days after
// today, with a running balance.
func BuildDailySeries(txs []models.Transaction, today string) models.DailySeries {
	income := make(map[string]int64)
	expense := make(map[string]int64)
	for i := range txs {
		d := txs[i].Date
		if d > today {
			continue
		}
		if _, ok := income[d]; !ok {
			income[d] = 0
			expense[d] = 0
		}
		switch {
		case txs[i].IsIncome():
			income[d] += txs[i].Amount
		case txs[i].IsExpense():
			expense[d] += txs[i].Amount
		}
	}

	dates := make([]string, 0, len(income))
	for d := range income {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	series := models.DailySeries{
		Dates:   dates,
		Income:  make([]int64, len(dates)),
		Expense: make([]int64, len(dates)),
		Balance: make([]int64, len(dates)),
	}
	var running int64
	for i, d := range dates {
		series.Income[i] = income[d]
		series.Expense[i] = expense[d]
		running += income[d] - expense[d]
		series.Balance[i] = running
	}
	return series
}

// DetectAnomalies flags unusual days and transactions.
//
// A day whose expense z-score (population standard deviation over all days in the
// series) exceeds 2.5 is critical and gets no further check. Otherwise a day whose
// expense is more than 3x its income, both positive, is a warning. Independently, an
// expense more than 3x the median of its category is a warning.
func DetectAnomalies(txs []models.Transaction, today string) []models.Anomaly {
	anomalies := []models.Anomaly{}
	series := BuildDailySeries(txs, today)

	mean, std := populationStats(series.Expense)
	for i, d := range series.Dates {
		exp, inc := series.Expense[i], series.Income[i]
		if std > 0 {
			z := (float64(exp) - mean) / std
			if z > criticalZScore {
				anomalies = append(anomalies, models.Anomaly{
					Level:   models.AnomalyCritical,
					Rule:    models.AnomalyRuleZScore,
					Date:    d,
					Amount:  exp,
					Message: fmt.Sprintf("Pengeluaran %s sebesar %s jauh di atas rata-rata harian (z=%.1f)", d, FormatRupiah(exp), z),
				})
				continue
			}
		}
		if exp > 0 && inc > 0 && exp > expenseIncomeRatio*inc {
			anomalies = append(anomalies, models.Anomaly{
				Level:   models.AnomalyWarning,
				Rule:    models.AnomalyRuleExpenseRatio,
				Date:    d,
				Amount:  exp,
				Message: fmt.Sprintf("Pengeluaran %s (%s) lebih dari 3x pemasukan hari itu (%s)", d, FormatRupiah(exp), FormatRupiah(inc)),
			})
		}
	}

	return append(anomalies, categoryOutliers(txs, today)...)
}

func categoryOutliers(txs []models.Transaction, today string) []models.Anomaly {
	byCategory := make(map[string][]int64)
	for i := range txs {
		if !txs[i].IsExpense() || txs[i].Date > today {
			continue
		}
		c := txs[i].Category
		byCategory[c] = append(byCategory[c], txs[i].Amount)
	}

	medians := make(map[string]float64, len(byCategory))
	for c, amounts := range byCategory {
		medians[c] = median(amounts)
	}

	var out []models.Anomaly
	for i := range txs {
		tx := &txs[i]
		if !tx.IsExpense() || tx.Date > today {
			continue
		}
		m := medians[tx.Category]
		if m > 0 && float64(tx.Amount) > categoryMedianFactor*m {
			out = append(out, models.Anomaly{
				Level:    models.AnomalyWarning,
				Rule:     models.AnomalyRuleCategoryMedian,
				Date:     tx.Date,
				Category: tx.Category,
				Amount:   tx.Amount,
				Message:  fmt.Sprintf("Pengeluaran %s %s sebesar %s lebih dari 3x median kategorinya", tx.Category, tx.Date, FormatRupiah(tx.Amount)),
			})
		}
	}
	return out
}

// populationStats returns mean and population standard deviation
func populationStats(values []int64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func median(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// GenerateInsights describes the ledger in a few display sentences
func GenerateInsights(txs []models.Transaction) []string {
	insights := []string{}
	totals := ComputeTotals(txs)

	if category, amount := topExpenseCategory(txs); category != "" && totals.Expense > 0 {
		pct := decimal.NewFromInt(amount).
			Div(decimal.NewFromInt(totals.Expense)).
			Mul(decimal.NewFromInt(100)).
			StringFixed(1)
		insights = append(insights, fmt.Sprintf("Pengeluaran terbesar pada kategori %s: %s (%s%% dari total pengeluaran)",
			category, FormatRupiah(amount), strings.Replace(pct, ".", ",", 1)))
	}

	switch {
	case totals.Expense > totals.Income:
		insights = append(insights, fmt.Sprintf("Defisit %s: pengeluaran melebihi pemasukan", FormatRupiah(totals.Expense-totals.Income)))
	case totals.Income > totals.Expense:
		insights = append(insights, fmt.Sprintf("Surplus %s: pemasukan melebihi pengeluaran", FormatRupiah(totals.Income-totals.Expense)))
	}

	if totals.Count > averageInsightMinTxs {
		var sum int64
		for i := range txs {
			sum += txs[i].Amount
		}
		avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(totals.Count))).Round(0).IntPart()
		insights = append(insights, fmt.Sprintf("Rata-rata nilai transaksi %s dari %d transaksi", FormatRupiah(avg), totals.Count))
	}
	return insights
}

// topExpenseCategory returns the category with the largest expense sum. Ties go to the
// alphabetically first category.
func topExpenseCategory(txs []models.Transaction) (string, int64) {
	sums := make(map[string]int64)
	for i := range txs {
		if txs[i].IsExpense() {
			sums[txs[i].Category] += txs[i].Amount
		}
	}
	var (
		top    string
		amount int64
	)
	for c, v := range sums {
		if v > amount || (v == amount && top != "" && c < top) {
			top, amount = c, v
		}
	}
	return top, amount
}
