package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/sjperalta/komplek-api/internal/config"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToday = "2026-10-16"

func income(date, category string, amount int64) models.Transaction {
	return models.Transaction{Date: date, Type: models.TransactionTypeIncome, Category: category, Amount: amount}
}

func expense(date, category string, amount int64) models.Transaction {
	return models.Transaction{Date: date, Type: models.TransactionTypeExpense, Category: category, Amount: amount}
}

func anomaliesOf(anomalies []models.Anomaly, level string) []models.Anomaly {
	var out []models.Anomaly
	for _, a := range anomalies {
		if a.Level == level {
			out = append(out, a)
		}
	}
	return out
}

func TestComputeTotals(t *testing.T) {
	assert.Equal(t, models.Totals{}, ComputeTotals(nil))

	totals := ComputeTotals([]models.Transaction{
		income("2026-10-01", "Iuran", 150000),
		income("2026-10-02", "Donasi", 50000),
		expense("2026-10-03", "Kebersihan", 80000),
	})
	assert.Equal(t, models.Totals{Income: 200000, Expense: 80000, Balance: 120000, Count: 3}, totals)
}

func TestBuildDailySeries(t *testing.T) {
	series := BuildDailySeries([]models.Transaction{
		income("2026-10-03", "Donasi", 100),
		income("2026-10-01", "Iuran", 1000),
		expense("2026-10-01", "Kebersihan", 200),
		expense("2026-10-03", "Keamanan", 300),
		income("2026-10-20", "Iuran", 5000),
	}, testToday)

	assert.Equal(t, []string{"2026-10-01", "2026-10-03"}, series.Dates)
	assert.Equal(t, []int64{1000, 100}, series.Income)
	assert.Equal(t, []int64{200, 300}, series.Expense)
	assert.Equal(t, []int64{800, 600}, series.Balance)
}

func TestDetectAnomalies_ZScoreBelowThreshold(t *testing.T) {
	txs := []models.Transaction{
		expense("2026-10-01", "A", 100),
		expense("2026-10-02", "B", 100),
		expense("2026-10-03", "C", 100),
		expense("2026-10-04", "D", 100),
		expense("2026-10-05", "E", 1000),
	}

	mean, std := populationStats([]int64{100, 100, 100, 100, 1000})
	assert.InDelta(t, 280, mean, 1e-9)
	assert.InDelta(t, 360, std, 1e-9)

	assert.Empty(t, anomaliesOf(DetectAnomalies(txs, testToday), models.AnomalyCritical))
}

func TestDetectAnomalies_CriticalSkipsRatioCheck(t *testing.T) {
	var txs []models.Transaction
	for day := 1; day <= 9; day++ {
		txs = append(txs, expense(fmt.Sprintf("2026-10-%02d", day), fmt.Sprintf("Kat%d", day), 100))
	}
	txs = append(txs,
		expense("2026-10-10", "Renovasi", 10000),
		income("2026-10-10", "Donasi", 1000),
	)

	anomalies := DetectAnomalies(txs, testToday)
	critical := anomaliesOf(anomalies, models.AnomalyCritical)
	require.Len(t, critical, 1)
	assert.Equal(t, "2026-10-10", critical[0].Date)
	assert.Equal(t, models.AnomalyRuleZScore, critical[0].Rule)
	assert.Equal(t, int64(10000), critical[0].Amount)
	assert.Empty(t, anomaliesOf(anomalies, models.AnomalyWarning))
}

func TestDetectAnomalies_ExpenseRatio(t *testing.T) {
	anomalies := DetectAnomalies([]models.Transaction{
		income("2026-10-05", "Donasi", 100),
		expense("2026-10-05", "Perbaikan", 400),
	}, testToday)

	require.Len(t, anomalies, 1)
	assert.Equal(t, models.AnomalyWarning, anomalies[0].Level)
	assert.Equal(t, models.AnomalyRuleExpenseRatio, anomalies[0].Rule)

	// exactly 3x is not flagged
	assert.Empty(t, DetectAnomalies([]models.Transaction{
		income("2026-10-05", "Donasi", 100),
		expense("2026-10-05", "Perbaikan", 300),
	}, testToday))
}

func TestDetectAnomalies_CategoryMedian(t *testing.T) {
	anomalies := DetectAnomalies([]models.Transaction{
		expense("2026-10-01", "Security", 100000),
		expense("2026-10-02", "Security", 120000),
		expense("2026-10-03", "Security", 110000),
		expense("2026-10-04", "Security", 500000),
	}, testToday)

	require.Len(t, anomalies, 1)
	assert.Equal(t, models.AnomalyWarning, anomalies[0].Level)
	assert.Equal(t, models.AnomalyRuleCategoryMedian, anomalies[0].Rule)
	assert.Equal(t, "Security", anomalies[0].Category)
	assert.Equal(t, int64(500000), anomalies[0].Amount)
}

func TestDetectAnomalies_CategoryMedianFlagsOnlyOutlier(t *testing.T) {
	anomalies := DetectAnomalies([]models.Transaction{
		expense("2026-10-01", "Security", 200000),
		expense("2026-10-02", "Security", 200000),
		expense("2026-10-03", "Security", 200000),
		expense("2026-10-04", "Security", 900000),
	}, testToday)

	flagged := anomaliesOf(anomalies, models.AnomalyWarning)
	require.Len(t, flagged, 1)
	assert.Equal(t, models.AnomalyRuleCategoryMedian, flagged[0].Rule)
	assert.Equal(t, "2026-10-04", flagged[0].Date)
	assert.Equal(t, int64(900000), flagged[0].Amount)
	assert.Empty(t, anomaliesOf(anomalies, models.AnomalyCritical))
}

func TestDetectAnomalies_IgnoresFutureDates(t *testing.T) {
	anomalies := DetectAnomalies([]models.Transaction{
		income("2026-10-25", "Donasi", 100),
		expense("2026-10-25", "Perbaikan", 900),
	}, testToday)
	assert.Empty(t, anomalies)
}

func TestGenerateInsights(t *testing.T) {
	insights := GenerateInsights([]models.Transaction{
		income("2026-10-01", "Iuran", 1000),
		expense("2026-10-02", "Kebersihan", 300),
		expense("2026-10-03", "Keamanan", 200),
	})

	require.Len(t, insights, 2)
	assert.Equal(t, "Pengeluaran terbesar pada kategori Kebersihan: Rp 300 (60,0% dari total pengeluaran)", insights[0])
	assert.Equal(t, "Surplus Rp 500: pemasukan melebihi pengeluaran", insights[1])

	deficit := GenerateInsights([]models.Transaction{
		income("2026-10-01", "Iuran", 100),
		expense("2026-10-02", "Kebersihan", 400),
	})
	assert.Contains(t, deficit, "Defisit Rp 300: pengeluaran melebihi pemasukan")

	assert.Empty(t, GenerateInsights(nil))
}

func TestGenerateInsights_AverageNeedsEnoughTransactions(t *testing.T) {
	var txs []models.Transaction
	for i := 0; i < averageInsightMinTxs; i++ {
		txs = append(txs, income("2026-10-01", "Iuran", 1000))
	}
	for _, insight := range GenerateInsights(txs) {
		assert.NotContains(t, insight, "Rata-rata")
	}

	txs = append(txs, income("2026-10-01", "Iuran", 1000))
	assert.Contains(t, GenerateInsights(txs), "Rata-rata nilai transaksi Rp 1.000 dari 51 transaksi")
}

func TestAnalyticsService_CacheFollowsLedger(t *testing.T) {
	env := newTestEnv(t, nil, config.ClosingPolicySticky)
	ctx := context.Background()

	first, err := env.svc.Analytics.Summary(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.Totals{}, first.Totals)

	again, err := env.svc.Analytics.Summary(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = env.svc.Ledger.Create(ctx, TransactionInput{
		Date: "2026-10-02", Type: models.TransactionTypeIncome, Category: "Donasi", Amount: 250000,
	})
	require.NoError(t, err)

	after, err := env.svc.Analytics.Summary(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(250000), after.Totals.Income)
	assert.Equal(t, []string{"2026-10-02"}, after.Series.Dates)
	assert.Equal(t, testNow, after.GeneratedAt)
}

func TestAnalyticsService_Filter(t *testing.T) {
	env := newTestEnv(t, nil, config.ClosingPolicySticky)
	ctx := context.Background()
	require.NoError(t, env.repos.Ledger.SaveAll(ctx, []models.Transaction{
		income("2026-09-01", "Iuran", 100000),
		income("2026-10-01", "Iuran", 150000),
		expense("2026-10-05", "Kebersihan", 50000),
	}))

	summary, err := env.svc.Analytics.Summary(ctx, models.TransactionFilter{From: "2026-10-01", To: "2026-10-31"})
	require.NoError(t, err)
	assert.Equal(t, models.Totals{Income: 150000, Expense: 50000, Balance: 100000, Count: 2}, summary.Totals)

	expenses, err := env.svc.Analytics.Summary(ctx, models.TransactionFilter{Type: models.TransactionTypeExpense})
	require.NoError(t, err)
	assert.Equal(t, int64(0), expenses.Totals.Income)
	assert.Equal(t, int64(50000), expenses.Totals.Expense)
}
