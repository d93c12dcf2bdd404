package models

import (
	"time"
)

// Totals summarises a set of ledger entries
type Totals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
	Count   int   `json:"count"`
}

// DailySeries holds per-day income/expense and the running balance, one index per date
type DailySeries struct {
	Dates   []string `json:"dates"`
	Income  []int64  `json:"income"`
	Expense []int64  `json:"expense"`
	Balance []int64  `json:"balance"`
}

// Anomaly levels
const (
	AnomalyCritical = "critical"
	AnomalyWarning  = "warning"
)

// Anomaly rules
const (
	AnomalyRuleZScore         = "daily_expense_zscore"
	AnomalyRuleExpenseRatio   = "daily_expense_ratio"
	AnomalyRuleCategoryMedian = "category_median"
)

// Anomaly is a descriptive flag raised over the ledger
type Anomaly struct {
	Level    string `json:"level"`
	Rule     string `json:"rule"`
	Date     string `json:"date"`
	Category string `json:"category,omitempty"`
	Amount   int64  `json:"amount"`
	Message  string `json:"message"`
}

// AnalyticsSummary is the aggregate snapshot served to dashboards
type AnalyticsSummary struct {
	Totals      Totals      `json:"totals"`
	Series      DailySeries `json:"series"`
	Anomalies   []Anomaly   `json:"anomalies"`
	Insights    []string    `json:"insights"`
	GeneratedAt time.Time   `json:"generated_at"`
}
