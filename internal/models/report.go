package models

import (
	"time"
)

// Adjustment is a manual correction line attached to a report
type Adjustment struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// Report is an immutable snapshot of the ledger over a date range
type Report struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	PeriodStart         string       `json:"period_start"`
	PeriodEnd           string       `json:"period_end"`
	Totals              Totals       `json:"totals"`
	Adjustments         []Adjustment `json:"adjustments,omitempty"`
	Snapshot            *Transaction `json:"snapshot,omitempty"`
	LinkedTransactionID string       `json:"linked_transaction_id,omitempty"`
	DuesPeriod          string       `json:"dues_period,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
}

// AdjustedBalance returns the balance after applying the report's adjustments
func (r *Report) AdjustedBalance() int64 {
	balance := r.Totals.Balance
	for _, a := range r.Adjustments {
		balance += a.Amount
	}
	return balance
}
