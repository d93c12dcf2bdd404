package models

import (
	"time"
)

// Layouts used for dues periods and ledger dates
const (
	PeriodLayout = "2006-01"
	DateLayout   = "2006-01-02"
)

// PeriodOf returns the YYYY-MM period containing t
func PeriodOf(t time.Time) string {
	return t.Format(PeriodLayout)
}

// DateOf returns the YYYY-MM-DD calendar day of t
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidPeriod reports whether p is a well-formed YYYY-MM period
func ValidPeriod(p string) bool {
	if len(p) != len(PeriodLayout) {
		return false
	}
	_, err := time.Parse(PeriodLayout, p)
	return err == nil
}

// ValidDate reports whether d is a well-formed YYYY-MM-DD date
func ValidDate(d string) bool {
	if len(d) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, d)
	return err == nil
}

// PeriodStartDate returns the first day of the period as YYYY-MM-DD
func PeriodStartDate(period string) string {
	return period + "-01"
}
