package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Transaction types
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// CategoryDues is the ledger category used for resident dues income
const CategoryDues = "Iuran"

var duesTokenPattern = regexp.MustCompile(`\[DUES:(\d{4}-\d{2}):([^\]]+)\]`)

// DuesKey identifies one resident's dues payment for one period
type DuesKey struct {
	Period     string `json:"period"`
	ResidentID string `json:"resident_id"`
}

// Token renders the key as the marker embedded in ledger descriptions
func (k DuesKey) Token() string {
	return fmt.Sprintf("[DUES:%s:%s]", k.Period, k.ResidentID)
}

// ParseDuesToken extracts a dues key from a description carrying a [DUES:period:resident] marker
func ParseDuesToken(description string) (DuesKey, bool) {
	m := duesTokenPattern.FindStringSubmatch(description)
	if m == nil {
		return DuesKey{}, false
	}
	return DuesKey{Period: m[1], ResidentID: m[2]}, true
}

// Transaction is a single ledger entry
type Transaction struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	LinkedKey   *DuesKey  `json:"linked_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsIncome returns true for income entries
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

// IsExpense returns true for expense entries
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}

// DuesLink returns the dues payment this entry belongs to. Entries written before
// linked_key existed are recognised by the token in their description.
func (t *Transaction) DuesLink() (DuesKey, bool) {
	if t.Category != CategoryDues || t.Type != TransactionTypeIncome {
		return DuesKey{}, false
	}
	if t.LinkedKey != nil {
		return *t.LinkedKey, true
	}
	return ParseDuesToken(t.Description)
}

// IsDuesFor reports whether the entry is the dues income for key
func (t *Transaction) IsDuesFor(key DuesKey) bool {
	k, ok := t.DuesLink()
	return ok && k == key
}

// IsDuesLinked reports whether the entry is owned by the dues synchronizer
func (t *Transaction) IsDuesLinked() bool {
	_, ok := t.DuesLink()
	return ok
}

// Matches reports whether two entries carry the same booking fields, ignoring id and timestamps
func (t *Transaction) Matches(other *Transaction) bool {
	return t.Date == other.Date &&
		t.Type == other.Type &&
		t.Amount == other.Amount &&
		strings.EqualFold(t.Category, other.Category) &&
		strings.TrimSpace(t.Description) == strings.TrimSpace(other.Description)
}

// TransactionFilter narrows a ledger listing. Empty fields do not filter.
type TransactionFilter struct {
	From     string `form:"from"`
	To       string `form:"to"`
	Type     string `form:"type"`
	Category string `form:"category"`
}

// Apply returns the entries matching the filter, preserving order
func (f TransactionFilter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.From != "" && tx.Date < f.From {
			continue
		}
		if f.To != "" && tx.Date > f.To {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.Category != "" && !strings.EqualFold(tx.Category, f.Category) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
