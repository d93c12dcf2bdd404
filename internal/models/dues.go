package models

import (
	"encoding/json"
	"sort"
	"time"
)

// DuesConfig is the dues setup for one period
type DuesConfig struct {
	Amount    int64     `json:"amount"`
	Closed    bool      `json:"closed"`
	CreatedAt time.Time `json:"createdAt"`
}

// DuesConfigs maps period -> config, stored under the dues_configs key
type DuesConfigs map[string]DuesConfig

// LegacyDuesConfig is the single-slot record written by older versions under dues_config
type LegacyDuesConfig struct {
	Amount int64  `json:"amount"`
	Month  string `json:"month"`
}

// PaidSet lists the residents that paid for a period
type PaidSet struct {
	Paid []string `json:"paid"`
}

// UnmarshalJSON reads ids written as numbers or strings, the same as the roster
func (p *PaidSet) UnmarshalJSON(data []byte) error {
	var raw struct {
		Paid []ResidentID `json:"paid"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Paid = make([]string, 0, len(raw.Paid))
	for _, id := range raw.Paid {
		p.Paid = append(p.Paid, string(id))
	}
	return nil
}

// DuesPayments maps period -> paid set, stored under the dues_payments key
type DuesPayments map[string]PaidSet

// IsPaid reports whether residentID is in the paid set for period
func (p DuesPayments) IsPaid(period, residentID string) bool {
	for _, id := range p[period].Paid {
		if id == residentID {
			return true
		}
	}
	return false
}

// SetPaid adds or removes residentID from the period's paid set. It returns false when
// the set already had the requested membership.
func (p DuesPayments) SetPaid(period, residentID string, paid bool) bool {
	if p.IsPaid(period, residentID) == paid {
		return false
	}
	set := p[period]
	if paid {
		set.Paid = append(set.Paid, residentID)
		sort.Strings(set.Paid)
	} else {
		kept := set.Paid[:0:0]
		for _, id := range set.Paid {
			if id != residentID {
				kept = append(kept, id)
			}
		}
		set.Paid = kept
	}
	p[period] = set
	return true
}

// Dues operating modes
const (
	DuesModeRemote = "remote"
	DuesModeLocal  = "local"
)

// ResidentRef is the minimal resident view used in dues listings
type ResidentRef struct {
	ID   string `json:"id"`
	Nama string `json:"nama"`
}

// DuesStatus is the paid/pending breakdown of a period
type DuesStatus struct {
	Period  string        `json:"periode"`
	Amount  int64         `json:"amount"`
	Closed  bool          `json:"closed"`
	Paid    []ResidentRef `json:"paid"`
	Pending []ResidentRef `json:"pending"`
	Mode    string        `json:"mode"`
}
