package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Resident statuses
const (
	ResidentStatusActive   = "active"
	ResidentStatusInactive = "inactive"
)

// ResidentID accepts both numeric and string ids, as roster exports use either
type ResidentID string

func (id *ResidentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ResidentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ResidentID(n.String())
	return nil
}

// Resident (warga) as published by the roster module
type Resident struct {
	ID     ResidentID `json:"id"`
	Nama   string     `json:"nama"`
	Status string     `json:"status"`
}

// IsActive returns true for residents taking part in dues tracking.
// Roster rows without a status predate the field and count as active.
func (r *Resident) IsActive() bool {
	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case "", ResidentStatusActive, "aktif":
		return true
	}
	return false
}

// Ref returns the listing view of the resident
func (r *Resident) Ref() ResidentRef {
	return ResidentRef{ID: string(r.ID), Nama: r.Nama}
}
