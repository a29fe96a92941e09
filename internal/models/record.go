// Package models defines the core domain entities: capture files, text records, sentiment scores and analysis series.
package models

import (
	"fmt"
	"time"
)

// DayKeyLayout is the time layout of an 8-digit day key (YYYYMMDD).
const DayKeyLayout = "20060102"

// CaptureFile is one raw, time-stamped data dump found on disk.
// DayKey is always exactly 8 decimal digits.
type CaptureFile struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	DayKey string `json:"day_key"`
}

// TextRecord is a single text row of a corpus.
type TextRecord struct {
	Text      string `json:"text"`
	Influence *int   `json:"influence,omitempty"`
	Lang      string `json:"lang,omitempty"`
}

// InfluenceValue returns the influence metric, treating a missing value as zero.
func (r TextRecord) InfluenceValue() int {
	if r.Influence == nil {
		return 0
	}
	return *r.Influence
}

// ParseDayKey converts a day key into the UTC midnight of that calendar day.
func ParseDayKey(dayKey string) (time.Time, error) {
	if !IsDayKey(dayKey) {
		return time.Time{}, fmt.Errorf("invalid day key %q: want 8 decimal digits", dayKey)
	}
	t, err := time.Parse(DayKeyLayout, dayKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", dayKey, err)
	}
	return t, nil
}

// IsDayKey reports whether s is exactly 8 ASCII decimal digits.
func IsDayKey(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
