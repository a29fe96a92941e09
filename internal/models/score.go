package models

import (
	"errors"
	"math"
	"time"
)

// ScoreTolerance bounds the allowed drift of neg+neu+pos away from 1.
const ScoreTolerance = 1e-6

// SentimentScore is the polarity 4-tuple of one filtered and scored text record.
type SentimentScore struct {
	Compound float64 `json:"compound"`
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
}

// Validate checks score field constraints.
func (s SentimentScore) Validate() error {
	for _, v := range []float64{s.Neg, s.Neu, s.Pos, s.Compound} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("score fields must be finite")
		}
	}
	if s.Neg < 0.0 || s.Neg > 1.0 {
		return errors.New("neg must be between 0.0 and 1.0")
	}
	if s.Neu < 0.0 || s.Neu > 1.0 {
		return errors.New("neu must be between 0.0 and 1.0")
	}
	if s.Pos < 0.0 || s.Pos > 1.0 {
		return errors.New("pos must be between 0.0 and 1.0")
	}
	if math.Abs(s.Neg+s.Neu+s.Pos-1.0) > ScoreTolerance {
		return errors.New("neg + neu + pos must equal 1.0")
	}
	if s.Compound < -1.0 || s.Compound > 1.0 {
		return errors.New("compound must be between -1.0 and 1.0")
	}
	return nil
}

// DailyScoreSet holds the ordered scores produced from one corpus file.
type DailyScoreSet struct {
	DayKey string           `json:"day_key"`
	Scores []SentimentScore `json:"scores"`
}

// Date returns the calendar day of the set.
func (d DailyScoreSet) Date() (time.Time, error) {
	return ParseDayKey(d.DayKey)
}

// DailySummary aggregates one day's scores.
type DailySummary struct {
	DayKey         string  `json:"day_key"`
	Count          int     `json:"count"`
	Neg            float64 `json:"neg"`
	Neu            float64 `json:"neu"`
	Pos            float64 `json:"pos"`
	Compound       float64 `json:"compound"`
	CompoundStdDev float64 `json:"compound_std"`
	// ObjectiveRate is the share of records that carried any polarity (neu != 1).
	ObjectiveRate float64 `json:"objective_rate"`
}
