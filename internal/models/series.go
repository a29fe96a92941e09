package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Polarity variable labels.
const (
	VariablePos = "pos"
	VariableNeg = "neg"
)

// PolarityPoint is a signed summary of dominant sentiment.
type PolarityPoint struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	Variable string    `json:"variable"`
}

// PriceRow is one OHLCV row reduced to the fields the pipeline consumes.
type PriceRow struct {
	Date  time.Time       `json:"date"`
	Open  decimal.Decimal `json:"price_open"`
	Close decimal.Decimal `json:"price_close"`
}

// PriceDiffPoint is close minus open of one price row.
type PriceDiffPoint struct {
	Date      time.Time       `json:"date"`
	PriceDiff decimal.Decimal `json:"price_diff"`
}

// DailyPoint aligns a day's average polarity with that day's price change.
type DailyPoint struct {
	Date      time.Time       `json:"date"`
	Polarity  float64         `json:"polarity"`
	PriceDiff decimal.Decimal `json:"price_diff"`
}
