package storage

import (
	"strconv"

	"github.com/rewired-gh/sentiday/internal/models"
)

// WritePolarity writes one row per polarity point.
func (s *Store) WritePolarity(path string, points []models.PolarityPoint) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Date.Format(DateLayout), formatFloat(p.Value), p.Variable})
	}
	return writeCSV(path, []string{"date", "value", "variable"}, rows)
}

// WritePriceDiff writes one row per price-diff point.
func (s *Store) WritePriceDiff(path string, points []models.PriceDiffPoint) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Date.Format(DateLayout), p.PriceDiff.String()})
	}
	return writeCSV(path, []string{"date", "price_diff"}, rows)
}

// WriteSummaries writes one row per daily summary.
func (s *Store) WriteSummaries(path string, summaries []models.DailySummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, sm := range summaries {
		rows = append(rows, []string{
			sm.DayKey,
			strconv.Itoa(sm.Count),
			formatFloat(sm.Neg),
			formatFloat(sm.Neu),
			formatFloat(sm.Pos),
			formatFloat(sm.Compound),
			formatFloat(sm.CompoundStdDev),
			formatFloat(sm.ObjectiveRate),
		})
	}
	header := []string{"day", "count", "neg", "neu", "pos", "compound", "compound_std", "objective_rate"}
	return writeCSV(path, header, rows)
}

// WriteDailySeries writes the joined polarity / price-change series.
func (s *Store) WriteDailySeries(path string, points []models.DailyPoint) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Date.Format(DateLayout), formatFloat(p.Polarity), p.PriceDiff.String()})
	}
	return writeCSV(path, []string{"date", "polarity", "price_diff"}, rows)
}
