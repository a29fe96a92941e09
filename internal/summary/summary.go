// Package summary reduces a day's sentiment scores to one aggregate row.
package summary

import (
	"fmt"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
	"github.com/rewired-gh/sentiday/internal/models"
)

// Summarize averages the score components of one day. It fails with an empty-input error
// when no record survived filtering.
func Summarize(dayKey string, scores []models.SentimentScore) (models.DailySummary, error) {
	if len(scores) == 0 {
		return models.DailySummary{}, apperrors.EmptyInput(fmt.Sprintf("no scored records for day %s", dayKey)).
			WithContext("day", dayKey)
	}

	var neg, neu, pos, compound Welford
	objective := 0
	for _, s := range scores {
		neg.Add(s.Neg)
		neu.Add(s.Neu)
		pos.Add(s.Pos)
		compound.Add(s.Compound)
		if s.Neu != 1 {
			objective++
		}
	}

	return models.DailySummary{
		DayKey:         dayKey,
		Count:          len(scores),
		Neg:            neg.Mean(),
		Neu:            neu.Mean(),
		Pos:            pos.Mean(),
		Compound:       compound.Mean(),
		CompoundStdDev: compound.StdDev(),
		ObjectiveRate:  float64(objective) / float64(len(scores)),
	}, nil
}
