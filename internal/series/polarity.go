// Package series derives the chartable time series: per-record polarity, daily price change,
// and their alignment by calendar day.
package series

import (
	"fmt"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
	"github.com/rewired-gh/sentiday/internal/models"
)

// Polarity collapses a score to its dominant direction: +pos when pos > neg, otherwise -neg.
// Ties resolve to the negative side.
func Polarity(s models.SentimentScore) (float64, string) {
	if s.Pos > s.Neg {
		return s.Pos, models.VariablePos
	}
	return -s.Neg, models.VariableNeg
}

// DerivePolarity returns one point per score, dated with the set's day key, in score order.
func DerivePolarity(set models.DailyScoreSet) ([]models.PolarityPoint, error) {
	date, err := set.Date()
	if err != nil {
		return nil, apperrors.MalformedRecord(err.Error()).WithContext("day", set.DayKey)
	}

	points := make([]models.PolarityPoint, 0, len(set.Scores))
	for _, s := range set.Scores {
		v, variable := Polarity(s)
		points = append(points, models.PolarityPoint{Date: date, Value: v, Variable: variable})
	}
	return points, nil
}

// DerivePolaritySets concatenates DerivePolarity over sets, preserving set order.
func DerivePolaritySets(sets []models.DailyScoreSet) ([]models.PolarityPoint, error) {
	var points []models.PolarityPoint
	for _, set := range sets {
		p, err := DerivePolarity(set)
		if err != nil {
			return nil, err
		}
		points = append(points, p...)
	}
	if points == nil {
		points = []models.PolarityPoint{}
	}
	return points, nil
}

// DailyPolarity averages the per-record polarity of one day.
func DailyPolarity(set models.DailyScoreSet) (models.PolarityPoint, error) {
	if len(set.Scores) == 0 {
		return models.PolarityPoint{}, apperrors.EmptyInput(fmt.Sprintf("no scored records for day %s", set.DayKey)).
			WithContext("day", set.DayKey)
	}
	date, err := set.Date()
	if err != nil {
		return models.PolarityPoint{}, apperrors.MalformedRecord(err.Error()).WithContext("day", set.DayKey)
	}

	var sum float64
	for _, s := range set.Scores {
		v, _ := Polarity(s)
		sum += v
	}
	mean := sum / float64(len(set.Scores))

	variable := models.VariableNeg
	if mean > 0 {
		variable = models.VariablePos
	}
	return models.PolarityPoint{Date: date, Value: mean, Variable: variable}, nil
}
