package series

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
	"github.com/rewired-gh/sentiday/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPolarity(t *testing.T) {
	tests := []struct {
		name         string
		score        models.SentimentScore
		wantValue    float64
		wantVariable string
	}{
		{"positive dominates", models.SentimentScore{Pos: 0.6, Neg: 0.1, Neu: 0.3}, 0.6, "pos"},
		{"negative dominates", models.SentimentScore{Pos: 0.1, Neg: 0.5, Neu: 0.4}, -0.5, "neg"},
		{"tie goes negative", models.SentimentScore{Pos: 0.2, Neg: 0.2, Neu: 0.6}, -0.2, "neg"},
		{"fully neutral", models.SentimentScore{Neu: 1}, 0, "neg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, variable := Polarity(tt.score)
			assert.Equal(t, tt.wantValue, v)
			assert.Equal(t, tt.wantVariable, variable)
		})
	}
}

func TestDerivePolarity(t *testing.T) {
	set := models.DailyScoreSet{
		DayKey: "20200101",
		Scores: []models.SentimentScore{
			{Pos: 0.6, Neg: 0.1, Neu: 0.3},
			{Pos: 0.2, Neg: 0.2, Neu: 0.6},
		},
	}

	points, err := DerivePolarity(set)
	require.NoError(t, err)

	assert.Equal(t, []models.PolarityPoint{
		{Date: day(2020, 1, 1), Value: 0.6, Variable: "pos"},
		{Date: day(2020, 1, 1), Value: -0.2, Variable: "neg"},
	}, points)
}

func TestDerivePolarityBadDayKey(t *testing.T) {
	_, err := DerivePolarity(models.DailyScoreSet{DayKey: "2020011"})
	assert.True(t, apperrors.Is(err, apperrors.TypeMalformedRecord))
}

func TestDerivePolaritySets(t *testing.T) {
	sets := []models.DailyScoreSet{
		{DayKey: "20200101", Scores: []models.SentimentScore{{Pos: 1}}},
		{DayKey: "20200102", Scores: []models.SentimentScore{}},
		{DayKey: "20200103", Scores: []models.SentimentScore{{Neg: 1}}},
	}

	points, err := DerivePolaritySets(sets)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, day(2020, 1, 1), points[0].Date)
	assert.Equal(t, day(2020, 1, 3), points[1].Date)
	assert.Equal(t, -1.0, points[1].Value)

	points, err = DerivePolaritySets(nil)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDailyPolarity(t *testing.T) {
	set := models.DailyScoreSet{
		DayKey: "20200102",
		Scores: []models.SentimentScore{
			{Pos: 0.6, Neg: 0.1, Neu: 0.3},
			{Pos: 0.0, Neg: 0.2, Neu: 0.8},
		},
	}

	p, err := DailyPolarity(set)
	require.NoError(t, err)
	assert.Equal(t, day(2020, 1, 2), p.Date)
	assert.InDelta(t, 0.2, p.Value, 1e-12)
	assert.Equal(t, "pos", p.Variable)

	_, err = DailyPolarity(models.DailyScoreSet{DayKey: "20200102"})
	assert.True(t, apperrors.Is(err, apperrors.TypeEmptyInput))
}

func TestDerivePriceDiff(t *testing.T) {
	rows := []models.PriceRow{
		{Date: day(2020, 1, 1), Open: decimal.NewFromInt(100), Close: decimal.NewFromInt(110)},
		{Date: day(2020, 1, 2), Open: decimal.RequireFromString("0.3"), Close: decimal.RequireFromString("0.1")},
	}

	points := DerivePriceDiff(rows)

	require.Len(t, points, 2)
	assert.Equal(t, day(2020, 1, 1), points[0].Date)
	assert.True(t, points[0].PriceDiff.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "-0.2", points[1].PriceDiff.String())

	assert.Empty(t, DerivePriceDiff(nil))
}

func TestJoinDaily(t *testing.T) {
	polarity := []models.PolarityPoint{
		{Date: day(2020, 1, 3), Value: -0.1, Variable: "neg"},
		{Date: day(2020, 1, 1), Value: 0.4, Variable: "pos"},
		{Date: day(2020, 1, 2), Value: 0.2, Variable: "pos"},
	}
	diffs := []models.PriceDiffPoint{
		{Date: day(2020, 1, 1), PriceDiff: decimal.NewFromInt(10)},
		{Date: day(2020, 1, 3).Add(6 * time.Hour), PriceDiff: decimal.NewFromInt(-3)},
		{Date: day(2020, 1, 3).Add(18 * time.Hour), PriceDiff: decimal.NewFromInt(1)},
	}

	points := JoinDaily(polarity, diffs)

	require.Len(t, points, 2)
	assert.Equal(t, day(2020, 1, 1), points[0].Date)
	assert.Equal(t, 0.4, points[0].Polarity)
	assert.Equal(t, "10", points[0].PriceDiff.String())
	assert.Equal(t, day(2020, 1, 3), points[1].Date)
	assert.Equal(t, "-2", points[1].PriceDiff.String())
}
