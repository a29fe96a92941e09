package series

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rewired-gh/sentiday/internal/models"
)

// DerivePriceDiff returns close minus open for every row, in row order.
func DerivePriceDiff(rows []models.PriceRow) []models.PriceDiffPoint {
	points := make([]models.PriceDiffPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, models.PriceDiffPoint{
			Date:      r.Date,
			PriceDiff: r.Close.Sub(r.Open),
		})
	}
	return points
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// JoinDaily pairs each daily polarity point with the price change of the same UTC calendar day.
// Several price rows on one day are summed. Days missing on either side are left out.
// The result is sorted by date.
func JoinDaily(polarity []models.PolarityPoint, diffs []models.PriceDiffPoint) []models.DailyPoint {
	byDay := make(map[time.Time]decimal.Decimal, len(diffs))
	for _, d := range diffs {
		day := dayOf(d.Date)
		byDay[day] = byDay[day].Add(d.PriceDiff)
	}

	points := make([]models.DailyPoint, 0, len(polarity))
	seen := make(map[time.Time]bool, len(polarity))
	for _, p := range polarity {
		day := dayOf(p.Date)
		diff, ok := byDay[day]
		if !ok || seen[day] {
			continue
		}
		seen[day] = true
		points = append(points, models.DailyPoint{Date: day, Polarity: p.Value, PriceDiff: diff})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
