// Package sentiment filters, cleans and scores text records with a lexicon-based valence analyzer.
package sentiment

import (
	"sync"

	"github.com/rewired-gh/sentiday/internal/models"
)

var (
	defaultOnce     sync.Once
	defaultAnalyzer *Analyzer
)

// Default returns a shared analyzer over the builtin lexicon.
func Default() *Analyzer {
	defaultOnce.Do(func() {
		defaultAnalyzer = NewAnalyzer(BuiltinLexicon())
	})
	return defaultAnalyzer
}

// Score filters records, cleans the survivors and returns one score per survivor in input order.
func (a *Analyzer) Score(records []models.TextRecord, opts Options) []models.SentimentScore {
	scores, _ := a.ScoreWithStats(records, opts)
	return scores
}

// ScoreWithStats is Score that also reports what the filters dropped.
func (a *Analyzer) ScoreWithStats(records []models.TextRecord, opts Options) ([]models.SentimentScore, FilterStats) {
	kept, stats := Filter(records, opts)
	scores := make([]models.SentimentScore, 0, len(kept))
	for _, rec := range kept {
		scores = append(scores, a.PolarityScores(Clean(rec.Text)))
	}
	return scores, stats
}

// Score scores records with the builtin lexicon.
func Score(records []models.TextRecord, opts Options) []models.SentimentScore {
	return Default().Score(records, opts)
}
