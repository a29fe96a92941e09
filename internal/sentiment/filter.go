package sentiment

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rewired-gh/sentiday/internal/models"
)

// DefaultInfluenceThreshold is the minimum follower count (exclusive) a raw post needs.
const DefaultInfluenceThreshold = 100

// Options selects which record filters run before scoring.
type Options struct {
	// Keyword must appear in the text, compared case-insensitively. Empty keeps everything.
	Keyword            string
	KeywordFilter      bool
	InfluenceFilter    bool
	InfluenceThreshold int
}

// DefaultOptions enables both filters with the default threshold.
func DefaultOptions() Options {
	return Options{
		KeywordFilter:      true,
		InfluenceFilter:    true,
		InfluenceThreshold: DefaultInfluenceThreshold,
	}
}

// FilterStats counts records seen and dropped by each filter.
type FilterStats struct {
	Input            int
	DroppedKeyword   int
	DroppedInfluence int
	Kept             int
	// ForeignLang counts kept records tagged with a language other than English.
	// They are scored untranslated against the English lexicon.
	ForeignLang int
}

// Filter applies the keyword filter, then the influence filter. Order is preserved.
// A record without an influence value counts as zero influence.
func Filter(records []models.TextRecord, opts Options) ([]models.TextRecord, FilterStats) {
	stats := FilterStats{Input: len(records)}

	// Caser is stateful, so each call folds with its own.
	fold := cases.Fold()
	keyword := ""
	if opts.KeywordFilter && opts.Keyword != "" {
		keyword = fold.String(opts.Keyword)
	}

	kept := make([]models.TextRecord, 0, len(records))
	for _, rec := range records {
		if keyword != "" && !strings.Contains(fold.String(rec.Text), keyword) {
			stats.DroppedKeyword++
			continue
		}
		if opts.InfluenceFilter && rec.InfluenceValue() <= opts.InfluenceThreshold {
			stats.DroppedInfluence++
			continue
		}
		if isForeign(rec.Lang) {
			stats.ForeignLang++
		}
		kept = append(kept, rec)
	}
	stats.Kept = len(kept)
	return kept, stats
}

var english, _ = language.English.Base()

// isForeign reports whether lang names a known language other than English.
// Empty, undetermined ("und") and unparseable tags are not counted.
func isForeign(lang string) bool {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return false
	}
	tag, err := language.Parse(lang)
	if err != nil || tag == language.Und {
		return false
	}
	base, _ := tag.Base()
	return base != english
}
