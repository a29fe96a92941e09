package sentiment

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rewired-gh/sentiday/internal/models"
)

// Empirically derived intensity adjustments.
const (
	boosterIncr = 0.293
	boosterDecr = -0.293
	capsIncr    = 0.733
	negScalar   = -0.74

	normalizeAlpha = 15.0

	exclaimWeight   = 0.292
	exclaimMaxCount = 4
	questionWeight  = 0.18
	questionMax     = 0.96
)

var negations = toSet([]string{
	"aint", "arent", "cannot", "cant", "couldnt", "darent", "didnt", "doesnt",
	"ain't", "aren't", "can't", "couldn't", "daren't", "didn't", "doesn't",
	"dont", "hadnt", "hasnt", "havent", "isnt", "mightnt", "mustnt", "neither",
	"don't", "hadn't", "hasn't", "haven't", "isn't", "mightn't", "mustn't",
	"neednt", "needn't", "never", "none", "nope", "nor", "not", "nothing", "nowhere",
	"oughtnt", "shant", "shouldnt", "uhuh", "wasnt", "werent",
	"oughtn't", "shan't", "shouldn't", "uh-uh", "wasn't", "weren't",
	"without", "wont", "wouldnt", "won't", "wouldn't", "rarely", "seldom", "despite",
})

var boosters = func() map[string]float64 {
	m := make(map[string]float64)
	for _, w := range []string{
		"absolutely", "amazingly", "awfully", "completely", "considerable", "considerably",
		"decidedly", "deeply", "effing", "enormous", "enormously", "entirely", "especially",
		"exceptional", "exceptionally", "extreme", "extremely", "fabulously", "flipping",
		"flippin", "frackin", "fracking", "fricking", "frickin", "frigging", "friggin",
		"fully", "greatly", "hella", "highly", "hugely", "incredible", "incredibly",
		"intensely", "major", "majorly", "more", "most", "particularly", "purely", "quite",
		"really", "remarkably", "so", "substantially", "thoroughly", "total", "totally",
		"tremendous", "tremendously", "uber", "unbelievably", "unusually", "utter",
		"utterly", "very",
	} {
		m[w] = boosterIncr
	}
	for _, w := range []string{
		"almost", "barely", "hardly", "just enough", "kind of", "kinda", "kindof", "kind-of",
		"less", "little", "marginal", "marginally", "occasional", "occasionally", "partly",
		"scarce", "scarcely", "slight", "slightly", "somewhat", "sort of", "sorta", "sortof",
		"sort-of",
	} {
		m[w] = boosterDecr
	}
	return m
}()

// Multi-word expressions whose valence overrides the words they contain.
var idioms = map[string]float64{
	"the shit":          3,
	"the bomb":          3,
	"bad ass":           1.5,
	"badass":            1.5,
	"bus stop":          0.0,
	"yeah right":        -2,
	"kiss of death":     -1.5,
	"to die for":        3,
	"beating heart":     3.1,
	"broken heart":      -2.9,
	"cut the mustard":   2,
	"hand to mouth":     -2,
	"back handed":       -2,
	"blow smoke":        -2,
	"blowing smoke":     -2,
	"upper hand":        1,
	"break a leg":       2,
	"cooking with gas":  2,
	"in the black":      2,
	"in the red":        -2,
	"on the ball":       2,
	"under the weather": -2,
}

func toSet(words []string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Analyzer scores text with a lexicon and a fixed set of grammatical heuristics
// (negation, boosters, capitalization, contrastive "but", punctuation emphasis).
// An Analyzer is immutable and safe for concurrent use.
type Analyzer struct {
	lexicon Lexicon
}

// NewAnalyzer creates an analyzer over lex. A nil lexicon selects the builtin one.
func NewAnalyzer(lex Lexicon) *Analyzer {
	if lex == nil {
		lex = BuiltinLexicon()
	}
	return &Analyzer{lexicon: lex}
}

// PolarityScores returns the sentiment 4-tuple of text. Text with no tokens is fully neutral.
func (a *Analyzer) PolarityScores(text string) models.SentimentScore {
	words := tokenize(text)
	if len(words) == 0 {
		return models.SentimentScore{Neu: 1}
	}
	capDiff := allCapDifferential(words)

	sentiments := make([]float64, 0, len(words))
	for i, item := range words {
		lower := strings.ToLower(item)
		if _, ok := boosters[lower]; ok {
			sentiments = append(sentiments, 0)
			continue
		}
		if i < len(words)-1 && lower == "kind" && strings.ToLower(words[i+1]) == "of" {
			sentiments = append(sentiments, 0)
			continue
		}
		sentiments = append(sentiments, a.valence(i, item, words, capDiff))
	}

	sentiments = butCheck(words, sentiments)
	return scoreValence(sentiments, text)
}

func (a *Analyzer) valence(i int, item string, words []string, capDiff bool) float64 {
	lower := strings.ToLower(item)
	v, ok := a.lexicon.Valence(lower)
	if !ok {
		return 0
	}

	// "no" directly before another lexicon word acts as negation, not as its own valence.
	if lower == "no" && i != len(words)-1 {
		if _, next := a.lexicon.Valence(strings.ToLower(words[i+1])); next {
			v = 0
		}
	}
	if i > 0 && strings.ToLower(words[i-1]) == "no" ||
		i > 1 && strings.ToLower(words[i-2]) == "no" ||
		i > 2 && strings.ToLower(words[i-3]) == "no" && isOr(words[i-1]) {
		v = a.lexicon[lower] * negScalar
	}

	if isUpper(item) && capDiff {
		if v > 0 {
			v += capsIncr
		} else {
			v -= capsIncr
		}
	}

	for start := 0; start < 3; start++ {
		if i <= start {
			break
		}
		prev := words[i-(start+1)]
		if _, inLex := a.lexicon.Valence(strings.ToLower(prev)); inLex {
			continue
		}
		s := scalarIncDec(prev, v, capDiff)
		if start == 1 && s != 0 {
			s *= 0.95
		}
		if start == 2 && s != 0 {
			s *= 0.9
		}
		v += s
		v = negationCheck(v, words, start, i)
		if start == 2 {
			v = idiomCheck(v, words, i)
		}
	}

	return a.leastCheck(v, words, i)
}

func scalarIncDec(word string, v float64, capDiff bool) float64 {
	scalar, ok := boosters[strings.ToLower(word)]
	if !ok {
		return 0
	}
	if v < 0 {
		scalar = -scalar
	}
	if isUpper(word) && capDiff {
		if v > 0 {
			scalar += capsIncr
		} else {
			scalar -= capsIncr
		}
	}
	return scalar
}

func negationCheck(v float64, words []string, start, i int) float64 {
	lower := func(k int) string { return strings.ToLower(words[k]) }

	switch start {
	case 0:
		if negated(lower(i - 1)) {
			v *= negScalar
		}
	case 1:
		switch {
		case lower(i-2) == "never" && (lower(i-1) == "so" || lower(i-1) == "this"):
			v *= 1.25
		case lower(i-2) == "without" && lower(i-1) == "doubt":
		case negated(lower(i - 2)):
			v *= negScalar
		}
	case 2:
		switch {
		case lower(i-3) == "never" &&
			(lower(i-2) == "so" || lower(i-2) == "this" || lower(i-1) == "so" || lower(i-1) == "this"):
			v *= 1.25
		case lower(i-3) == "without" && (lower(i-2) == "doubt" || lower(i-1) == "doubt"):
		case negated(lower(i - 3)):
			v *= negScalar
		}
	}
	return v
}

func negated(word string) bool {
	if _, ok := negations[word]; ok {
		return true
	}
	return strings.Contains(word, "n't")
}

func idiomCheck(v float64, words []string, i int) float64 {
	w := func(k int) string { return strings.ToLower(words[k]) }

	onezero := w(i-1) + " " + w(i)
	twoonezero := w(i-2) + " " + w(i-1) + " " + w(i)
	twoone := w(i-2) + " " + w(i-1)
	threetwoone := w(i-3) + " " + w(i-2) + " " + w(i-1)
	threetwo := w(i-3) + " " + w(i-2)

	for _, seq := range []string{onezero, twoonezero, twoone, threetwoone, threetwo} {
		if iv, ok := idioms[seq]; ok {
			v = iv
			break
		}
	}

	if len(words)-1 > i {
		if iv, ok := idioms[w(i)+" "+w(i+1)]; ok {
			v = iv
		}
	}
	if len(words)-1 > i+1 {
		if iv, ok := idioms[w(i)+" "+w(i+1)+" "+w(i+2)]; ok {
			v = iv
		}
	}

	// Multi-word boosters such as "sort of" in front of the word.
	for _, seq := range []string{threetwoone, threetwo, twoone} {
		if b, ok := boosters[seq]; ok {
			v += b
		}
	}
	return v
}

func isOr(word string) bool {
	w := strings.ToLower(word)
	return w == "or" || w == "nor"
}

func (a *Analyzer) leastCheck(v float64, words []string, i int) float64 {
	w := func(k int) string { return strings.ToLower(words[k]) }

	if i > 1 {
		if _, inLex := a.lexicon.Valence(w(i - 1)); !inLex && w(i-1) == "least" {
			if w(i-2) != "at" && w(i-2) != "very" {
				v *= negScalar
			}
		}
	} else if i > 0 {
		if _, inLex := a.lexicon.Valence(w(i - 1)); !inLex && w(i-1) == "least" {
			v *= negScalar
		}
	}
	return v
}

// butCheck damps sentiment before a contrastive "but" and amplifies sentiment after it.
func butCheck(words []string, sentiments []float64) []float64 {
	bi := -1
	for k, word := range words {
		if strings.ToLower(word) == "but" {
			bi = k
			break
		}
	}
	if bi < 0 {
		return sentiments
	}
	for k := range sentiments {
		switch {
		case k < bi:
			sentiments[k] *= 0.5
		case k > bi:
			sentiments[k] *= 1.5
		}
	}
	return sentiments
}

func scoreValence(sentiments []float64, text string) models.SentimentScore {
	var sum float64
	for _, s := range sentiments {
		sum += s
	}
	amp := punctuationEmphasis(text)

	var compound float64
	if sum > 0 {
		compound = normalize(sum + amp)
	} else if sum < 0 {
		compound = normalize(sum - amp)
	}

	posSum, negSum, neuCount := sift(sentiments)
	if posSum > math.Abs(negSum) {
		posSum += amp
	} else if posSum < math.Abs(negSum) {
		negSum -= amp
	}

	total := posSum + math.Abs(negSum) + neuCount
	if total == 0 {
		return models.SentimentScore{Neu: 1}
	}
	return models.SentimentScore{
		Compound: compound,
		Neg:      math.Abs(negSum / total),
		Neu:      math.Abs(neuCount / total),
		Pos:      math.Abs(posSum / total),
	}
}

func sift(sentiments []float64) (posSum, negSum, neuCount float64) {
	for _, s := range sentiments {
		switch {
		case s > 0:
			posSum += s + 1
		case s < 0:
			negSum += s - 1
		default:
			neuCount++
		}
	}
	return posSum, negSum, neuCount
}

func punctuationEmphasis(text string) float64 {
	ep := strings.Count(text, "!")
	if ep > exclaimMaxCount {
		ep = exclaimMaxCount
	}
	amp := float64(ep) * exclaimWeight

	qm := strings.Count(text, "?")
	if qm > 1 {
		if qm <= 3 {
			amp += float64(qm) * questionWeight
		} else {
			amp += questionMax
		}
	}
	return amp
}

// normalize maps an unbounded valence sum into [-1, 1].
func normalize(score float64) float64 {
	n := score / math.Sqrt(score*score+normalizeAlpha)
	switch {
	case n < -1:
		return -1
	case n > 1:
		return 1
	}
	return n
}

func allCapDifferential(words []string) bool {
	upper := 0
	for _, w := range words {
		if isUpper(w) {
			upper++
		}
	}
	return upper > 0 && upper < len(words)
}

// isUpper reports whether s has at least one cased rune and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// tokenize splits on whitespace and strips surrounding punctuation from words,
// leaving short tokens such as emoticons (":)", ":D") untouched.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		stripped := strings.TrimFunc(f, isASCIIPunct)
		if utf8.RuneCountInString(stripped) <= 2 {
			words = append(words, f)
			continue
		}
		words = append(words, stripped)
	}
	return words
}

func isASCIIPunct(r rune) bool {
	return r < utf8.RuneSelf && unicode.IsPunct(r) || strings.ContainsRune("$+<=>^`|~", r)
}
