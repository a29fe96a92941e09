package sentiment

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
)

//go:embed lexicon.txt
var builtinLexicon string

// Lexicon maps a lower-cased token to its mean valence.
type Lexicon map[string]float64

// Valence returns the valence of a lower-cased token.
func (l Lexicon) Valence(token string) (float64, bool) {
	v, ok := l[token]
	return v, ok
}

// Merge copies every entry of overlay into l, replacing existing valences.
func (l Lexicon) Merge(overlay Lexicon) {
	for token, v := range overlay {
		l[token] = v
	}
}

// BuiltinLexicon returns a fresh copy of the lexicon compiled into the binary.
func BuiltinLexicon() Lexicon {
	lex, err := ParseLexicon(strings.NewReader(builtinLexicon))
	if err != nil {
		panic(fmt.Sprintf("sentiment: builtin lexicon is invalid: %v", err))
	}
	return lex
}

// LoadLexicon reads a lexicon file in the tab-separated vader_lexicon.txt format.
func LoadLexicon(path string) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NotFound(fmt.Sprintf("lexicon %s", path), err).WithContext("path", path)
	}
	defer f.Close()

	lex, err := ParseLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lexicon %s: %w", path, err)
	}
	return lex, nil
}

// ParseLexicon parses "token<TAB>valence[<TAB>...]" lines. Blank lines and lines starting
// with "# " are skipped; trailing columns (std, raw ratings) are ignored.
func ParseLexicon(r io.Reader) (Lexicon, error) {
	lex := make(Lexicon)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "# ") {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return nil, apperrors.MalformedRecord(fmt.Sprintf("lexicon line %d: expected token and valence", line))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, apperrors.MalformedRecord(fmt.Sprintf("lexicon line %d: invalid valence %q", line, fields[1]))
		}
		lex[strings.ToLower(fields[0])] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	if len(lex) == 0 {
		return nil, apperrors.EmptyInput("lexicon has no entries")
	}
	return lex, nil
}
