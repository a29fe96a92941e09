package storage

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
	"github.com/rewired-gh/sentiday/internal/models"
)

// CorpusStats counts the tolerated defects met while reading a corpus.
type CorpusStats struct {
	Rows         int
	MissingText  int
	BadInfluence int
}

// CorpusSchema describes which optional columns a corpus file carries.
type CorpusSchema struct {
	Headerless   bool
	HasInfluence bool
	HasLang      bool
}

// ReadCorpus reads a raw or consolidated corpus file.
//
// The header must name the text column. A file whose first line is a single field other than
// the text column name is read as a headerless single-column corpus. Rows too short to carry
// the text column get an empty text (counted in MissingText); unparseable influence values
// are dropped (counted in BadInfluence).
func (s *Store) ReadCorpus(path string) ([]models.TextRecord, CorpusSchema, CorpusStats, error) {
	var stats CorpusStats
	var schema CorpusSchema

	f, r, err := openCSV(path)
	if err != nil {
		return nil, schema, stats, err
	}
	defer f.Close()

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []models.TextRecord{}, schema, stats, nil
	}
	if err != nil {
		return nil, schema, stats, parseErr(path, 1, err)
	}

	idx := headerIndex(header)
	textIdx, ok := idx[s.columns.Text]
	influenceIdx, hasInfluence := idx[s.columns.Influence]
	langIdx, hasLang := idx[s.columns.Lang]

	var records []models.TextRecord
	if !ok {
		if len(header) != 1 {
			return nil, schema, stats, apperrors.MalformedRecord(
				fmt.Sprintf("corpus %s has no %q column", path, s.columns.Text)).
				WithContext("path", path)
		}
		schema.Headerless = true
		textIdx = 0
		hasInfluence, hasLang = false, false
		records = append(records, models.TextRecord{Text: header[0]})
		stats.Rows++
	}
	schema.HasInfluence = hasInfluence
	schema.HasLang = hasLang

	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, schema, stats, parseErr(path, line, err)
		}
		stats.Rows++

		var rec models.TextRecord
		text, ok := field(row, textIdx)
		if !ok {
			stats.MissingText++
		}
		rec.Text = text

		if hasInfluence {
			if raw, ok := field(row, influenceIdx); ok {
				if v, ok := parseInfluence(raw); ok {
					rec.Influence = &v
				} else {
					stats.BadInfluence++
				}
			} else {
				stats.BadInfluence++
			}
		}
		if hasLang {
			rec.Lang, _ = field(row, langIdx)
		}

		records = append(records, rec)
	}

	if records == nil {
		records = []models.TextRecord{}
	}
	return records, schema, stats, nil
}

// parseInfluence accepts integer counts and the float rendering pandas produces ("1234.0").
func parseInfluence(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v, true
	}
	fv, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(fv) || math.IsInf(fv, 0) {
		return 0, false
	}
	return int(fv), true
}
