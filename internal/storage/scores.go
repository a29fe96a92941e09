package storage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rewired-gh/sentiday/internal/capture"
	apperrors "github.com/rewired-gh/sentiday/internal/errors"
	"github.com/rewired-gh/sentiday/internal/models"
)

// ScoreHeader is the fixed header of a daily score file.
var ScoreHeader = []string{"compound", "neg", "neu", "pos"}

// WriteScores writes one score row per record, in order.
func (s *Store) WriteScores(path string, scores []models.SentimentScore) error {
	rows := make([][]string, 0, len(scores))
	for _, sc := range scores {
		rows = append(rows, []string{
			formatFloat(sc.Compound),
			formatFloat(sc.Neg),
			formatFloat(sc.Neu),
			formatFloat(sc.Pos),
		})
	}
	return writeCSV(path, ScoreHeader, rows)
}

// ReadScores reads a score file. Columns are matched by name.
func (s *Store) ReadScores(path string) ([]models.SentimentScore, error) {
	f, r, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.MalformedRecord(fmt.Sprintf("score file %s is empty", path)).WithContext("path", path)
	}
	if err != nil {
		return nil, parseErr(path, 1, err)
	}

	idx := headerIndex(header)
	cols := make([]int, len(ScoreHeader))
	for i, name := range ScoreHeader {
		c, ok := idx[name]
		if !ok {
			return nil, apperrors.MalformedRecord(fmt.Sprintf("score file %s has no %q column", path, name)).
				WithContext("path", path)
		}
		cols[i] = c
	}

	scores := []models.SentimentScore{}
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, parseErr(path, line, err)
		}

		var vals [4]float64
		for i, c := range cols {
			raw, ok := field(row, c)
			if !ok {
				return nil, parseErr(path, line, fmt.Errorf("missing %q", ScoreHeader[i]))
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, parseErr(path, line, err)
			}
			vals[i] = v
		}
		scores = append(scores, models.SentimentScore{
			Compound: vals[0],
			Neg:      vals[1],
			Neu:      vals[2],
			Pos:      vals[3],
		})
	}
	return scores, nil
}

// FileError is a score file that could not be loaded.
type FileError struct {
	File models.CaptureFile
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("failed to load scores for %s: %v", e.File.Name, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// LoadScoreSets reads every score file in dir that carries a day key and groups the
// scores by day key. Files sharing a day key are concatenated in filename order.
// The result is sorted by day key. A file that fails to parse is skipped and reported
// in the returned FileErrors; only an unreadable directory is an error.
func (s *Store) LoadScoreSets(dir string, locator *capture.Locator) ([]models.DailyScoreSet, []FileError, error) {
	files, err := locator.ListFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	var failed []FileError
	byDay := make(map[string]*models.DailyScoreSet)
	for _, file := range files {
		scores, err := s.ReadScores(file.Path)
		if err != nil {
			failed = append(failed, FileError{File: file, Err: err})
			continue
		}
		set, ok := byDay[file.DayKey]
		if !ok {
			set = &models.DailyScoreSet{DayKey: file.DayKey, Scores: []models.SentimentScore{}}
			byDay[file.DayKey] = set
		}
		set.Scores = append(set.Scores, scores...)
	}

	sets := make([]models.DailyScoreSet, 0, len(byDay))
	for _, set := range byDay {
		sets = append(sets, *set)
	}
	sort.Slice(sets, func(i, j int) bool {
		return sets[i].DayKey < sets[j].DayKey
	})
	return sets, failed, nil
}

// ScoreDir returns the directory holding an entity's score files for one input stage.
func ScoreDir(scoresDir, stage, entity string) string {
	return filepath.Join(scoresDir, stage, entity)
}

// ScorePath returns where the scores of corpusName are written for an entity and stage.
func ScorePath(scoresDir, stage, entity, corpusName string) string {
	base := corpusName
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return filepath.Join(ScoreDir(scoresDir, stage, entity), base+".csv")
}
