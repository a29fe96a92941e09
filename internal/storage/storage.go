// Package storage provides flat-file persistence for corpora, score files, prices and analysis series.
package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
)

// DateLayout is the calendar-date layout used in series files.
const DateLayout = "2006-01-02"

// utf8BOM is stripped from the first header cell; spreadsheet exports often carry it.
const utf8BOM = "\ufeff"

// Columns names the corpus columns the pipeline reads.
type Columns struct {
	Text      string
	Influence string
	Lang      string
}

// DefaultColumns returns the column names of the capture dumps.
func DefaultColumns() Columns {
	return Columns{
		Text:      "text",
		Influence: "user_followers_count",
		Lang:      "lang",
	}
}

// Store reads and writes the pipeline's tabular files.
type Store struct {
	columns Columns
}

// New creates a store. Empty column names fall back to DefaultColumns.
func New(columns Columns) *Store {
	def := DefaultColumns()
	if columns.Text == "" {
		columns.Text = def.Text
	}
	if columns.Influence == "" {
		columns.Influence = def.Influence
	}
	if columns.Lang == "" {
		columns.Lang = def.Lang
	}
	return &Store{columns: columns}
}

// WriteFileAtomic builds path's new content through write into a temporary file in the
// same directory and renames it over path. The previous content of path survives any failure.
// Errors returned by write are passed through unchanged.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.IOWrite(fmt.Sprintf("failed to create directory %s", dir), err).WithContext("path", path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.IOWrite(fmt.Sprintf("failed to create temp file in %s", dir), err).WithContext("path", path)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return apperrors.IOWrite(fmt.Sprintf("failed to write %s", path), err).WithContext("path", path)
	}
	if err := tmp.Sync(); err != nil {
		return apperrors.IOWrite(fmt.Sprintf("failed to sync %s", path), err).WithContext("path", path)
	}
	// CreateTemp opens the file 0600; output files are world-readable like any created file.
	if err := tmp.Chmod(0o644); err != nil {
		return apperrors.IOWrite(fmt.Sprintf("failed to set mode of %s", path), err).WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.IOWrite(fmt.Sprintf("failed to close %s", path), err).WithContext("path", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.IOWrite(fmt.Sprintf("failed to replace %s", path), err).WithContext("path", path)
	}
	return nil
}

// writeCSV atomically writes a header plus records.
func writeCSV(path string, header []string, records [][]string) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return apperrors.IOWrite("failed to write header", err).WithContext("path", path)
		}
		for i, record := range records {
			if err := cw.Write(record); err != nil {
				return apperrors.IOWrite(fmt.Sprintf("failed to write record %d", i), err).WithContext("path", path)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return apperrors.IOWrite("failed to flush records", err).WithContext("path", path)
		}
		return nil
	})
}

// openCSV opens path for tolerant CSV reading. The caller closes the returned file.
func openCSV(path string) (*os.File, *csv.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, apperrors.NotFound(fmt.Sprintf("file %s does not exist", path), err).WithContext("path", path)
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return f, r, nil
}

// headerIndex maps trimmed column names to their positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

// field returns row[i] or "" when the row is too short.
func field(row []string, i int) (string, bool) {
	if i < 0 || i >= len(row) {
		return "", false
	}
	return row[i], true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseErr(path string, line int, err error) error {
	return apperrors.MalformedRecord(fmt.Sprintf("failed to parse %s line %d: %v", path, line, err)).
		WithContext("path", path).
		WithContext("line", line)
}
