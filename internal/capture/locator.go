// Package capture discovers capture files on disk and extracts their day keys.
package capture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
	"github.com/rewired-gh/sentiday/internal/models"
)

// defaultPattern matches an 8-digit run that is not part of a longer numeric token,
// e.g. "Bitcoin_20180301-120000.csv" or "20180301.csv".
var defaultPattern = regexp.MustCompile(`(?:^|[^0-9])([0-9]{8})(?:[^0-9]|$)`)

// Locator finds capture files whose names carry a day key.
type Locator struct {
	pattern *regexp.Regexp
}

// NewLocator creates a locator. An empty pattern selects the default digit-bounded match;
// a custom pattern must contain exactly one capture group yielding the day key.
func NewLocator(pattern string) (*Locator, error) {
	if pattern == "" {
		return &Locator{pattern: defaultPattern}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid day key pattern: %w", err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("day key pattern %q must contain exactly one capture group", pattern)
	}
	return &Locator{pattern: re}, nil
}

// ExtractDayKey returns the day key carried by a filename.
func (l *Locator) ExtractDayKey(name string) (string, bool) {
	m := l.pattern.FindStringSubmatch(name)
	if len(m) < 2 || !models.IsDayKey(m[1]) {
		return "", false
	}
	return m[1], true
}

// ListFiles returns the regular, non-hidden files of sourceDir that carry a day key, sorted by name.
func (l *Locator) ListFiles(sourceDir string) ([]models.CaptureFile, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFound(fmt.Sprintf("source directory %s does not exist", sourceDir), err).
				WithContext("dir", sourceDir)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", sourceDir, err)
	}

	var files []models.CaptureFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Hidden files include in-flight temp files of an atomic write.
		if strings.HasPrefix(name, ".") {
			continue
		}
		dayKey, ok := l.ExtractDayKey(name)
		if !ok {
			continue
		}
		files = append(files, models.CaptureFile{
			Path:   filepath.Join(sourceDir, name),
			Name:   name,
			DayKey: dayKey,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// DistinctDayKeys returns every unique day key in first-seen order.
func DistinctDayKeys(files []models.CaptureFile) []string {
	seen := make(map[string]bool)
	var days []string
	for _, f := range files {
		if seen[f.DayKey] {
			continue
		}
		seen[f.DayKey] = true
		days = append(days, f.DayKey)
	}
	return days
}

// FilesForDay returns the files whose day key equals dayKey, preserving order.
func FilesForDay(files []models.CaptureFile, dayKey string) []models.CaptureFile {
	var out []models.CaptureFile
	for _, f := range files {
		if f.DayKey == dayKey {
			out = append(out, f)
		}
	}
	return out
}
