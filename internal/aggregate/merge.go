// Package aggregate consolidates the capture files of one day into a single daily corpus.
package aggregate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rewired-gh/sentiday/internal/capture"
	apperrors "github.com/rewired-gh/sentiday/internal/errors"
	"github.com/rewired-gh/sentiday/internal/models"
	"github.com/rewired-gh/sentiday/internal/storage"
)

// DayPath returns the consolidated corpus path of a day.
func DayPath(destDir, dayKey string) string {
	return filepath.Join(destDir, dayKey+".csv")
}

// Merge concatenates, in order, every file whose day key equals dayKey into <destDir>/<dayKey>.csv.
//
// The first file that contributes any line is copied whole, header included; later files lose
// their first line. Each source is newline-terminated before the next one is appended.
// The destination is replaced atomically, so a rerun over unchanged inputs yields identical
// bytes and a failing source leaves the previous destination untouched.
func Merge(dayKey string, files []models.CaptureFile, destDir string) error {
	selected := capture.FilesForDay(files, dayKey)
	if len(selected) == 0 {
		return apperrors.NotFound(fmt.Sprintf("no capture files for day %s", dayKey), nil).WithContext("day", dayKey)
	}

	return storage.WriteFileAtomic(DayPath(destDir, dayKey), func(w io.Writer) error {
		headerWritten := false
		for _, f := range selected {
			wrote, err := appendFile(w, f.Path, !headerWritten)
			if err != nil {
				return fmt.Errorf("failed to append %s: %w", f.Name, err)
			}
			if wrote {
				headerWritten = true
			}
		}
		return nil
	})
}

// appendFile copies path into w, dropping its first line unless keepFirst is set.
// It reports whether any line was written.
func appendFile(w io.Writer, path string, keepFirst bool) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, apperrors.NotFound(fmt.Sprintf("capture file %s", path), err).WithContext("path", path)
		}
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	first := true
	wrote := false
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			skip := first && !keepFirst
			first = false
			if !skip {
				if line[len(line)-1] != '\n' {
					line += "\n"
				}
				if _, werr := io.WriteString(w, line); werr != nil {
					return wrote, werr
				}
				wrote = true
			}
		}
		if errors.Is(err, io.EOF) {
			return wrote, nil
		}
		if err != nil {
			return wrote, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
}
