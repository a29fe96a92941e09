package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rewired-gh/sentiday/internal/capture"
	"github.com/rewired-gh/sentiday/internal/logger"
	"github.com/rewired-gh/sentiday/internal/metrics"
	"github.com/rewired-gh/sentiday/internal/models"
)

// Aggregator merges every capture day of a source directory.
type Aggregator struct {
	locator *capture.Locator
	workers int
}

// New creates an aggregator running up to workers merges at once.
func New(locator *capture.Locator, workers int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{locator: locator, workers: workers}
}

// Run merges each distinct day of sourceDir into destDir. A missing sourceDir fails the run;
// a failed day is recorded in report and the remaining days still merge.
func (a *Aggregator) Run(ctx context.Context, entity, sourceDir, destDir string, report *models.RunReport) error {
	files, err := a.locator.ListFiles(sourceDir)
	if err != nil {
		return err
	}
	days := capture.DistinctDayKeys(files)
	metrics.CaptureFilesTotal.WithLabelValues(entity).Add(float64(len(files)))
	logger.Info("Aggregating %d capture files into %d days for %s", len(files), len(days), entity)

	var g errgroup.Group
	g.SetLimit(a.workers)
	for _, day := range days {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := Merge(day, files, destDir); err != nil {
				logger.Warn("Failed to merge day %s for %s: %v", day, entity, err)
				report.Fail(entity, models.StageAggregate, day, err)
				metrics.RecordFailure(models.StageAggregate, err)
				return nil
			}
			logger.Debug("Merged day %s for %s", day, entity)
			report.AddMerged()
			metrics.DaysMergedTotal.WithLabelValues(entity).Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
