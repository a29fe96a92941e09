package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rewired-gh/sentiday/internal/capture"
	"github.com/rewired-gh/sentiday/internal/logger"
	"github.com/rewired-gh/sentiday/internal/metrics"
	"github.com/rewired-gh/sentiday/internal/models"
	"github.com/rewired-gh/sentiday/internal/sentiment"
	"github.com/rewired-gh/sentiday/internal/storage"
	"github.com/rewired-gh/sentiday/internal/summary"
)

// Input stages of CompileDailySentiments.
const (
	// StageRaw scores capture dumps; the influence filter applies.
	StageRaw = "raw"
	// StageDaily scores consolidated day corpora; the influence filter is off.
	StageDaily = "daily"
)

// CompileRequest names the corpora of one entity to score and where the scores go.
type CompileRequest struct {
	Entity    string
	Keyword   string
	CorpusDir string
	ScoresDir string
	Stage     string
}

// Scorer turns corpus files into score files.
type Scorer struct {
	store    *storage.Store
	analyzer *sentiment.Analyzer
	locator  *capture.Locator
	base     sentiment.Options
	workers  int
}

// NewScorer creates a scorer. base carries the keyword-filter switch and influence threshold;
// the keyword and influence-filter switch are set per request.
func NewScorer(store *storage.Store, analyzer *sentiment.Analyzer, locator *capture.Locator, base sentiment.Options, workers int) *Scorer {
	if workers < 1 {
		workers = 1
	}
	return &Scorer{store: store, analyzer: analyzer, locator: locator, base: base, workers: workers}
}

func (s *Scorer) options(req CompileRequest) sentiment.Options {
	opts := s.base
	opts.Keyword = req.Keyword
	opts.InfluenceFilter = req.Stage == StageRaw
	return opts
}

// CompileDailySentiments scores every corpus file of req.CorpusDir into
// <ScoresDir>/<Stage>/<Entity>/<name>.csv, one row per surviving record in corpus order.
//
// A missing corpus directory fails the call. A file that cannot be read or written is recorded
// in report and skipped. A file left with no records still gets its (header-only) score file,
// and its empty day is recorded in report. The returned summaries cover every day with scores,
// in filename order.
func (s *Scorer) CompileDailySentiments(ctx context.Context, req CompileRequest, report *models.RunReport) ([]models.DailySummary, error) {
	if req.Stage != StageRaw && req.Stage != StageDaily {
		return nil, fmt.Errorf("unknown input stage %q", req.Stage)
	}
	files, err := s.locator.ListFiles(req.CorpusDir)
	if err != nil {
		return nil, err
	}
	opts := s.options(req)
	logger.Info("Scoring %d %s corpus files for %s", len(files), req.Stage, req.Entity)

	results := make([]*models.DailySummary, len(files))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			sm, err := s.scoreFile(req, opts, file, report)
			if err != nil {
				logger.Warn("Failed to score %s for %s: %v", file.Name, req.Entity, err)
				report.Fail(req.Entity, models.StageScore, file.Name, err)
				metrics.RecordFailure(models.StageScore, err)
				return nil
			}
			results[i] = sm
			return nil
		})
	}
	_ = g.Wait()

	summaries := make([]models.DailySummary, 0, len(files))
	for _, sm := range results {
		if sm != nil {
			summaries = append(summaries, *sm)
		}
	}
	return summaries, ctx.Err()
}

// scoreFile returns a nil summary without error when the file is scored but empty.
func (s *Scorer) scoreFile(req CompileRequest, opts sentiment.Options, file models.CaptureFile, report *models.RunReport) (*models.DailySummary, error) {
	records, schema, stats, err := s.store.ReadCorpus(file.Path)
	if err != nil {
		return nil, err
	}
	if stats.MissingText > 0 || stats.BadInfluence > 0 {
		logger.Warn("%s: %d rows without text, %d unparseable influence values", file.Name, stats.MissingText, stats.BadInfluence)
	}
	if opts.InfluenceFilter && !schema.HasInfluence {
		logger.Warn("%s has no influence column; all records fall below the influence threshold", file.Name)
	}

	scores, fstats := s.analyzer.ScoreWithStats(records, opts)
	metrics.RecordsDroppedTotal.WithLabelValues("keyword").Add(float64(fstats.DroppedKeyword))
	metrics.RecordsDroppedTotal.WithLabelValues("influence").Add(float64(fstats.DroppedInfluence))

	path := storage.ScorePath(req.ScoresDir, req.Stage, req.Entity, file.Name)
	if err := s.store.WriteScores(path, scores); err != nil {
		return nil, err
	}
	report.AddScored(len(scores))
	metrics.RecordsScoredTotal.WithLabelValues(req.Entity, req.Stage).Add(float64(len(scores)))
	metrics.RecordsForeignLangTotal.WithLabelValues(req.Entity).Add(float64(fstats.ForeignLang))
	if fstats.ForeignLang > 0 {
		logger.Info("%s: %d of %d kept records are not English and were scored untranslated",
			file.Name, fstats.ForeignLang, fstats.Kept)
	}
	logger.Debug("Scored %s: %d of %d records kept", file.Name, fstats.Kept, fstats.Input)

	sm, err := summary.Summarize(file.DayKey, scores)
	if err != nil {
		report.Fail(req.Entity, models.StageScore, file.Name, err)
		metrics.RecordFailure(models.StageScore, err)
		return nil, nil
	}
	return &sm, nil
}
