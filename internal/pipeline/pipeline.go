// Package pipeline runs the batch stages: capture aggregation, sentiment scoring and series
// extraction, for every configured entity.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/sentiday/internal/aggregate"
	"github.com/rewired-gh/sentiday/internal/capture"
	"github.com/rewired-gh/sentiday/internal/config"
	"github.com/rewired-gh/sentiday/internal/logger"
	"github.com/rewired-gh/sentiday/internal/metrics"
	"github.com/rewired-gh/sentiday/internal/models"
	"github.com/rewired-gh/sentiday/internal/sentiment"
	"github.com/rewired-gh/sentiday/internal/series"
	"github.com/rewired-gh/sentiday/internal/storage"
	"github.com/rewired-gh/sentiday/internal/summary"
)

// Run targets accepted by Pipeline.Run.
const (
	TargetAggregate = "aggregate"
	TargetScore     = "score"
	TargetScoreRaw  = "score-raw"
	TargetSeries    = "series"
	TargetAll       = "all"
)

// Series file names under <series_dir>/<entity>/.
const (
	PolarityFile  = "polarity.csv"
	PriceDiffFile = "price_diff.csv"
	SummaryFile   = "summary.csv"
	DailyFile     = "daily.csv"
)

// Notifier receives the outcome of a run.
type Notifier interface {
	SendRunReport(ctx context.Context, report *models.RunReport) error
	SendError(ctx context.Context, err error) error
}

// Pipeline wires the stages to the configured directory layout.
type Pipeline struct {
	cfg        *config.Config
	store      *storage.Store
	locator    *capture.Locator
	aggregator *aggregate.Aggregator
	scorer     *Scorer
	notifier   Notifier
}

// New builds a pipeline from a validated config. notifier may be nil.
func New(cfg *config.Config, notifier Notifier) (*Pipeline, error) {
	locator, err := capture.NewLocator(cfg.Pipeline.DayKeyPattern)
	if err != nil {
		return nil, err
	}

	lexicon := sentiment.BuiltinLexicon()
	if cfg.Sentiment.LexiconPath != "" {
		if lexicon, err = sentiment.LoadLexicon(cfg.Sentiment.LexiconPath); err != nil {
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
	}
	for _, path := range cfg.Sentiment.LexiconOverlays {
		overlay, err := sentiment.LoadLexicon(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicon overlay: %w", err)
		}
		lexicon.Merge(overlay)
		logger.Info("Applied lexicon overlay %s (%d entries)", path, len(overlay))
	}
	logger.Info("Loaded sentiment lexicon with %d entries", len(lexicon))

	store := storage.New(storage.Columns{
		Text:      cfg.Sentiment.TextColumn,
		Influence: cfg.Sentiment.InfluenceColumn,
		Lang:      cfg.Sentiment.LangColumn,
	})
	base := sentiment.Options{
		KeywordFilter:      cfg.Sentiment.KeywordFilter,
		InfluenceThreshold: cfg.Sentiment.InfluenceThreshold,
	}

	return &Pipeline{
		cfg:        cfg,
		store:      store,
		locator:    locator,
		aggregator: aggregate.New(locator, cfg.Pipeline.Workers),
		scorer:     NewScorer(store, sentiment.NewAnalyzer(lexicon), locator, base, cfg.Pipeline.Workers),
		notifier:   notifier,
	}, nil
}

// Run executes target for every entity and returns the run report.
//
// Unit failures (a day, a file) are only recorded in the report. An entity whose source
// directory is missing is skipped for the rest of the run; the returned error then joins
// every such entity error. Cancellation of ctx stops scheduling new units.
func (p *Pipeline) Run(ctx context.Context, target string) (*models.RunReport, error) {
	steps, err := stepsFor(target)
	if err != nil {
		return nil, err
	}

	report := models.NewRunReport(uuid.NewString())
	log := logger.With("run_id", report.RunID)
	log.Infof("Starting %s run for %d entities", target, len(p.cfg.Pipeline.Entities))

	var fatal []error
	for _, entity := range p.cfg.Pipeline.Entities {
		for _, step := range steps {
			if ctx.Err() != nil {
				break
			}
			start := time.Now()
			err := p.runStep(ctx, step, entity, report)
			metrics.StageDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			log.Errorf("Stage %s failed for %s: %v", step, entity.Name, err)
			report.Fail(entity.Name, stageOf(step), entity.Name, err)
			metrics.RecordFailure(stageOf(step), err)
			fatal = append(fatal, fmt.Errorf("%s %s: %w", entity.Name, step, err))
			break
		}
	}

	report.Finish()
	metrics.LastRunTimestamp.SetToCurrentTime()
	log.Infof("Run finished in %s: %d days merged, %d files scored (%d records), %d series written, %d failures",
		report.Duration().Round(time.Millisecond), report.DaysMerged, report.FilesScored,
		report.RecordsScored, report.SeriesWritten, len(report.FailedUnits()))

	runErr := errors.Join(fatal...)
	if runErr == nil {
		runErr = ctx.Err()
	}
	p.notify(ctx, report, runErr)
	return report, runErr
}

func (p *Pipeline) notify(ctx context.Context, report *models.RunReport, runErr error) {
	if p.notifier == nil {
		return
	}
	// The report still goes out when the run itself was cancelled.
	ctx = context.WithoutCancel(ctx)
	if runErr != nil {
		if err := p.notifier.SendError(ctx, runErr); err != nil {
			logger.Warn("Failed to send error notification: %v", err)
		}
	}
	if err := p.notifier.SendRunReport(ctx, report); err != nil {
		logger.Warn("Failed to send run report: %v", err)
	}
}

func stepsFor(target string) ([]string, error) {
	switch target {
	case TargetAggregate, TargetScore, TargetScoreRaw, TargetSeries:
		return []string{target}, nil
	case TargetAll, "":
		return []string{TargetAggregate, TargetScore, TargetSeries}, nil
	}
	return nil, fmt.Errorf("unknown stage %q", target)
}

func stageOf(step string) string {
	switch step {
	case TargetAggregate:
		return models.StageAggregate
	case TargetSeries:
		return models.StageSeries
	}
	return models.StageScore
}

func (p *Pipeline) runStep(ctx context.Context, step string, entity config.EntityConfig, report *models.RunReport) error {
	pc := p.cfg.Pipeline
	switch step {
	case TargetAggregate:
		return p.aggregator.Run(ctx, entity.Name,
			filepath.Join(pc.DumpsDir, entity.Name), filepath.Join(pc.DailyDir, entity.Name), report)
	case TargetScore:
		_, err := p.scorer.CompileDailySentiments(ctx, CompileRequest{
			Entity:    entity.Name,
			Keyword:   entity.SearchKeyword(),
			CorpusDir: filepath.Join(pc.DailyDir, entity.Name),
			ScoresDir: pc.ScoresDir,
			Stage:     StageDaily,
		}, report)
		return err
	case TargetScoreRaw:
		_, err := p.scorer.CompileDailySentiments(ctx, CompileRequest{
			Entity:    entity.Name,
			Keyword:   entity.SearchKeyword(),
			CorpusDir: filepath.Join(pc.DumpsDir, entity.Name),
			ScoresDir: pc.ScoresDir,
			Stage:     StageRaw,
		}, report)
		return err
	case TargetSeries:
		return p.writeSeries(entity.Name, report)
	}
	return fmt.Errorf("unknown stage %q", step)
}

// writeSeries derives the analysis series of one entity from its daily score files.
func (p *Pipeline) writeSeries(entity string, report *models.RunReport) error {
	pc := p.cfg.Pipeline
	sets, failed, err := p.store.LoadScoreSets(storage.ScoreDir(pc.ScoresDir, StageDaily, entity), p.locator)
	if err != nil {
		return err
	}
	for _, fe := range failed {
		logger.Warn("Skipping score file %s for %s: %v", fe.File.Name, entity, fe.Err)
		report.Fail(entity, models.StageSeries, fe.File.Name, fe.Err)
		metrics.RecordFailure(models.StageSeries, fe.Err)
	}
	outDir := filepath.Join(pc.SeriesDir, entity)

	polarity, err := series.DerivePolaritySets(sets)
	if err != nil {
		return err
	}
	p.writeUnit(report, entity, outDir, PolarityFile, func(path string) error {
		return p.store.WritePolarity(path, polarity)
	})

	summaries := make([]models.DailySummary, 0, len(sets))
	daily := make([]models.PolarityPoint, 0, len(sets))
	for _, set := range sets {
		sm, err := summary.Summarize(set.DayKey, set.Scores)
		if err != nil {
			report.Fail(entity, models.StageSeries, set.DayKey, err)
			metrics.RecordFailure(models.StageSeries, err)
			continue
		}
		summaries = append(summaries, sm)
		point, err := series.DailyPolarity(set)
		if err != nil {
			return err
		}
		daily = append(daily, point)
	}
	p.writeUnit(report, entity, outDir, SummaryFile, func(path string) error {
		return p.store.WriteSummaries(path, summaries)
	})

	if pc.PricesDir == "" {
		return nil
	}
	pricePath := filepath.Join(pc.PricesDir, entity+".csv")
	if _, err := os.Stat(pricePath); errors.Is(err, fs.ErrNotExist) {
		logger.Info("No price file for %s at %s, skipping price series", entity, pricePath)
		return nil
	}
	rows, err := p.store.ReadPrices(pricePath)
	if err != nil {
		report.Fail(entity, models.StageSeries, filepath.Base(pricePath), err)
		metrics.RecordFailure(models.StageSeries, err)
		return nil
	}
	diffs := series.DerivePriceDiff(rows)
	p.writeUnit(report, entity, outDir, PriceDiffFile, func(path string) error {
		return p.store.WritePriceDiff(path, diffs)
	})

	joined := series.JoinDaily(daily, diffs)
	p.writeUnit(report, entity, outDir, DailyFile, func(path string) error {
		return p.store.WriteDailySeries(path, joined)
	})
	return nil
}

func (p *Pipeline) writeUnit(report *models.RunReport, entity, outDir, name string, write func(path string) error) {
	if err := write(filepath.Join(outDir, name)); err != nil {
		logger.Warn("Failed to write %s for %s: %v", name, entity, err)
		report.Fail(entity, models.StageSeries, name, err)
		metrics.RecordFailure(models.StageSeries, err)
		return
	}
	report.AddSeries()
}
