package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/sentiday/internal/config"
	apperrors "github.com/rewired-gh/sentiday/internal/errors"
	"github.com/rewired-gh/sentiday/internal/models"
)

const corpusHeader = "text,user_followers_count,lang\n"

type fakeNotifier struct {
	mu      sync.Mutex
	reports []*models.RunReport
	errs    []error
}

func (f *fakeNotifier) SendRunReport(_ context.Context, report *models.RunReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeNotifier) SendError(_ context.Context, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
	return nil
}

func testConfig(root string, entities ...config.EntityConfig) *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			Entities:  entities,
			DumpsDir:  filepath.Join(root, "dumps"),
			DailyDir:  filepath.Join(root, "daily"),
			ScoresDir: filepath.Join(root, "vader"),
			PricesDir: filepath.Join(root, "ohlcv"),
			SeriesDir: filepath.Join(root, "series"),
			Workers:   2,
		},
		Sentiment: config.SentimentConfig{
			KeywordFilter:      true,
			InfluenceThreshold: 100,
			TextColumn:         "text",
			InfluenceColumn:    "user_followers_count",
			LangColumn:         "lang",
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func seedBitcoin(t *testing.T, cfg *config.Config) {
	t.Helper()
	dumps := filepath.Join(cfg.Pipeline.DumpsDir, "Bitcoin")
	writeFile(t, filepath.Join(dumps, "Bitcoin_20200101-000000.csv"),
		corpusHeader+"Bitcoin is great,500,en\nI hate bitcoin,20,en\n")
	writeFile(t, filepath.Join(dumps, "Bitcoin_20200101-120000.csv"),
		corpusHeader+"bitcoin crash is terrible,1000,en\nunrelated good news,5000,en\n")
	writeFile(t, filepath.Join(dumps, "Bitcoin_20200102-000000.csv"),
		corpusHeader+"nothing about the coin,10,en\n")
	writeFile(t, filepath.Join(cfg.Pipeline.PricesDir, "Bitcoin.csv"),
		"date,price_open,price_close,volume_traded\n"+
			"2020-01-01T00:00:00.0000000Z,100,110,5\n"+
			"2020-01-02T00:00:00.0000000Z,110,105,3\n")
}

func failuresOf(report *models.RunReport, stage string) []models.UnitFailure {
	var out []models.UnitFailure
	for _, f := range report.FailedUnits() {
		if f.Stage == stage {
			out = append(out, f)
		}
	}
	return out
}

func TestRunAll(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root, config.EntityConfig{Name: "Bitcoin", Keyword: "bitcoin"})
	seedBitcoin(t, cfg)
	notifier := &fakeNotifier{}

	p, err := New(cfg, notifier)
	require.NoError(t, err)

	report, err := p.Run(context.Background(), TargetAll)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.DaysMerged)
	assert.Equal(t, 2, report.FilesScored)
	assert.Equal(t, 3, report.RecordsScored)
	assert.Equal(t, 4, report.SeriesWritten)

	// The keyword filter empties 2020-01-02; both the score and the series stage report it.
	scoreFailures := failuresOf(report, models.StageScore)
	require.Len(t, scoreFailures, 1)
	assert.Equal(t, "20200102.csv", scoreFailures[0].Unit)
	assert.True(t, apperrors.Is(scoreFailures[0].Err, apperrors.TypeEmptyInput))
	seriesFailures := failuresOf(report, models.StageSeries)
	require.Len(t, seriesFailures, 1)
	assert.Equal(t, "20200102", seriesFailures[0].Unit)

	daily := readFile(t, filepath.Join(cfg.Pipeline.DailyDir, "Bitcoin", "20200101.csv"))
	assert.Equal(t, corpusHeader+"Bitcoin is great,500,en\nI hate bitcoin,20,en\n"+
		"bitcoin crash is terrible,1000,en\nunrelated good news,5000,en\n", daily)

	scores := readFile(t, filepath.Join(cfg.Pipeline.ScoresDir, "daily", "Bitcoin", "20200101.csv"))
	lines := strings.Split(strings.TrimSpace(scores), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "compound,neg,neu,pos", lines[0])
	assert.Equal(t, "compound,neg,neu,pos\n",
		readFile(t, filepath.Join(cfg.Pipeline.ScoresDir, "daily", "Bitcoin", "20200102.csv")))

	seriesDir := filepath.Join(cfg.Pipeline.SeriesDir, "Bitcoin")
	polarity := strings.Split(strings.TrimSpace(readFile(t, filepath.Join(seriesDir, PolarityFile))), "\n")
	require.Len(t, polarity, 4)
	assert.Equal(t, "date,value,variable", polarity[0])
	assert.True(t, strings.HasPrefix(polarity[1], "2020-01-01,"))
	assert.True(t, strings.HasSuffix(polarity[1], ",pos"))
	assert.True(t, strings.HasSuffix(polarity[2], ",neg"))
	assert.True(t, strings.HasSuffix(polarity[3], ",neg"))

	summary := strings.Split(strings.TrimSpace(readFile(t, filepath.Join(seriesDir, SummaryFile))), "\n")
	require.Len(t, summary, 2)
	assert.True(t, strings.HasPrefix(summary[1], "20200101,3,"))

	assert.Equal(t, "date,price_diff\n2020-01-01,10\n2020-01-02,-5\n", readFile(t, filepath.Join(seriesDir, PriceDiffFile)))

	joined := strings.Split(strings.TrimSpace(readFile(t, filepath.Join(seriesDir, DailyFile))), "\n")
	require.Len(t, joined, 2)
	assert.True(t, strings.HasPrefix(joined[1], "2020-01-01,-"), "two of three records are negative: %s", joined[1])
	assert.True(t, strings.HasSuffix(joined[1], ",10"))

	require.Len(t, notifier.reports, 1)
	assert.Same(t, report, notifier.reports[0])
	assert.Empty(t, notifier.errs)
}

func TestRunSeriesSkipsCorruptScoreFile(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root, config.EntityConfig{Name: "Bitcoin", Keyword: "bitcoin"})
	scores := filepath.Join(cfg.Pipeline.ScoresDir, StageDaily, "Bitcoin")
	writeFile(t, filepath.Join(scores, "20200101.csv"), "compound,neg,neu,pos\n0.5,0,0.5,0.5\n-0.2,0.3,0.7,0\n")
	writeFile(t, filepath.Join(scores, "20200102.csv"), "compound,neg,neu,pos\nnot-a-number,0,1,0\n")

	p, err := New(cfg, nil)
	require.NoError(t, err)

	report, err := p.Run(context.Background(), TargetSeries)
	require.NoError(t, err)

	failures := report.FailedUnits()
	require.Len(t, failures, 1)
	assert.Equal(t, "20200102.csv", failures[0].Unit)
	assert.Equal(t, models.StageSeries, failures[0].Stage)
	assert.True(t, apperrors.Is(failures[0].Err, apperrors.TypeMalformedRecord))

	seriesDir := filepath.Join(cfg.Pipeline.SeriesDir, "Bitcoin")
	assert.Equal(t, 2, report.SeriesWritten)
	assert.Equal(t, "date,value,variable\n2020-01-01,0.5,pos\n2020-01-01,-0.3,neg\n",
		readFile(t, filepath.Join(seriesDir, PolarityFile)))
	summary := strings.Split(strings.TrimSpace(readFile(t, filepath.Join(seriesDir, SummaryFile))), "\n")
	require.Len(t, summary, 2)
	assert.True(t, strings.HasPrefix(summary[1], "20200101,2,"))
}

func TestRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root, config.EntityConfig{Name: "Bitcoin", Keyword: "bitcoin"})
	seedBitcoin(t, cfg)

	p, err := New(cfg, nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), TargetAll)
	require.NoError(t, err)
	first := readFile(t, filepath.Join(cfg.Pipeline.SeriesDir, "Bitcoin", PolarityFile))

	_, err = p.Run(context.Background(), TargetAll)
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, filepath.Join(cfg.Pipeline.SeriesDir, "Bitcoin", PolarityFile)))
}

func TestRunMissingEntitySource(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root,
		config.EntityConfig{Name: "ETH"},
		config.EntityConfig{Name: "Bitcoin", Keyword: "bitcoin"},
	)
	seedBitcoin(t, cfg)
	notifier := &fakeNotifier{}

	p, err := New(cfg, notifier)
	require.NoError(t, err)

	report, err := p.Run(context.Background(), TargetAggregate)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.TypeNotFound))
	assert.Contains(t, err.Error(), "ETH aggregate")

	assert.Equal(t, 2, report.DaysMerged, "other entities still run")
	failures := report.FailedUnits()
	require.Len(t, failures, 1)
	assert.Equal(t, "ETH", failures[0].Entity)

	require.Len(t, notifier.errs, 1)
	require.Len(t, notifier.reports, 1)
}

func TestRunCancelled(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root, config.EntityConfig{Name: "Bitcoin", Keyword: "bitcoin"})
	seedBitcoin(t, cfg)

	p, err := New(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.Run(ctx, TargetAll)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.DaysMerged)
}

func TestRunUnknownTarget(t *testing.T) {
	p, err := New(testConfig(t.TempDir(), config.EntityConfig{Name: "Bitcoin"}), nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "bogus")
	assert.Error(t, err)
}

func TestNewMissingLexicon(t *testing.T) {
	cfg := testConfig(t.TempDir(), config.EntityConfig{Name: "Bitcoin"})
	cfg.Sentiment.LexiconPath = filepath.Join(t.TempDir(), "missing.txt")

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.TypeNotFound))
}

func TestNewLexiconOverlay(t *testing.T) {
	cfg := testConfig(t.TempDir(), config.EntityConfig{Name: "Bitcoin"})
	overlay := filepath.Join(t.TempDir(), "market.txt")
	writeFile(t, overlay, "hodl\t2.5\t0.5\n")
	cfg.Sentiment.LexiconOverlays = []string{overlay}

	p, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Greater(t, p.scorer.analyzer.PolarityScores("hodl").Compound, 0.0)
	assert.Greater(t, p.scorer.analyzer.PolarityScores("good").Compound, 0.0, "base lexicon is kept")

	cfg.Sentiment.LexiconOverlays = []string{filepath.Join(t.TempDir(), "missing.txt")}
	_, err = New(cfg, nil)
	assert.True(t, apperrors.Is(err, apperrors.TypeNotFound))
}

func TestStepsFor(t *testing.T) {
	tests := []struct {
		target string
		want   []string
	}{
		{TargetAll, []string{TargetAggregate, TargetScore, TargetSeries}},
		{"", []string{TargetAggregate, TargetScore, TargetSeries}},
		{TargetScoreRaw, []string{TargetScoreRaw}},
		{TargetSeries, []string{TargetSeries}},
	}

	for _, tt := range tests {
		got, err := stepsFor(tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
