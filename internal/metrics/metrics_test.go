package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		CaptureFilesTotal,
		DaysMergedTotal,
		RecordsScoredTotal,
		RecordsDroppedTotal,
		RecordsForeignLangTotal,
		UnitFailuresTotal,
		StageDuration,
		LastRunTimestamp,
	}

	for _, c := range collectors {
		assert.Error(t, Registry.Register(c), "collector should already be registered")
	}
}

func TestCounterMetrics(t *testing.T) {
	tests := []struct {
		name    string
		counter *prometheus.CounterVec
		labels  []string
	}{
		{"capture files", CaptureFilesTotal, []string{"Bitcoin"}},
		{"days merged", DaysMergedTotal, []string{"Bitcoin"}},
		{"records scored", RecordsScoredTotal, []string{"Bitcoin", "raw"}},
		{"records dropped", RecordsDroppedTotal, []string{"keyword"}},
		{"foreign lang records", RecordsForeignLangTotal, []string{"Bitcoin"}},
		{"unit failures", UnitFailuresTotal, []string{"score", "other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.counter.WithLabelValues(tt.labels...)
			before := testutil.ToFloat64(c)
			c.Add(3)
			assert.Equal(t, before+3, testutil.ToFloat64(c))
		})
	}
}

func TestRecordFailure(t *testing.T) {
	typed := UnitFailuresTotal.WithLabelValues("series", "empty_input")
	other := UnitFailuresTotal.WithLabelValues("series", "other")
	typedBefore, otherBefore := testutil.ToFloat64(typed), testutil.ToFloat64(other)

	RecordFailure("series", fmt.Errorf("day 20200101: %w", apperrors.EmptyInput("no scores")))
	RecordFailure("series", errors.New("disk on fire"))

	assert.Equal(t, typedBefore+1, testutil.ToFloat64(typed))
	assert.Equal(t, otherBefore+1, testutil.ToFloat64(other))
}

func TestWriteTextfile(t *testing.T) {
	DaysMergedTotal.WithLabelValues("ETH").Inc()
	LastRunTimestamp.Set(1700000000)

	path := filepath.Join(t.TempDir(), "sentiday.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `sentiday_days_merged_total{entity="ETH"}`))
	assert.True(t, strings.Contains(text, "sentiday_last_run_timestamp_seconds 1.7e+09"))
}
