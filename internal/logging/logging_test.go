package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestNewLoggerWithConfig_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithConfig(LogConfig{Level: "warn", Console: true, Output: &buf, NoColor: true})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerWithConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "journal.log")
	logger := NewLoggerWithConfig(LogConfig{Level: "debug", File: true, FilePath: path, MaxSize: 1})

	LogImport(logger, "batch-1", "pnl.csv", 10, 2, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"import"`)
	assert.Contains(t, string(data), `"batch_id":"batch-1"`)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), WithAccount(logger, "AB1234"))
	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Msg("x")

	assert.Contains(t, buf.String(), `"account":"AB1234"`)

	// missing logger is a no-op rather than a panic
	assert.NotPanics(t, func() {
		noop := FromContext(context.Background())
		noop.Info().Msg("dropped")
	})
}

func TestLogReportAndStore(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	LogReport(WithOperation(logger, "report"), "AB1234", 4, 200, time.Millisecond)
	LogStoreCall(logger, "get_trades", 4, time.Millisecond, nil)

	out := buf.String()
	assert.Contains(t, out, `"operation":"report"`)
	assert.Contains(t, out, `"net_pnl":200`)
	assert.Contains(t, out, "Store call completed")
}
