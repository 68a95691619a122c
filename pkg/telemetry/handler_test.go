package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*ParquetHandler, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	buf := &bytes.Buffer{}
	next := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h, err := NewParquetHandler(next, dir)
	require.NoError(t, err)
	return h, buf, dir
}

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	return files
}

func TestParquetHandlerForwardsEverything(t *testing.T) {
	h, buf, dir := newTestHandler(t)
	log := slog.New(h)

	log.Info("plain info")
	log.Warn("a warning")

	out := buf.String()
	assert.Contains(t, out, "plain info")
	assert.Contains(t, out, "a warning")

	// Non-errors are not captured.
	require.NoError(t, h.Close())
	assert.Empty(t, parquetFiles(t, dir))
}

func TestParquetHandlerCapturesErrors(t *testing.T) {
	h, _, dir := newTestHandler(t)
	log := slog.New(h)

	ctx := WithRequestID(context.Background(), "req-7")
	log.ErrorContext(ctx, "query execution failed", "query", "MATCH (n) RETURN n")
	require.NoError(t, h.Close())

	files := parquetFiles(t, dir)
	require.Len(t, files, 1)

	rows, err := parquet.ReadFile[LogRecord](files[0])
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "ERROR", rows[0].Level)
	assert.Equal(t, "query execution failed", rows[0].Message)
	assert.Equal(t, "req-7", rows[0].RequestID)
	assert.Contains(t, rows[0].Attributes, "MATCH (n) RETURN n")
	assert.NotEmpty(t, rows[0].ID)
}

func TestParquetHandlerCloseWithoutErrors(t *testing.T) {
	h, _, dir := newTestHandler(t)

	require.NoError(t, h.Close())
	assert.Empty(t, parquetFiles(t, dir))
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))

	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIDFromContext(ctx))
}

func TestNewParquetHandlerBadDir(t *testing.T) {
	// A file where the directory should be makes MkdirAll fail.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	next := slog.NewTextHandler(os.Stderr, nil)
	_, err := NewParquetHandler(next, blocked)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "telemetry directory"))
}
