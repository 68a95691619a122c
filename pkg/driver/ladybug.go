//go:build cgo

package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ladybug "github.com/LadybugDB/go-ladybug"

	"github.com/soundprediction/grafo/pkg/types"
)

// LadybugConfig holds settings for the embedded backend.
type LadybugConfig struct {
	// Path to the database directory, or ":memory:".
	Path string
	// BufferPoolSize in bytes. Zero means 1GB.
	BufferPoolSize uint64
	// MaxConcurrentQueries caps the worker threads. Zero means 1.
	MaxConcurrentQueries int
	// EnableCompression toggles on-disk compression.
	EnableCompression bool
	// MaxDBSize in bytes. Zero means 8TB.
	MaxDBSize uint64
	// Logger receives query-level debug logging. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultLadybugConfig returns a configuration for an in-memory database.
func DefaultLadybugConfig() *LadybugConfig {
	return &LadybugConfig{
		Path:                 ":memory:",
		BufferPoolSize:       1024 * 1024 * 1024,
		MaxConcurrentQueries: 1,
		EnableCompression:    true,
		MaxDBSize:            1 << 43,
	}
}

// LadybugDriver implements GraphDriver on an embedded, file-backed
// database. The underlying library is not thread-safe, so all calls are
// serialized through a mutex.
//
// The embedded backend understands plain Cypher but not Neo4j procedure
// libraries; operations that need APOC or n10s will fail with a missing
// procedure error. Raw streaming is not supported.
type LadybugDriver struct {
	db     *ladybug.Database
	conn   *ladybug.Connection
	path   string
	// tempPath is set when the database was locked and a throwaway copy
	// was opened instead. The copy is removed on Close.
	tempPath string
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewLadybugDriver opens the database at path, or an in-memory one when
// path is empty. When the database directory is locked by another process
// the directory is copied to a temporary location and the copy is opened,
// which still allows read access to a snapshot.
func NewLadybugDriver(path string) (*LadybugDriver, error) {
	config := DefaultLadybugConfig()
	if path != "" {
		config.Path = path
	}
	return NewLadybugDriverWithConfig(config)
}

// NewLadybugDriverWithConfig opens the database described by config.
func NewLadybugDriverWithConfig(config *LadybugConfig) (*LadybugDriver, error) {
	if config == nil {
		config = DefaultLadybugConfig()
	}
	path := config.Path
	if path == "" {
		path = ":memory:"
	}
	bufferPool := config.BufferPoolSize
	if bufferPool == 0 {
		bufferPool = 1024 * 1024 * 1024
	}
	threads := config.MaxConcurrentQueries
	if threads <= 0 {
		threads = 1
	}
	maxSize := config.MaxDBSize
	if maxSize == 0 {
		maxSize = 1 << 43
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	systemConfig := ladybug.SystemConfig{
		BufferPoolSize:    bufferPool,
		MaxNumThreads:     uint64(threads),
		EnableCompression: config.EnableCompression,
		ReadOnly:          false,
		MaxDbSize:         maxSize,
	}

	tempPath := ""
	db, err := ladybug.OpenDatabase(path, systemConfig)
	if err != nil {
		if !isLockError(err) || path == ":memory:" {
			return nil, fmt.Errorf("failed to open ladybug database: %w", err)
		}

		// Another process holds the lock. Copy the directory and open
		// the snapshot instead.
		tempDir, tmpErr := os.MkdirTemp("", "grafo_ladybug_*")
		if tmpErr != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", tmpErr)
		}
		tempPath = filepath.Join(tempDir, filepath.Base(path))
		if copyErr := os.CopyFS(tempPath, os.DirFS(path)); copyErr != nil {
			os.RemoveAll(tempDir)
			return nil, fmt.Errorf("failed to copy locked database: %w", copyErr)
		}
		logger.Warn("database locked, opened temporary snapshot", "path", path, "snapshot", tempPath)

		db, err = ladybug.OpenDatabase(tempPath, systemConfig)
		if err != nil {
			os.RemoveAll(tempDir)
			return nil, fmt.Errorf("failed to open database snapshot: %w", err)
		}
		path = tempPath
	}

	conn, err := ladybug.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open ladybug connection: %w", err)
	}

	return &LadybugDriver{
		db:       db,
		conn:     conn,
		path:     path,
		tempPath: tempPath,
		logger:   logger,
	}, nil
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "lock") ||
		strings.Contains(msg, "in use") ||
		strings.Contains(msg, "busy")
}

// ExecuteQuery runs a single Cypher statement and materializes the result.
func (k *LadybugDriver) ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]*types.Record, *types.Summary, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, nil, fmt.Errorf("ladybug driver is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	k.logger.Debug("executing cypher", "query", cypher, "params", len(params))

	// The embedded engine rejects the bolt driver's routing parameters.
	filtered := make(map[string]any, len(params))
	for key, value := range params {
		filtered[key] = value
	}
	delete(filtered, "database_")
	delete(filtered, "routing_")

	var results *ladybug.QueryResult
	if len(filtered) > 0 {
		prepared, err := k.conn.Prepare(cypher)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to prepare query: %w", err)
		}
		results, err = k.conn.Execute(prepared, filtered)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to execute query: %w", err)
		}
	} else {
		var err error
		results, err = k.conn.Query(cypher)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to execute query: %w", err)
		}
	}
	defer results.Close()

	columns := results.GetColumnNames()

	var records []*types.Record
	for results.HasNext() {
		row, err := results.Next()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read result row: %w", err)
		}
		values, err := row.GetAsSlice()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode result row: %w", err)
		}

		keys := make([]string, len(columns))
		copy(keys, columns)
		if len(values) > len(keys) {
			values = values[:len(keys)]
		}
		records = append(records, &types.Record{Keys: keys, Values: values})
	}

	// The embedded engine exposes no update counters.
	return records, &types.Summary{}, nil
}

// ExecuteWrite runs the statement like ExecuteQuery. The embedded engine
// has no managed transactions to retry within.
func (k *LadybugDriver) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) ([]*types.Record, *types.Summary, error) {
	return k.ExecuteQuery(ctx, cypher, params)
}

// Raw is not supported by the embedded backend.
func (k *LadybugDriver) Raw(ctx context.Context, cypher string, params map[string]any) (*RawResult, error) {
	return nil, ErrRawUnsupported
}

// VerifyConnectivity runs a trivial query against the embedded engine.
func (k *LadybugDriver) VerifyConnectivity(ctx context.Context) error {
	_, _, err := k.ExecuteQuery(ctx, "RETURN 1", nil)
	return err
}

// Close shuts the connection and database down and removes the temporary
// snapshot if one was created.
func (k *LadybugDriver) Close(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true

	if k.conn != nil {
		k.conn.Close()
	}
	if k.db != nil {
		k.db.Close()
	}
	if k.tempPath != "" {
		if err := os.RemoveAll(filepath.Dir(k.tempPath)); err != nil {
			k.logger.Warn("failed to remove temporary snapshot", "path", k.tempPath, "error", err)
		}
	}
	return nil
}

// Provider reports ProviderLadybug.
func (k *LadybugDriver) Provider() GraphProvider {
	return ProviderLadybug
}
