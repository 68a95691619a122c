//go:build !cgo

package driver

import (
	"context"
	"log/slog"

	"github.com/soundprediction/grafo/pkg/types"
)

// LadybugConfig holds settings for the embedded backend. This stub build
// only carries the shape; opening a database always fails.
type LadybugConfig struct {
	Path                 string
	BufferPoolSize       uint64
	MaxConcurrentQueries int
	EnableCompression    bool
	MaxDBSize            uint64
	Logger               *slog.Logger
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

// LadybugDriver is a stub built when cgo is disabled. All operations
// return ErrCGORequired.
type LadybugDriver struct{}

// NewLadybugDriver returns ErrCGORequired.
func NewLadybugDriver(path string) (*LadybugDriver, error) {
	return nil, ErrCGORequired
}

// NewLadybugDriverWithConfig returns ErrCGORequired.
func NewLadybugDriverWithConfig(config *LadybugConfig) (*LadybugDriver, error) {
	return nil, ErrCGORequired
}

// ExecuteQuery returns ErrCGORequired.
func (k *LadybugDriver) ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]*types.Record, *types.Summary, error) {
	return nil, nil, ErrCGORequired
}

// ExecuteWrite returns ErrCGORequired.
func (k *LadybugDriver) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) ([]*types.Record, *types.Summary, error) {
	return nil, nil, ErrCGORequired
}

// Raw returns ErrCGORequired.
func (k *LadybugDriver) Raw(ctx context.Context, cypher string, params map[string]any) (*RawResult, error) {
	return nil, ErrCGORequired
}

// VerifyConnectivity returns ErrCGORequired.
func (k *LadybugDriver) VerifyConnectivity(ctx context.Context) error {
	return ErrCGORequired
}

// Close is a no-op.
func (k *LadybugDriver) Close(ctx context.Context) error {
	return nil
}

// Provider reports ProviderLadybug.
func (k *LadybugDriver) Provider() GraphProvider {
	return ProviderLadybug
}
