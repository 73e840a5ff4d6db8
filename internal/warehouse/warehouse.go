// Package warehouse contains the warehouse-agnostic query contract and the
// backend factory. Concrete backends (Postgres, DuckDB, SQLite, MySQL,
// MSSQL) live in subpackages and register themselves with the factory from
// their init functions; importing reportpipe/internal/warehouse/all wires
// every built-in backend into a binary.
package warehouse

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"reportpipe/internal/table"
)

// Runner executes a finished (filter-injected) SQL query and materializes
// the full result. Execution failures (malformed SQL, authorization,
// network) surface as per-report errors, never as pipeline-fatal ones.
type Runner interface {
	Query(ctx context.Context, sql string) (table.Table, error)
	Close()
}

// Config selects and configures a warehouse backend.
type Config struct {
	// Kind selects the backend implementation, e.g. "postgres", "duckdb".
	Kind string `json:"kind"`

	// DSN is the backend connection string.
	DSN string `json:"dsn"`
}

// Factory constructs a Runner from a Config.
type Factory func(ctx context.Context, cfg Config) (Runner, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a backend factory for the given kind.
// It is typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Runner for cfg.Kind. Unregistered kinds return an error that
// names the kind.
func New(ctx context.Context, cfg Config) (Runner, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported warehouse.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered backend kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
