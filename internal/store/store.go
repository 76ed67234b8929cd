// Package store persists catalog entries. SQLite is the default backend;
// Postgres (Supabase) is used when a DSN is configured.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pbaille/toolscout/internal/config"
	"github.com/pbaille/toolscout/internal/domain"
)

// ErrExists is returned by Insert when a tool with the same case-insensitive
// name is already in the catalog
var ErrExists = errors.New("tool already exists")

// ErrNotConfigured is returned by Open when no backend is configured
var ErrNotConfigured = errors.New("catalog not configured")

// Catalog is the persistent set of accepted tools
type Catalog interface {
	// Exists reports whether a tool with this name exists, ignoring case
	Exists(ctx context.Context, name string) (bool, error)
	// Insert adds a tool. ID and CreatedAt are assigned when empty.
	Insert(ctx context.Context, tool *domain.Tool) error
	List(ctx context.Context, filter Filter) ([]domain.Tool, error)
	Close() error
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Category   domain.Category
	Difficulty domain.Difficulty
}

// Match applies the filter in memory
func (f Filter) Match(t domain.Tool) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && t.Difficulty != f.Difficulty {
		return false
	}
	return true
}

// Open connects to the configured backend
func Open(ctx context.Context, cfg config.CatalogConfig) (Catalog, error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.DSN == "" {
			return nil, ErrNotConfigured
		}
		return NewPostgres(ctx, cfg.DSN, cfg.MaxConns, cfg.SimpleProtocol)
	default:
		if cfg.Path == "" {
			return nil, ErrNotConfigured
		}
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		return NewSQLite(cfg.Path)
	}
}
