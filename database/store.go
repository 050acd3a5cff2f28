// Package database holds the key-value persistence used to remember
// panel messages across restarts.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Store is a durable key to JSON value map. Writes to the same key are
// last-writer-wins; nothing is atomic across keys.
type Store interface {
	Load(ctx context.Context, key string) (json.RawMessage, error)
	Save(ctx context.Context, key string, value json.RawMessage) error
	Close() error
}

// Options selects and configures a Store backend.
type Options struct {
	Driver      string
	FilePath    string
	PostgresDSN string
	SQLitePath  string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)

	switch opts.Driver {
	case "file":
		s, err = NewFileStore(opts.FilePath)
	case "postgres":
		s, err = NewPostgres(ctx, opts.PostgresDSN)
	case "sqlite":
		s, err = NewSQLite(opts.SQLitePath)
	case "memory":
		s = NewMemoryStore()
	default:
		err = fmt.Errorf("unknown store driver %q", opts.Driver)
	}

	if err != nil {
		return nil, err
	}
	return s, nil
}
