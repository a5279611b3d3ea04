// Package kvstore provides durable key-value storage for small JSON documents
// such as the bookmark list.
package kvstore

import (
	"context"
	"fmt"
)

// Store is a durable string-keyed store of raw JSON values.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Error represents a storage failure.
type Error struct {
	Backend string
	Op      string
	Key     string
	Cause   error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s store: %s %q: %v", e.Backend, e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s store: %s: %v", e.Backend, e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Config selects and configures a backend.
type Config struct {
	Backend     string
	Path        string // file backend
	RedisURL    string
	KeyPrefix   string // redis backend
	DatabaseURL string
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.KeyPrefix)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
