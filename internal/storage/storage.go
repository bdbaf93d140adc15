// Package storage provides the client-local key-value store that backs the
// saved channel list and the user's display identity.
//
// The store plays the role browser local storage plays for a web client: a
// small string map scoped to one client. Some execution contexts have no such
// store at all, so callers obtain one through Probe and treat absence as
// "cache unusable" rather than as a failure.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/models"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// DefaultScope namespaces keys when several clients share a redis or sqlite store.
const DefaultScope = "netchat"

// Scoped is a string key-value store scoped to a single client.
type Scoped interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backing resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Path     string
	RedisURL string
	Scope    string
}

// Open creates the configured backend. The "none" backend reports
// models.ErrStorageUnavailable.
func Open(ctx context.Context, opts Options) (Scoped, error) {
	scope := opts.Scope
	if scope == "" {
		scope = DefaultScope
	}

	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(opts.Path)
	case BackendRedis:
		return NewRedis(ctx, opts.RedisURL, scope)
	case BackendSQLite:
		return NewSQLite(ctx, opts.Path, scope)
	case BackendNone, "":
		return nil, models.ErrStorageUnavailable
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// Probe opens the configured backend and reports whether it is usable.
// Any failure is treated as absence and logged at debug level.
func Probe(ctx context.Context, opts Options) (Scoped, bool) {
	s, err := Open(ctx, opts)
	if err != nil {
		log.Debug().Err(err).Str("backend", opts.Backend).Msg("[Storage] client storage unavailable")
		return nil, false
	}
	return s, true
}
