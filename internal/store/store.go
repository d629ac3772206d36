// Package store is the Report Store: a small key/value surface holding the
// latest report, the dated archive and the run status object.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abelbrown/georisk/internal/model"
)

// Well-known keys.
const (
	LatestKey     = "latest"
	StatusKey     = "status"
	ArchivePrefix = "archive/"
)

// ErrNotFound is returned by Read for a missing key.
var ErrNotFound = errors.New("store: key not found")

// Store is the persistence contract the pipeline depends on.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// Lister is implemented by backends that can enumerate keys.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ArchiveKey returns the immutable archive key for a calendar day.
func ArchiveKey(day time.Time) string {
	return ArchivePrefix + model.Day(day)
}

// Open creates a store by driver name. See each backend for dsn format.
func Open(driver, dsn, prefix string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", "file":
		return NewFileStore(dsn)
	case "sqlite":
		return OpenSQL(DialectSQLite, dsn)
	case "postgres", "postgresql":
		return OpenSQL(DialectPostgres, dsn)
	case "redis":
		return OpenRedis(dsn, prefix)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}

// Close releases backend resources when the store holds any.
func Close(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// WriteStatus records the operational status object.
func WriteStatus(ctx context.Context, s Store, st model.Status) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	return s.Write(ctx, StatusKey, data)
}

// ReadStatus loads the status object. Missing status returns ErrNotFound.
func ReadStatus(ctx context.Context, s Store) (model.Status, error) {
	var st model.Status
	data, err := s.Read(ctx, StatusKey)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	return st, nil
}

// History returns archived days, newest first, for backends that list keys.
func History(ctx context.Context, s Store) ([]string, error) {
	l, ok := s.(Lister)
	if !ok {
		return nil, fmt.Errorf("store: %T cannot list keys", s)
	}
	keys, err := l.Keys(ctx, ArchivePrefix)
	if err != nil {
		return nil, err
	}
	days := make([]string, 0, len(keys))
	for _, k := range keys {
		days = append(days, strings.TrimPrefix(k, ArchivePrefix))
	}
	// YYYY-MM-DD sorts lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days, nil
}
