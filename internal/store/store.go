// Package store defines the document-store boundary used by record
// operations: per-collection primitives over schemaless field maps addressed
// by an opaque storage key.
package store

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the store is not configured or not reachable.
var ErrUnavailable = errors.New("store: unavailable")

// Document is a stored field map together with its storage key. The key is
// the store's own handle and is distinct from the record's numeric id field.
type Document struct {
	Key  string
	Data map[string]any
}

// Collection exposes the per-collection primitives of the document store.
type Collection interface {
	// Stream returns every document in storage-native order.
	Stream(ctx context.Context) ([]Document, error)
	// Get fetches one document by storage key, reporting presence.
	Get(ctx context.Context, key string) (Document, bool, error)
	// Set writes the full field map under the given storage key.
	Set(ctx context.Context, key string, data map[string]any) error
	// Add writes the field map under a freshly generated storage key.
	Add(ctx context.Context, data map[string]any) (string, error)
	// Delete removes the document with the given storage key, if present.
	Delete(ctx context.Context, key string) error
	// Query returns documents whose field equals the given value.
	Query(ctx context.Context, field string, value any) ([]Document, error)
}

// Store resolves named collections.
type Store interface {
	Collection(name string) Collection
	Close() error
}
