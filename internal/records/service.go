// Package records translates completed conversational flows into CRUD and
// search calls against the document store.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Shadman554/telegram-bot/core/logger"
	"github.com/Shadman554/telegram-bot/internal/catalog"
	"github.com/Shadman554/telegram-bot/internal/store"
)

// ErrNotFound indicates no record matched the requested id or storage key.
var ErrNotFound = errors.New("records: not found")

const (
	defaultCountTTL = time.Minute
	createdAtLayout = time.RFC3339
)

// Record is a persisted item together with its storage key.
type Record struct {
	ID         int64
	StorageKey string
	Fields     map[string]any
}

// Options configures a Service.
type Options struct {
	Store    store.Store
	Registry *catalog.Registry
	IDGen    IDGenerator
	Now      func() time.Time
	// CountTTL bounds how long per-collection counts are cached for the
	// statistics surfaces; zero selects the default.
	CountTTL time.Duration
}

// Service implements record operations for every registered collection.
type Service struct {
	store    store.Store
	registry *catalog.Registry
	idgen    IDGenerator
	now      func() time.Time
	counts   *gocache.Cache
}

// NewService builds a Service; a nil store degrades every operation to
// store.ErrUnavailable instead of failing construction.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = catalog.Default()
	}
	if opts.IDGen == nil {
		opts.IDGen = MaxScan{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ttl := opts.CountTTL
	if ttl <= 0 {
		ttl = defaultCountTTL
	}
	return &Service{
		store:    opts.Store,
		registry: opts.Registry,
		idgen:    opts.IDGen,
		now:      opts.Now,
		counts:   gocache.New(ttl, 2*ttl),
	}
}

// Registry exposes the collection registry the service operates on.
func (s *Service) Registry() *catalog.Registry {
	return s.registry
}

// Available reports whether a document store is configured.
func (s *Service) Available() bool {
	return s.store != nil
}

func (s *Service) collection(key string) (store.Collection, catalog.Descriptor, error) {
	desc, err := s.registry.Describe(key)
	if err != nil {
		return nil, catalog.Descriptor{}, err
	}
	if s.store == nil {
		return nil, desc, store.ErrUnavailable
	}
	return s.store.Collection(key), desc, nil
}

// Create validates data, assigns an id and createdAt stamp, and persists the
// record under its decimal id as storage key. Nothing is written when
// validation fails.
func (s *Service) Create(ctx context.Context, key string, data map[string]string) (Record, error) {
	col, desc, err := s.collection(key)
	if err != nil {
		return Record{}, err
	}
	if err := catalog.Validate(desc, data); err != nil {
		return Record{}, err
	}

	id, err := s.idgen.Next(ctx, col)
	if err != nil {
		return Record{}, err
	}

	fields := make(map[string]any, len(desc.Fields)+2)
	for _, f := range desc.Fields {
		fields[f] = data[f]
	}
	fields["id"] = id
	fields["createdAt"] = s.now().UTC().Format(createdAtLayout)

	storageKey := strconv.FormatInt(id, 10)
	if err := col.Set(ctx, storageKey, fields); err != nil {
		return Record{}, err
	}
	s.counts.Delete(key)

	logger.Info(ctx, "service.records", "record.created",
		slog.String("status", "ok"),
		slog.String("collection", key),
		slog.Int64("record_id", id),
	)
	return Record{ID: id, StorageKey: storageKey, Fields: fields}, nil
}

// LookupByID finds a record by its numeric id field, not by storage key.
func (s *Service) LookupByID(ctx context.Context, key string, id int64) (Record, error) {
	col, _, err := s.collection(key)
	if err != nil {
		return Record{}, err
	}
	docs, err := col.Query(ctx, "id", id)
	if err != nil {
		return Record{}, err
	}
	if len(docs) == 0 {
		return Record{}, fmt.Errorf("%w: %s id %d", ErrNotFound, key, id)
	}
	doc := docs[0]
	return Record{ID: id, StorageKey: doc.Key, Fields: doc.Data}, nil
}

// Update validates data and fully replaces the record's declared fields,
// preserving id and createdAt from the stored document.
func (s *Service) Update(ctx context.Context, key, storageKey string, data map[string]string) (Record, error) {
	col, desc, err := s.collection(key)
	if err != nil {
		return Record{}, err
	}
	if err := catalog.Validate(desc, data); err != nil {
		return Record{}, err
	}

	existing, ok, err := col.Get(ctx, storageKey)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, fmt.Errorf("%w: %s key %s", ErrNotFound, key, storageKey)
	}

	fields := make(map[string]any, len(desc.Fields)+2)
	for _, f := range desc.Fields {
		fields[f] = data[f]
	}
	fields["id"] = existing.Data["id"]
	fields["createdAt"] = existing.Data["createdAt"]

	if err := col.Set(ctx, storageKey, fields); err != nil {
		return Record{}, err
	}

	id, _ := numericID(fields["id"])
	logger.Info(ctx, "service.records", "record.updated",
		slog.String("status", "ok"),
		slog.String("collection", key),
		slog.Int64("record_id", id),
	)
	return Record{ID: id, StorageKey: storageKey, Fields: fields}, nil
}

// Delete removes the record under the given storage key. A missing record is
// reported as ErrNotFound rather than treated as a failure, so a second
// delete of the same key is safe.
func (s *Service) Delete(ctx context.Context, key, storageKey string) error {
	col, _, err := s.collection(key)
	if err != nil {
		return err
	}
	_, ok, err := col.Get(ctx, storageKey)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s key %s", ErrNotFound, key, storageKey)
	}
	if err := col.Delete(ctx, storageKey); err != nil {
		return err
	}
	s.counts.Delete(key)

	logger.Info(ctx, "service.records", "record.deleted",
		slog.String("status", "ok"),
		slog.String("collection", key),
		slog.String("storage_key", storageKey),
	)
	return nil
}

// ListPreview returns up to limit records plus the total count.
func (s *Service) ListPreview(ctx context.Context, key string, limit int) ([]Record, int, error) {
	col, _, err := s.collection(key)
	if err != nil {
		return nil, 0, err
	}
	docs, err := col.Stream(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(docs)
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	out := make([]Record, 0, len(docs))
	for _, doc := range docs {
		id, _ := numericID(doc.Data["id"])
		out = append(out, Record{ID: id, StorageKey: doc.Key, Fields: doc.Data})
	}
	return out, total, nil
}

// Search returns every record with at least one declared text field that
// contains term case-insensitively. No ranking, substring containment only.
func (s *Service) Search(ctx context.Context, key, term string) ([]Record, error) {
	col, desc, err := s.collection(key)
	if err != nil {
		return nil, err
	}
	docs, err := col.Stream(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	var out []Record
	for _, doc := range docs {
		if !matchesTerm(desc, doc.Data, needle) {
			continue
		}
		id, _ := numericID(doc.Data["id"])
		out = append(out, Record{ID: id, StorageKey: doc.Key, Fields: doc.Data})
	}
	return out, nil
}

func matchesTerm(desc catalog.Descriptor, fields map[string]any, needle string) bool {
	if needle == "" {
		return false
	}
	for _, f := range desc.Fields {
		text, ok := fields[f].(string)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

// Count returns the collection's total record count. Statistics are
// best-effort: any failure yields zero. Counts are cached briefly.
func (s *Service) Count(ctx context.Context, key string) int {
	if cached, ok := s.counts.Get(key); ok {
		if n, ok := cached.(int); ok {
			return n
		}
	}
	col, _, err := s.collection(key)
	if err != nil {
		return 0
	}
	docs, err := col.Stream(ctx)
	if err != nil {
		logger.Warn(ctx, "service.records", "count.fail",
			slog.String("status", "fail"),
			slog.String("collection", key),
			slog.String("err", err.Error()),
		)
		return 0
	}
	s.counts.SetDefault(key, len(docs))
	return len(docs)
}
