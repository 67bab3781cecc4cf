package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shadman554/telegram-bot/internal/catalog"
	"github.com/Shadman554/telegram-bot/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := NewService(Options{
		Store: mem,
		Now:   func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	return svc, mem
}

func wordData(name string) map[string]string {
	return map[string]string{
		"name":        name,
		"kurdish":     "k-" + name,
		"arabic":      "a-" + name,
		"description": "d-" + name,
	}
}

func TestCreateStampsIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	rec, err := svc.Create(ctx, "words", wordData("fever"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != 1 {
		t.Fatalf("first id = %d, want 1", rec.ID)
	}
	if rec.StorageKey != "1" {
		t.Fatalf("storage key = %q, want \"1\"", rec.StorageKey)
	}
	if rec.Fields["createdAt"] != "2025-06-01T12:00:00Z" {
		t.Fatalf("createdAt = %v", rec.Fields["createdAt"])
	}

	rec2, err := svc.Create(ctx, "words", wordData("wound"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec2.ID != 2 {
		t.Fatalf("second id = %d, want 2", rec2.ID)
	}
}

func TestCreateValidationWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t)

	data := wordData("fever")
	data["arabic"] = "  "
	_, err := svc.Create(ctx, "words", data)
	var missing *catalog.MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "arabic" {
		t.Fatalf("err = %v, want missing arabic", err)
	}

	docs, _ := mem.Collection("words").Stream(ctx)
	if len(docs) != 0 {
		t.Fatalf("store contains %d documents after rejected create", len(docs))
	}
}

func TestMaxScanSkipsNonNumericIDs(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t)

	col := mem.Collection("words")
	_ = col.Set(ctx, "a", map[string]any{"id": float64(41)})
	_ = col.Set(ctx, "b", map[string]any{"id": "oops"})
	_ = col.Set(ctx, "c", map[string]any{"name": "no id"})

	rec, err := svc.Create(ctx, "words", wordData("fever"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != 42 {
		t.Fatalf("id = %d, want 42", rec.ID)
	}
}

func TestTimestampGenerator(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gen := Timestamp{Now: func() time.Time { return at }}
	id, err := gen.Next(context.Background(), nil)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if id != at.UnixMilli() {
		t.Fatalf("id = %d, want %d", id, at.UnixMilli())
	}
}

func TestUpdateReplacesFieldsKeepsStamps(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	rec, err := svc.Create(ctx, "drugs", map[string]string{
		"name": "Ivermectin", "usage": "antiparasitic", "class": "macrocyclic lactone",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, "drugs", rec.StorageKey, map[string]string{
		"name": "Ivermectin", "usage": "broad antiparasitic",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != rec.ID {
		t.Fatalf("id changed: %d -> %d", rec.ID, updated.ID)
	}
	if updated.Fields["createdAt"] != rec.Fields["createdAt"] {
		t.Fatalf("createdAt changed: %v -> %v", rec.Fields["createdAt"], updated.Fields["createdAt"])
	}
	if updated.Fields["usage"] != "broad antiparasitic" {
		t.Fatalf("usage = %v", updated.Fields["usage"])
	}
	// Full replacement: the omitted optional field does not survive.
	if got := updated.Fields["class"]; got != "" {
		t.Fatalf("class = %v, want empty after replacement", got)
	}
}

func TestUpdateMissingKey(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "drugs", "999", map[string]string{
		"name": "x", "usage": "y",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	rec, err := svc.Create(ctx, "words", wordData("fever"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := svc.LookupByID(ctx, "words", rec.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.StorageKey != rec.StorageKey || found.Fields["name"] != "fever" {
		t.Fatalf("lookup mismatch: %+v", found)
	}

	if _, err := svc.LookupByID(ctx, "words", 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTwiceReportsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	rec, err := svc.Create(ctx, "words", wordData("fever"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, "words", rec.StorageKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, "words", rec.StorageKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestSearchSubstringCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, name := range []string{"Foot rot", "Bloat", "Footpad injury"} {
		if _, err := svc.Create(ctx, "diseases", map[string]string{
			"name": name, "kurdish": "k", "symptoms": "s",
		}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	matches, err := svc.Search(ctx, "diseases", "FOOT")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}

	matches, err = svc.Search(ctx, "diseases", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("blank term matched %d records", len(matches))
	}
}

func TestListPreviewLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for i := 0; i < 7; i++ {
		if _, err := svc.Create(ctx, "appLinks", map[string]string{"url": "https://example.com"}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	recs, total, err := svc.ListPreview(ctx, "appLinks", 5)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if total != 7 || len(recs) != 5 {
		t.Fatalf("total=%d shown=%d, want 7/5", total, len(recs))
	}
}

func TestCountCachesAndDegradesToZero(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Create(ctx, "words", wordData("fever")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if n := svc.Count(ctx, "words"); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	if n := svc.Count(ctx, "nonexistent"); n != 0 {
		t.Fatalf("count of unknown collection = %d, want 0", n)
	}
}

func TestNilStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Options{})

	if svc.Available() {
		t.Fatal("Available() = true with nil store")
	}
	if _, err := svc.Create(ctx, "words", wordData("fever")); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("create err = %v, want ErrUnavailable", err)
	}
	if _, err := svc.LookupByID(ctx, "words", 1); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("lookup err = %v, want ErrUnavailable", err)
	}
	if err := svc.Delete(ctx, "words", "1"); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("delete err = %v, want ErrUnavailable", err)
	}
	if n := svc.Count(ctx, "words"); n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
}
