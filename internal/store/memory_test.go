package store

import (
	"context"
	"testing"
)

func TestMemorySetGetDelete(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("words")

	if err := col.Set(ctx, "1", map[string]any{"id": int64(1), "name": "fever"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	doc, ok, err := col.Get(ctx, "1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if doc.Data["name"] != "fever" {
		t.Fatalf("name = %v", doc.Data["name"])
	}

	// Mutating the returned copy must not leak into the store.
	doc.Data["name"] = "mutated"
	doc2, _, _ := col.Get(ctx, "1")
	if doc2.Data["name"] != "fever" {
		t.Fatalf("stored document mutated through read copy: %v", doc2.Data["name"])
	}

	if err := col.Delete(ctx, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := col.Get(ctx, "1"); ok {
		t.Fatal("document still present after delete")
	}
	// Deleting a missing key is not an error.
	if err := col.Delete(ctx, "1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryStreamOrder(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("books")

	for _, key := range []string{"b", "a", "c"} {
		if err := col.Set(ctx, key, map[string]any{"title": key}); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	// Overwrite must not change position.
	if err := col.Set(ctx, "a", map[string]any{"title": "a2"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	docs, err := col.Stream(ctx)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	want := []string{"b", "a", "c"}
	if len(docs) != len(want) {
		t.Fatalf("len = %d, want %d", len(docs), len(want))
	}
	for i, doc := range docs {
		if doc.Key != want[i] {
			t.Fatalf("docs[%d].Key = %s, want %s", i, doc.Key, want[i])
		}
	}
}

func TestMemoryAddAssignsDistinctKeys(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("questions")

	k1, err := col.Add(ctx, map[string]any{"text": "one"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	k2, err := col.Add(ctx, map[string]any{"text": "two"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if k1 == "" || k1 == k2 {
		t.Fatalf("keys not distinct: %q %q", k1, k2)
	}
	if _, ok, _ := col.Get(ctx, k1); !ok {
		t.Fatal("added document not retrievable")
	}
}

func TestMemoryQueryMatchesAcrossRepresentations(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("drugs")

	_ = col.Set(ctx, "7", map[string]any{"id": int64(7), "name": "a"})
	_ = col.Set(ctx, "8", map[string]any{"id": float64(8), "name": "b"})
	_ = col.Set(ctx, "x", map[string]any{"name": "no id"})

	docs, err := col.Query(ctx, "id", int64(8))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 1 || docs[0].Key != "8" {
		t.Fatalf("query by float-stored id: %+v", docs)
	}

	docs, err = col.Query(ctx, "id", int64(9))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no matches, got %d", len(docs))
	}
}
