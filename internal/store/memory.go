package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and credential-less development
// runs. Documents are kept per collection in insertion order.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memCollection)}
}

// Collection returns a handle for the named collection, creating it lazily.
func (m *Memory) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]map[string]any)}
		m.collections[name] = c
	}
	return c
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }

type memCollection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]map[string]any
}

func (c *memCollection) Stream(_ context.Context) ([]Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Document, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, Document{Key: key, Data: cloneData(c.docs[key])})
	}
	return out, nil
}

func (c *memCollection) Get(_ context.Context, key string) (Document, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.docs[key]
	if !ok {
		return Document{}, false, nil
	}
	return Document{Key: key, Data: cloneData(data)}, true, nil
}

func (c *memCollection) Set(_ context.Context, key string, data map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[key]; !exists {
		c.order = append(c.order, key)
	}
	c.docs[key] = cloneData(data)
	return nil
}

func (c *memCollection) Add(ctx context.Context, data map[string]any) (string, error) {
	key := uuid.NewString()
	return key, c.Set(ctx, key, data)
}

func (c *memCollection) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[key]; !exists {
		return nil
	}
	delete(c.docs, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *memCollection) Query(_ context.Context, field string, value any) ([]Document, error) {
	want := textValue(value)
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Document
	for _, key := range c.order {
		data := c.docs[key]
		got, ok := data[field]
		if !ok {
			continue
		}
		if textValue(got) == want {
			out = append(out, Document{Key: key, Data: cloneData(data)})
		}
	}
	return out, nil
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
