package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store. Fields go through the same JSON encoding as
// the PostgreSQL store so both return identical shapes.
type Memory struct {
	mu    sync.RWMutex
	now   func() time.Time
	colls map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string]memDoc
}

type memDoc struct {
	raw       []byte
	createdAt time.Time
	updatedAt time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for stamping documents.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{now: time.Now, colls: map[string]*memCollection{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) collection(name string) *memCollection {
	c, ok := m.colls[name]
	if !ok {
		c = &memCollection{docs: map[string]memDoc{}}
		m.colls[name] = c
	}
	return c
}

func (m *Memory) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.colls[collection]
	if !ok {
		return nil, ErrNotFound
	}
	d, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.document(id)
}

func (m *Memory) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateFilters(filters); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.colls[collection]
	if !ok {
		return nil, nil
	}
	var out []Document
	for _, id := range c.order {
		doc, err := c.docs[id].document(id)
		if err != nil {
			return nil, err
		}
		if matches(doc, filters) {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	if err := m.InsertWithID(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) InsertWithID(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection)
	if _, exists := c.docs[id]; exists {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
	}
	now := m.now()
	c.docs[id] = memDoc{raw: raw, createdAt: now, updatedAt: now}
	c.order = append(c.order, id)
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.colls[collection]
	if !ok {
		return ErrNotFound
	}
	d, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	current, err := decodeFields(d.raw)
	if err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}
	raw, err := encodeFields(current)
	if err != nil {
		return err
	}
	d.raw = raw
	d.updatedAt = m.now()
	c.docs[id] = d
	return nil
}

func (d memDoc) document(id string) (*Document, error) {
	fields, err := decodeFields(d.raw)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Fields: fields, CreatedAt: d.createdAt, UpdatedAt: d.updatedAt}, nil
}

func matches(doc *Document, filters []Filter) bool {
	for _, f := range filters {
		var got string
		if f.Field == IDField {
			got = doc.ID
		} else {
			v, ok := textValue(doc.Fields[f.Field])
			if !ok {
				return false
			}
			got = v
		}
		switch f.Op {
		case OpEq:
			if got != f.Value {
				return false
			}
		case OpIn:
			found := false
			for _, want := range f.Values {
				if got == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

var _ Store = (*Memory)(nil)
