package client

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key identifies one cached resource: a collection (empty ID), a single
// item, or a subresource of an item.
type Key struct {
	Resource string
	ID       string
	Sub      string
}

func (k Key) String() string {
	return k.Resource + "/" + k.ID + "/" + k.Sub
}

func ResumesKey() Key                 { return Key{Resource: "resumes"} }
func ResumeKey(id string) Key          { return Key{Resource: "resumes", ID: id} }
func SectionsKey(resumeID string) Key  { return Key{Resource: "resumes", ID: resumeID, Sub: "sections"} }
func VersionsKey(resumeID string) Key  { return Key{Resource: "resumes", ID: resumeID, Sub: "versions"} }
func DocumentsKey(resumeID string) Key { return Key{Resource: "resumes", ID: resumeID, Sub: "documents"} }
func TemplatesKey() Key                { return Key{Resource: "templates"} }

func HistoryKey(resumeID, sectionID string) Key {
	return Key{Resource: "resumes", ID: resumeID, Sub: "sections/" + sectionID + "/history"}
}

// Cache holds the last authoritative (or optimistic) value per Key.
//
// Every write or invalidation of a key bumps its generation. A load records
// the generation it started under and only stores its result if that
// generation is still current, so a response that raced with a mutation never
// overwrites newer state. Concurrent loads of one key under one generation
// share a single request.
type Cache struct {
	mu     sync.Mutex
	values map[Key]any
	gens   map[Key]uint64
	group  singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		values: map[Key]any{},
		gens:   map[Key]uint64{},
	}
}

// Get returns the cached value for key.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Set stores v and supersedes any load in flight for key.
func (c *Cache) Set(key Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = v
	c.gens[key]++
}

// Update atomically replaces the value for key with fn's result and returns
// the generation of the write. When fn returns false the cache is left
// untouched and ok is false.
func (c *Cache) Update(key Key, fn func(current any, ok bool) (any, bool)) (gen uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, exists := c.values[key]
	next, write := fn(current, exists)
	if !write {
		return 0, false
	}
	c.values[key] = next
	c.gens[key]++
	return c.gens[key], true
}

// Rollback puts prev back if key still holds the write made at gen. When
// anything else touched key since, the key is invalidated instead so the
// next load fetches the server's state.
func (c *Cache) Rollback(key Key, gen uint64, prev any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	if c.gens[key]-1 == gen {
		c.values[key] = prev
		return
	}
	delete(c.values, key)
}

// Invalidate drops the given keys so the next load refetches them.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.values, key)
		c.gens[key]++
	}
}

// InvalidateUnless drops key when anything wrote or invalidated it after
// gen. A confirmed mutation uses it to discard values loaded while it ran.
func (c *Cache) InvalidateUnless(key Key, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] == gen {
		return
	}
	delete(c.values, key)
	c.gens[key]++
}

// InvalidateItem drops an item and every subresource cached under it.
func (c *Cache) InvalidateItem(resource, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.values {
		if key.Resource == resource && key.ID == id {
			delete(c.values, key)
		}
	}
	for key := range c.gens {
		if key.Resource == resource && key.ID == id {
			c.gens[key]++
		}
	}
	c.gens[Key{Resource: resource, ID: id}]++
}

func (c *Cache) generation(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

// Load returns the cached value for key or fetches it. The fetch outlives a
// canceled caller so that other waiters on the same key still get a result.
func (c *Cache) Load(ctx context.Context, key Key, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	gen := c.generation(key)
	flight := fmt.Sprintf("%s@%d", key, gen)
	fetchCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(flight, func() (any, error) {
		// A flight that finished between our miss and DoChan already stored it.
		c.mu.Lock()
		if v, ok := c.values[key]; ok && c.gens[key] == gen {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[key] == gen {
			c.values[key] = v
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// loadList is Load for slice values. Callers get their own copy.
func loadList[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) ([]T, error)) ([]T, error) {
	v, err := c.Load(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	items, _ := v.([]T)
	return slices.Clone(items), nil
}

func loadOne[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Load(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	item, _ := v.(T)
	return item, nil
}

// Peek returns a copy of the cached list for key, if any.
func Peek[T any](c *Cache, key Key) ([]T, bool) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	items, ok := v.([]T)
	if !ok {
		return nil, false
	}
	return slices.Clone(items), true
}
