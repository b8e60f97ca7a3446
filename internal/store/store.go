// Package store implements the ordered, id-keyed collections that hold the
// client's local view of server-owned entities.
//
// A collection has a single writer (the reconciler); everything else only
// reads. Every successful upsert emits exactly one change notification so the
// render layer can redraw just the affected entity.
package store

import (
	"errors"
	"iter"
	"sort"
	"sync"
)

// ErrInvalidEntity is returned for upserts of entities without an id.
var ErrInvalidEntity = errors.New("entity has no id")

// Entity is the constraint for collection members.
type Entity[T any] interface {
	// Key returns the unique, immutable identifier. Zero means unassigned.
	Key() int64
	// Merge applies the incoming entity's non-absent fields to the receiver.
	Merge(in T)
}

// ChangeKind describes what an upsert did.
type ChangeKind int

const (
	// Created means the entity was inserted.
	Created ChangeKind = iota + 1
	// Updated means the entity existed and was merged into.
	Updated
)

// Change is the result of a successful upsert.
type Change[T any] struct {
	// Kind reports whether the upsert inserted or merged.
	Kind ChangeKind
	// Entity is the stored entity after the upsert. It is owned by the
	// collection; callers must treat it as read-only.
	Entity T
}

// Collection is an ordered, id-keyed container of entities.
//
// When constructed with a compare function, new entities are inserted at
// their sorted position and keep that position on later updates. With a nil
// compare function the order is insertion order.
type Collection[T Entity[T]] struct {
	mu       sync.RWMutex
	byID     map[int64]T
	order    []int64
	cmp      func(a, b T) int
	onChange func(Change[T])
}

// New creates a collection. cmp determines the display order of newly
// inserted entities; nil means insertion order.
func New[T Entity[T]](cmp func(a, b T) int) *Collection[T] {
	return &Collection[T]{
		byID: make(map[int64]T),
		cmp:  cmp,
	}
}

// OnChange registers the change notification callback. It is invoked
// synchronously, exactly once per successful upsert, while the collection
// lock is not held. Only one callback may be registered; registration must
// happen before the first upsert.
func (c *Collection[T]) OnChange(fn func(Change[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Upsert inserts the entity, or merges it into an existing entity with the
// same id. Entities without an id are rejected with ErrInvalidEntity and no
// mutation occurs.
func (c *Collection[T]) Upsert(in T) (Change[T], error) {
	if in.Key() == 0 {
		return Change[T]{}, ErrInvalidEntity
	}

	c.mu.Lock()
	id := in.Key()
	existing, ok := c.byID[id]
	var change Change[T]
	if ok {
		existing.Merge(in)
		change = Change[T]{Kind: Updated, Entity: existing}
	} else {
		c.byID[id] = in
		c.insertOrdered(in)
		change = Change[T]{Kind: Created, Entity: in}
	}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(change)
	}
	return change, nil
}

// insertOrdered places the id at its ordered position. Caller holds the lock.
func (c *Collection[T]) insertOrdered(in T) {
	if c.cmp == nil {
		c.order = append(c.order, in.Key())
		return
	}
	pos := sort.Search(len(c.order), func(i int) bool {
		return c.cmp(c.byID[c.order[i]], in) > 0
	})
	c.order = append(c.order, 0)
	copy(c.order[pos+1:], c.order[pos:])
	c.order[pos] = in.Key()
}

// Get returns the entity with the given id.
func (c *Collection[T]) Get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e, ok
}

// Len returns the number of entities in the collection.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// IndexOf returns the position of the id in the collection order, or -1.
func (c *Collection[T]) IndexOf(id int64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, v := range c.order {
		if v == id {
			return i
		}
	}
	return -1
}

// At returns the entity at the given ordered position.
func (c *Collection[T]) At(i int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.order) {
		var zero T
		return zero, false
	}
	return c.byID[c.order[i]], true
}

// All returns a restartable sequence of entities in collection order. The
// sequence iterates over a snapshot of the order taken when iteration starts,
// so concurrent upserts do not invalidate it.
func (c *Collection[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		c.mu.RLock()
		ids := make([]int64, len(c.order))
		copy(ids, c.order)
		c.mu.RUnlock()

		for _, id := range ids {
			e, ok := c.Get(id)
			if !ok {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}
