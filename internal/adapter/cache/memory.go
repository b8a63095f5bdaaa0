package cache

import (
	"context"
	"sync"
)

// Memory is a bounded, thread-safe LRU cache. Values do not survive a
// process restart.
type Memory[T any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[T]
	head       *entry[T] // most recently used
	tail       *entry[T] // least recently used
}

type entry[T any] struct {
	key   string
	value T
	prev  *entry[T]
	next  *entry[T]
}

// NewMemory creates an LRU cache holding at most maxEntries values.
func NewMemory[T any](maxEntries int) *Memory[T] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Memory[T]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[T]),
	}
}

// Read returns the cached value for key. It never fails.
func (c *Memory[T]) Read(_ context.Context, key string) (T, bool, error) {
	v, ok := c.get(key)
	return v, ok, nil
}

// Write stores value under key, replacing any previous value.
func (c *Memory[T]) Write(_ context.Context, key string, value T) error {
	c.put(key, value)
	return nil
}

// Len returns the number of cached entries.
func (c *Memory[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Memory[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *Memory[T]) put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[T]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *Memory[T]) moveToFront(e *entry[T]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Memory[T]) addToFront(e *entry[T]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Memory[T]) remove(e *entry[T]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *Memory[T]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
