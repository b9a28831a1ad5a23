package lru

import (
	"container/list"
	"sync"
)

type entry struct {
	key   string
	value string
}

// Cache is a fixed-capacity LRU map from string to string. It is safe for
// concurrent use. When full, inserting a new key evicts the least recently
// used one.
type Cache struct {
	mu    sync.Mutex
	size  int
	order *list.List
	items map[string]*list.Element
}

// New creates a cache holding at most size entries. Sizes below one are
// clamped to one.
func New(size int) *Cache {
	if size < 1 {
		size = 1
	}
	return &Cache{
		size:  size,
		order: list.New(),
		items: make(map[string]*list.Element, size),
	}
}

// Get returns the cached value and marks the key as recently used.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Set inserts or updates a key, evicting the oldest entry when full.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.size {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
	c.items[key] = c.order.PushFront(&entry{key: key, value: value})
}

// Delete removes a key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
