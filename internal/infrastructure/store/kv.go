package store

import (
	"sync"
)

// MemKV is an in-memory key-value store with bucket namespaces. It backs
// per-session state that has no durability requirement: guest carts and
// assistant conversation windows.
type MemKV struct {
	mu   sync.RWMutex
	data map[string]map[string]any // bucket -> key -> value
}

func NewMemKV() *MemKV {
	return &MemKV{
		data: make(map[string]map[string]any),
	}
}

// Set stores a value under bucket/key.
func (kv *MemKV) Set(bucket, key string, value any) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.data[bucket] == nil {
		kv.data[bucket] = make(map[string]any)
	}
	kv.data[bucket][key] = value
}

// Get retrieves a value by bucket/key.
func (kv *MemKV) Get(bucket, key string) (any, bool) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	if kv.data[bucket] == nil {
		return nil, false
	}
	value, ok := kv.data[bucket][key]
	return value, ok
}

// Delete removes a value.
func (kv *MemKV) Delete(bucket, key string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.data[bucket] != nil {
		delete(kv.data[bucket], key)
	}
}

// Update applies fn to the current value under bucket/key while holding the
// write lock, so concurrent mutations of the same entry do not interleave.
func (kv *MemKV) Update(bucket, key string, fn func(current any) any) bool {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.data[bucket] == nil {
		return false
	}
	current, ok := kv.data[bucket][key]
	if !ok {
		return false
	}
	kv.data[bucket][key] = fn(current)
	return true
}
