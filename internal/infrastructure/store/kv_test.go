package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemKV_SetGet(t *testing.T) {
	kv := NewMemKV()

	kv.Set("sessions", "s1", "value-1")

	got, ok := kv.Get("sessions", "s1")
	require.True(t, ok)
	assert.Equal(t, "value-1", got)
}

func TestMemKV_GetMissing(t *testing.T) {
	kv := NewMemKV()

	_, ok := kv.Get("sessions", "nope")
	assert.False(t, ok)

	kv.Set("sessions", "s1", "v")
	_, ok = kv.Get("sessions", "nope")
	assert.False(t, ok)
}

func TestMemKV_BucketsAreIsolated(t *testing.T) {
	kv := NewMemKV()

	kv.Set("carts", "k", "cart-value")
	kv.Set("sessions", "k", "session-value")

	got, _ := kv.Get("carts", "k")
	assert.Equal(t, "cart-value", got)
	got, _ = kv.Get("sessions", "k")
	assert.Equal(t, "session-value", got)

	kv.Delete("carts", "k")
	_, ok := kv.Get("carts", "k")
	assert.False(t, ok)
	_, ok = kv.Get("sessions", "k")
	assert.True(t, ok)
}

func TestMemKV_SetOverwrites(t *testing.T) {
	kv := NewMemKV()

	kv.Set("carts", "k", 1)
	kv.Set("carts", "k", 2)

	got, _ := kv.Get("carts", "k")
	assert.Equal(t, 2, got)
}

func TestMemKV_DeleteMissingIsNoop(t *testing.T) {
	kv := NewMemKV()
	kv.Delete("carts", "nope")
}

func TestMemKV_Update(t *testing.T) {
	kv := NewMemKV()
	kv.Set("counters", "c", 1)

	ok := kv.Update("counters", "c", func(current any) any {
		return current.(int) + 1
	})

	require.True(t, ok)
	got, _ := kv.Get("counters", "c")
	assert.Equal(t, 2, got)
}

func TestMemKV_UpdateMissing(t *testing.T) {
	kv := NewMemKV()

	ok := kv.Update("counters", "nope", func(current any) any { return 1 })
	assert.False(t, ok)

	_, found := kv.Get("counters", "nope")
	assert.False(t, found)
}

func TestMemKV_ConcurrentUpdates(t *testing.T) {
	kv := NewMemKV()
	kv.Set("counters", "c", 0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kv.Update("counters", "c", func(current any) any {
				return current.(int) + 1
			})
		}()
	}
	wg.Wait()

	got, _ := kv.Get("counters", "c")
	assert.Equal(t, 100, got)
}
