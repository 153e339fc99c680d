package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory[string](time.Minute)

	m.Set("AAPL", "hello")

	v, ok := m.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestMemory_KeysAreCaseInsensitive(t *testing.T) {
	m := NewMemory[int](time.Minute)

	m.Set("aapl", 42)

	v, ok := m.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestMemory_MissReturnsZeroValue(t *testing.T) {
	m := NewMemory[string](time.Minute)

	v, ok := m.Get("MSFT")
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory[string](time.Minute)

	m.SetWithTTL("AAPL", "stale", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := m.Get("AAPL")
	assert.False(t, ok)

	// Lazy purge removed the entry on read.
	assert.Equal(t, 0, m.Len())
}

func TestMemory_OverwriteRefreshes(t *testing.T) {
	m := NewMemory[string](time.Minute)

	m.SetWithTTL("AAPL", "old", 10*time.Millisecond)
	m.Set("AAPL", "new")
	time.Sleep(20 * time.Millisecond)

	v, ok := m.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory[string](time.Minute)

	m.Set("AAPL", "x")
	m.Delete("aapl")

	_, ok := m.Get("AAPL")
	assert.False(t, ok)
}

func TestMemory_DefaultTTLFallback(t *testing.T) {
	m := NewMemory[string](0)
	assert.Equal(t, DefaultMemoryTTL, m.ttl)
}
