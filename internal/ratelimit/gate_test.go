package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_FirstCallDoesNotBlock(t *testing.T) {
	g := NewGate(time.Second)

	start := time.Now()
	err := g.Wait(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestGate_EnforcesInterval(t *testing.T) {
	g := NewGate(50 * time.Millisecond)

	require.NoError(t, g.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, g.Wait(context.Background()))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestGate_ContextCancellation(t *testing.T) {
	g := NewGate(5 * time.Second)

	require.NoError(t, g.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGate_SerializesConcurrentCallers(t *testing.T) {
	g := NewGate(20 * time.Millisecond)

	const callers = 5
	var mu sync.Mutex
	var stamps []time.Time

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, g.Wait(context.Background()))
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, stamps, callers)

	// Total span must cover at least (callers-1) full intervals.
	var min, max time.Time
	for _, s := range stamps {
		if min.IsZero() || s.Before(min) {
			min = s
		}
		if s.After(max) {
			max = s
		}
	}
	assert.GreaterOrEqual(t, max.Sub(min), time.Duration(callers-2)*20*time.Millisecond)
}

func TestGate_Interval(t *testing.T) {
	g := NewGate(400 * time.Millisecond)
	assert.Equal(t, 400*time.Millisecond, g.Interval())
}
