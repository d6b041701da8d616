package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderIDsAreNegative(t *testing.T) {
	t.Parallel()

	gen := NewPlaceholderIDs(nil)
	id := gen.Next()

	assert.Negative(t, id)
	assert.True(t, IsPlaceholderID(id))
}

func TestPlaceholderIDsDistinctWithinSameMillisecond(t *testing.T) {
	t.Parallel()

	frozen := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	gen := NewPlaceholderIDs(func() time.Time { return frozen })

	seen := make(map[int64]struct{})
	for i := 0; i < 100; i++ {
		id := gen.Next()
		require.True(t, IsPlaceholderID(id))
		_, dup := seen[id]
		require.False(t, dup, "placeholder id %d issued twice", id)
		seen[id] = struct{}{}
	}
}

func TestPlaceholderIDsFollowClock(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	gen := NewPlaceholderIDs(func() time.Time { return current })

	first := gen.Next()
	current = current.Add(time.Second)
	second := gen.Next()

	assert.Equal(t, -current.UnixMilli(), second)
	assert.Less(t, second, first)
}

func TestIsPlaceholderID(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPlaceholderID(-1))
	assert.False(t, IsPlaceholderID(0))
	assert.False(t, IsPlaceholderID(42))
}
