package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "courses:list:1", []string{"a", "b"}, 0))

	var got []string
	require.NoError(t, m.Get(ctx, "courses:list:1", &got))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMemoryMiss(t *testing.T) {
	m := NewMemory(time.Minute)

	var got string
	err := m.Get(context.Background(), "nope", &got)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestMemoryMaxAgeExpiry(t *testing.T) {
	m := NewMemory(time.Second)
	ctx := context.Background()

	current := time.Unix(1000, 0)
	m.now = func() time.Time { return current }

	require.NoError(t, m.Set(ctx, "k", 42, 0))

	var got int
	require.NoError(t, m.Get(ctx, "k", &got))
	assert.Equal(t, 42, got)

	current = current.Add(2 * time.Second)
	err := m.Get(ctx, "k", &got)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestMemoryTTLNeverExceedsMaxAge(t *testing.T) {
	m := NewMemory(time.Second)
	ctx := context.Background()

	current := time.Unix(1000, 0)
	m.now = func() time.Time { return current }

	require.NoError(t, m.Set(ctx, "k", 1, time.Hour))
	current = current.Add(2 * time.Second)

	var got int
	assert.ErrorIs(t, m.Get(ctx, "k", &got), appErrors.ErrCacheMiss)
}

func TestMemoryDeleteByPattern(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "courses:list:1", 1, 0))
	require.NoError(t, m.Set(ctx, "courses:count", 2, 0))
	require.NoError(t, m.Set(ctx, "users:list:1", 3, 0))

	require.NoError(t, m.DeleteByPattern(ctx, "courses:*"))

	var got int
	assert.ErrorIs(t, m.Get(ctx, "courses:list:1", &got), appErrors.ErrCacheMiss)
	assert.ErrorIs(t, m.Get(ctx, "courses:count", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, m.Get(ctx, "users:list:1", &got))

	require.NoError(t, m.DeleteByPattern(ctx, "users:list:1"))
	assert.ErrorIs(t, m.Get(ctx, "users:list:1", &got), appErrors.ErrCacheMiss)
}
