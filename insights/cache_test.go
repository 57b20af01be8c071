package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	data map[string][]byte
	ttls []time.Duration
}

func (m *mapCache) GetBytes(_ context.Context, key string) ([]byte, bool) {
	b, ok := m.data[key]
	return b, ok
}

func (m *mapCache) SetBytes(_ context.Context, key string, b []byte, ttl time.Duration) {
	m.data[key] = b
	m.ttls = append(m.ttls, ttl)
}

func TestCachingGenerator(t *testing.T) {
	t.Parallel()

	calls := 0
	next := GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		calls++
		return "- " + prompt, nil
	})
	cache := &mapCache{data: map[string][]byte{}}
	g := NewCachingGenerator(next, cache, 5*time.Minute)
	ctx := context.Background()

	first, err := g.Generate(ctx, "a")
	require.NoError(t, err)
	second, err := g.Generate(ctx, "a")
	require.NoError(t, err)
	other, err := g.Generate(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, "- a", first)
	assert.Equal(t, first, second)
	assert.Equal(t, "- b", other)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{5 * time.Minute, 5 * time.Minute}, cache.ttls)
}

func TestCachingGenerator_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	boom := errors.New("throttled")
	next := GeneratorFunc(func(context.Context, string) (string, error) { return "", boom })
	cache := &mapCache{data: map[string][]byte{}}

	_, err := NewCachingGenerator(next, cache, time.Minute).Generate(context.Background(), "a")

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, cache.data)
}
