package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	entries map[string]string
	puts    int
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Put(_ context.Context, key, value string, _ time.Duration) error {
	m.puts++
	m.entries[key] = value
	return nil
}

func TestCached(t *testing.T) {
	calls := 0
	fail := false
	inner := Func("lookup", "", []string{"q"}, func(_ context.Context, args map[string]string) (string, error) {
		calls++
		if fail {
			return "", errors.New("down")
		}
		return "result for " + args["q"], nil
	})

	cache := &memoryCache{entries: map[string]string{}}
	tool := Cached(inner, cache, time.Minute)
	assert.Equal(t, "lookup", tool.Name())

	for i := 0; i < 2; i++ {
		out, err := tool.Invoke(context.Background(), map[string]string{"q": "a"})
		require.NoError(t, err)
		assert.Equal(t, "result for a", out)
	}
	assert.Equal(t, 1, calls)

	fail = true
	_, err := tool.Invoke(context.Background(), map[string]string{"q": "b"})
	assert.Error(t, err)
	assert.Equal(t, 1, cache.puts)
}

func TestCached_NilCache(t *testing.T) {
	inner := echoTool()
	assert.Same(t, Tool(inner), Cached(inner, nil, time.Minute))
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("t", map[string]string{"x": "1", "y": "2"})
	b := CacheKey("t", map[string]string{"y": "2", "x": "1"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, CacheKey("u", map[string]string{"x": "1", "y": "2"}))
	assert.Equal(t, "t:{}", CacheKey("t", nil))
}
