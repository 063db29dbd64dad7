package tools

import (
	"context"
	"encoding/json"
	"time"
)

// ResultCache stores tool results keyed by tool name and arguments.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedTool serves repeated invocations from a ResultCache. Failed
// invocations are never stored.
type CachedTool struct {
	Tool
	cache ResultCache
	ttl   time.Duration
}

func Cached(t Tool, cache ResultCache, ttl time.Duration) Tool {
	if cache == nil {
		return t
	}
	return &CachedTool{Tool: t, cache: cache, ttl: ttl}
}

func (c *CachedTool) invocable() bool {
	return c != nil && invocable(c.Tool)
}

func (c *CachedTool) Invoke(ctx context.Context, args map[string]string) (string, error) {
	key := CacheKey(c.Name(), args)

	// cache errors degrade to a direct call
	if v, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return v, nil
	}

	out, err := c.Tool.Invoke(ctx, args)
	if err != nil {
		return "", err
	}
	_ = c.cache.Put(ctx, key, out, c.ttl)
	return out, nil
}

// CacheKey is stable for equal argument maps.
func CacheKey(tool string, args map[string]string) string {
	if args == nil {
		args = map[string]string{}
	}
	b, _ := json.Marshal(args) // map keys are emitted sorted
	return tool + ":" + string(b)
}
