package insights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ByteCache is the subset of utils.RedisCache used here.
type ByteCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool)
	SetBytes(ctx context.Context, key string, b []byte, ttl time.Duration)
}

// CachingGenerator reuses text generated for an identical prompt within ttl.
// The prompt is a pure function of the aggregate, so a hit means the data is unchanged.
type CachingGenerator struct {
	next  Generator
	cache ByteCache
	ttl   time.Duration
}

// NewCachingGenerator wraps next.
func NewCachingGenerator(next Generator, cache ByteCache, ttl time.Duration) *CachingGenerator {
	return &CachingGenerator{next: next, cache: cache, ttl: ttl}
}

func (g *CachingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	sum := sha256.Sum256([]byte(prompt))
	key := hex.EncodeToString(sum[:])
	if b, ok := g.cache.GetBytes(ctx, key); ok && len(b) > 0 {
		return string(b), nil
	}

	text, err := g.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	g.cache.SetBytes(ctx, key, []byte(text), g.ttl)
	return text, nil
}
