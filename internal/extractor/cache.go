package extractor

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/marginote/marginote/internal/pkg/logutil"
)

type urlExtractor interface {
	ExtractFromURL(ctx context.Context, pageURL string) (*Metadata, error)
	ExtractFromHTML(ctx context.Context, html string, pageURL string) (*Metadata, error)
}

// WrapLRUCache memoizes URL extraction results. Saving the same article twice
// within the TTL does not refetch it.
func WrapLRUCache(next urlExtractor, size int, ttl time.Duration) urlExtractor {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &cachedExtractor{
		next:  next,
		cache: expirable.NewLRU[string, *Metadata](size, nil, ttl),
	}
}

type cachedExtractor struct {
	next  urlExtractor
	cache *expirable.LRU[string, *Metadata]
}

func (c *cachedExtractor) ExtractFromURL(ctx context.Context, pageURL string) (*Metadata, error) {
	if cached, ok := c.cache.Get(pageURL); ok {
		logutil.GetLogger(ctx).Debug("extraction cache hit", zap.String("url", pageURL))
		clone := *cached
		return &clone, nil
	}
	meta, err := c.next.ExtractFromURL(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	clone := *meta
	c.cache.Add(pageURL, &clone)
	return meta, nil
}

func (c *cachedExtractor) ExtractFromHTML(ctx context.Context, html string, pageURL string) (*Metadata, error) {
	return c.next.ExtractFromHTML(ctx, html, pageURL)
}
