package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/marginote/marginote/internal/pkg/logutil"
)

type ReadabilityExtractor struct {
	timeout time.Duration
}

func NewReadabilityExtractor(timeout time.Duration) *ReadabilityExtractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ReadabilityExtractor{timeout: timeout}
}

func (e *ReadabilityExtractor) ExtractFromURL(ctx context.Context, pageURL string) (*Metadata, error) {
	article, err := readability.FromURL(pageURL, e.timeout)
	if err != nil {
		logutil.GetLogger(ctx).Warn("readability fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil, fmt.Errorf("fetch article %s: %w", pageURL, err)
	}
	return toMetadata(article), nil
}

func (e *ReadabilityExtractor) ExtractFromHTML(ctx context.Context, html string, pageURL string) (*Metadata, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		logutil.GetLogger(ctx).Warn("readability parse failed", zap.String("url", pageURL), zap.Error(err))
		return nil, fmt.Errorf("parse article html: %w", err)
	}
	return toMetadata(article), nil
}

func toMetadata(article readability.Article) *Metadata {
	meta := &Metadata{
		Title:       article.Title,
		Author:      article.Byline,
		Description: article.Excerpt,
		Publication: article.SiteName,
		Image:       article.Image,
		Content:     strings.TrimSpace(article.TextContent),
		HTMLContent: article.Content,
		WordCount:   len(strings.Fields(article.TextContent)),
	}
	if article.PublishedTime != nil {
		meta.PublishedDate = article.PublishedTime.Format(time.RFC3339)
	}
	return meta
}
