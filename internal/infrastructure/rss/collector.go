package rss

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsTrendMonitor/internal/domain"
	"NewsTrendMonitor/internal/ports"
)

// Collector pulls keyword-filtered items from a configured set of RSS feeds.
// Each feed is retried independently; one broken feed never fails the rest.
type Collector struct {
	feedURLs   []string
	retryCount int
	retryDelay time.Duration
	parser     *gofeed.Parser
	logger     *slog.Logger
}

var _ ports.Collector = (*Collector)(nil)

// NewCollector wires the feed list; retryCount defaults to 3.
func NewCollector(feedURLs []string, retryCount int, retryDelay time.Duration, logger *slog.Logger) *Collector {
	if retryCount < 1 {
		retryCount = 3
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &Collector{
		feedURLs:   feedURLs,
		retryCount: retryCount,
		retryDelay: retryDelay,
		parser:     gofeed.NewParser(),
		logger:     logger,
	}
}

// Name identifies the collector in pipeline logs.
func (c *Collector) Name() string {
	return "rss"
}

// Collect walks every configured feed, keeps entries mentioning the keyword,
// deduplicates by link preserving arrival order, and caps at maxResults.
// Per-feed failures are logged and skipped.
func (c *Collector) Collect(ctx context.Context, keyword string, maxResults int) ([]domain.NewsItem, error) {
	if len(c.feedURLs) == 0 {
		return nil, fmt.Errorf("no rss feeds configured")
	}

	results := make([]domain.NewsItem, 0)
	seen := map[string]struct{}{}

	for _, feedURL := range c.feedURLs {
		feed, err := c.fetchFeed(ctx, feedURL)
		if err != nil {
			c.warn("feed fetch failed", "url", feedURL, "error", err)
			continue
		}

		for _, entry := range feed.Items {
			if len(results) >= maxResults {
				break
			}

			item, ok := c.toNewsItem(feed, entry, keyword)
			if !ok {
				continue
			}
			if _, dup := seen[item.Link]; dup {
				continue
			}
			seen[item.Link] = struct{}{}
			results = append(results, item)
		}

		c.debug("feed collected", "url", feedURL, "total", len(results))
	}

	return results, nil
}

func (c *Collector) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryCount; attempt++ {
		feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
		if err == nil {
			return feed, nil
		}
		lastErr = err

		if attempt < c.retryCount {
			c.warn("feed fetch retry", "url", feedURL, "attempt", attempt, "error", err)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("fetch feed %s: %w", feedURL, lastErr)
}

func (c *Collector) toNewsItem(feed *gofeed.Feed, entry *gofeed.Item, keyword string) (domain.NewsItem, bool) {
	if entry.Link == "" {
		return domain.NewsItem{}, false
	}

	if keyword != "" && !matchesKeyword(entry, keyword) {
		return domain.NewsItem{}, false
	}

	publishedAt := time.Now().UTC()
	if entry.PublishedParsed != nil {
		publishedAt = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		publishedAt = entry.UpdatedParsed.UTC()
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}

	return domain.NewsItem{
		Title:       entry.Title,
		Link:        entry.Link,
		Summary:     summary,
		Source:      feed.Title,
		Category:    strings.Join(entry.Categories, ", "),
		Keyword:     keyword,
		PublishedAt: publishedAt,
		CollectedAt: time.Now().UTC(),
	}, true
}

func matchesKeyword(entry *gofeed.Item, keyword string) bool {
	needle := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(entry.Title), needle) ||
		strings.Contains(strings.ToLower(entry.Description), needle)
}

func (c *Collector) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Collector) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
