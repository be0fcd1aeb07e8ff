package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Golang release announced</title>
      <link>https://example.com/go-release</link>
      <description>The Go team shipped a new version.</description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Golang release announced</title>
      <link>https://example.com/go-release</link>
      <description>Duplicate entry.</description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Unrelated cooking story</title>
      <link>https://example.com/cooking</link>
      <description>Nothing to do with programming.</description>
      <pubDate>Mon, 02 Mar 2026 11:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No link entry about golang</title>
      <description>golang mentioned but entry has no link.</description>
    </item>
  </channel>
</rss>`

func TestCollectFiltersAndDeduplicates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	c := NewCollector([]string{server.URL}, 1, time.Millisecond, nil)

	items, err := c.Collect(context.Background(), "golang", 100)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item after filter and dedup, got %d", len(items))
	}

	got := items[0]
	if got.Link != "https://example.com/go-release" {
		t.Fatalf("unexpected link: %s", got.Link)
	}
	if got.Source != "Test Feed" {
		t.Fatalf("unexpected source: %s", got.Source)
	}
	if got.Keyword != "golang" {
		t.Fatalf("unexpected keyword: %s", got.Keyword)
	}
	if got.PublishedAt.IsZero() {
		t.Fatal("published time should be set")
	}
}

func TestCollectCapsResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	c := NewCollector([]string{server.URL}, 1, time.Millisecond, nil)

	// Empty keyword matches everything; cap of 1 keeps only the first entry.
	items, err := c.Collect(context.Background(), "", 1)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected cap of 1, got %d", len(items))
	}
}

func TestCollectSkipsBrokenFeed(t *testing.T) {
	t.Parallel()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedXML))
	}))
	defer healthy.Close()

	c := NewCollector([]string{broken.URL, healthy.URL}, 1, time.Millisecond, nil)

	items, err := c.Collect(context.Background(), "golang", 100)
	if err != nil {
		t.Fatalf("one broken feed must not fail the run: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected items from the healthy feed, got %d", len(items))
	}
}

func TestCollectNoFeedsConfigured(t *testing.T) {
	t.Parallel()

	c := NewCollector(nil, 1, time.Millisecond, nil)
	if _, err := c.Collect(context.Background(), "golang", 100); err == nil {
		t.Fatal("expected error with no feeds configured")
	}
}
