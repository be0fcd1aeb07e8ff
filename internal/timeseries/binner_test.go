package timeseries

import (
	"math"
	"testing"
	"time"

	"NewsTrendMonitor/internal/domain"
)

func item(ts time.Time, score, confidence float64) domain.ScoredItem {
	return domain.ScoredItem{
		NewsItem:       domain.NewsItem{PublishedAt: ts},
		SentimentScore: score,
		Confidence:     confidence,
	}
}

func TestBinGroupsByWindow(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	items := []domain.ScoredItem{
		item(base.Add(15*time.Minute), 0.2, 0.9),
		item(base.Add(45*time.Minute), 0.4, 0.7),
		item(base.Add(65*time.Minute), 0.8, 0.5),
	}

	buckets := NewBinner().Bin(items, 1)

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}

	if !buckets[0].Timestamp.Equal(base) {
		t.Fatalf("unexpected first bucket start: %v", buckets[0].Timestamp)
	}
	if !buckets[1].Timestamp.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected second bucket start: %v", buckets[1].Timestamp)
	}

	if buckets[0].Count != 2 || buckets[1].Count != 1 {
		t.Fatalf("unexpected counts: %d, %d", buckets[0].Count, buckets[1].Count)
	}

	if math.Abs(buckets[0].AvgSentiment-0.3) > 1e-9 {
		t.Fatalf("unexpected first bucket avg: %f", buckets[0].AvgSentiment)
	}
	if math.Abs(buckets[0].AvgConfidence-0.8) > 1e-9 {
		t.Fatalf("unexpected first bucket confidence: %f", buckets[0].AvgConfidence)
	}
}

func TestBinTimestampsStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	var items []domain.ScoredItem
	for i := 0; i < 50; i++ {
		items = append(items, item(base.Add(time.Duration(49-i)*time.Hour), 0.5, 0.5))
	}

	buckets := NewBinner().Bin(items, 6)

	total := 0
	for i, b := range buckets {
		total += b.Count
		if i > 0 && !buckets[i-1].Timestamp.Before(b.Timestamp) {
			t.Fatalf("buckets not strictly increasing at %d", i)
		}
	}

	if total != len(items) {
		t.Fatalf("expected counts to sum to %d, got %d", len(items), total)
	}
}

func TestBinSkipsInvalidItems(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	items := []domain.ScoredItem{
		item(time.Time{}, 0.5, 0.5),
		item(base, math.NaN(), 0.5),
		item(base, 0.6, 0.4),
	}

	buckets := NewBinner().Bin(items, 24)

	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].Count != 1 {
		t.Fatalf("expected count 1, got %d", buckets[0].Count)
	}
}

func TestBinEmptyInput(t *testing.T) {
	t.Parallel()

	if got := NewBinner().Bin(nil, 24); len(got) != 0 {
		t.Fatalf("expected no buckets, got %d", len(got))
	}
}
