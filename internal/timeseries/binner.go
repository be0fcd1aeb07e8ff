package timeseries

import (
	"math"
	"sort"
	"time"

	"NewsTrendMonitor/internal/domain"
)

// Binner groups scored items into fixed-width time buckets.
type Binner struct{}

// NewBinner builds a binner; it carries no state.
func NewBinner() *Binner {
	return &Binner{}
}

// Bin aggregates items into buckets of windowHours width, sorted ascending by
// bucket start. Items with a zero timestamp or NaN sentiment are discarded.
// An empty result means "no analysis possible", not an error.
func (b *Binner) Bin(items []domain.ScoredItem, windowHours int) []domain.TimeBucket {
	if windowHours < 1 {
		windowHours = 1
	}

	window := int64(windowHours) * 3600

	type agg struct {
		sentimentSum  float64
		confidenceSum float64
		count         int
	}

	groups := map[int64]*agg{}
	for _, item := range items {
		if item.PublishedAt.IsZero() || math.IsNaN(item.SentimentScore) {
			continue
		}

		// Floor to the window boundary on the Unix epoch.
		ts := item.PublishedAt.UTC().Unix()
		key := ts - mod(ts, window)

		g, ok := groups[key]
		if !ok {
			g = &agg{}
			groups[key] = g
		}
		g.sentimentSum += item.SentimentScore
		g.confidenceSum += item.Confidence
		g.count++
	}

	buckets := make([]domain.TimeBucket, 0, len(groups))
	for key, g := range groups {
		buckets = append(buckets, domain.TimeBucket{
			Timestamp:     time.Unix(key, 0).UTC(),
			AvgSentiment:  g.sentimentSum / float64(g.count),
			Count:         g.count,
			AvgConfidence: g.confidenceSum / float64(g.count),
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Timestamp.Before(buckets[j].Timestamp)
	})

	return buckets
}

// mod is a non-negative modulus so pre-1970 timestamps floor downward.
func mod(a, n int64) int64 {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
