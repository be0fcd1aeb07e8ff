package ports

import (
	"context"
	"time"

	"NewsTrendMonitor/internal/domain"
)

// Collector pulls keyword-filtered news items from one upstream source.
type Collector interface {
	Name() string
	Collect(ctx context.Context, keyword string, maxResults int) ([]domain.NewsItem, error)
}

// SentimentAnalyzer scores a piece of text, returning a sentiment in [0, 1]
// with a confidence.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (domain.Sentiment, error)
}

// TextCleaner normalizes raw feed text before scoring.
type TextCleaner interface {
	Clean(text string) string
}

// TrendStore persists scored items and spike events for the latest/spikes
// read paths. Implementations own any schema concerns.
type TrendStore interface {
	SaveItems(ctx context.Context, items []domain.ScoredItem) error
	SaveSpikes(ctx context.Context, spikes []domain.SpikeEvent) error
	RecentItems(ctx context.Context, since time.Time, limit int) ([]domain.ScoredItem, error)
	RecentSpikes(ctx context.Context, limit int) ([]domain.SpikeEvent, error)
}

// Notifier pushes spike alerts to an outbound channel.
type Notifier interface {
	NotifySpikes(ctx context.Context, keyword string, spikes []domain.SpikeEvent) error
}

// Scheduler drives recurring background work.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
