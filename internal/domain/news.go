package domain

import "time"

// NewsItem is a core entity describing one article pulled from a feed.
// Link doubles as the deduplication identity across sources.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	Keyword     string    `json:"keyword"`
	PublishedAt time.Time `json:"published_at"`
	CollectedAt time.Time `json:"collected_at"`
}

// Sentiment is the black-box model output for a piece of text.
type Sentiment struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// ScoredItem couples an article with its sentiment score. Instances are
// immutable once created and owned by the pipeline invocation that made them.
type ScoredItem struct {
	NewsItem
	SentimentScore float64 `json:"sentiment_score"`
	Confidence     float64 `json:"confidence"`
}
