package domain

import "time"

// TimeBucket aggregates the scored items falling into one fixed-width time
// window. Buckets are strictly ordered by Timestamp and Count is always >= 1;
// empty windows are never materialized.
type TimeBucket struct {
	Timestamp     time.Time `json:"timestamp"`
	AvgSentiment  float64   `json:"avg_sentiment"`
	Count         int       `json:"count"`
	AvgConfidence float64   `json:"avg_confidence"`
}

// AnomalyRecord marks one bucket as deviating from the series statistics.
// BucketIndex refers into the bucket sequence the detector ran against and is
// invalidated if that sequence changes.
type AnomalyRecord struct {
	BucketIndex int     `json:"bucket_index"`
	Score       float64 `json:"score"`
	Value       float64 `json:"value"`
}

// SpikeRecord is an anomaly ranked for presentation. Top marks the five
// highest-score spikes for rendering emphasis.
type SpikeRecord struct {
	AnomalyRecord
	Top bool `json:"top"`
}

// SpikeEvent is the durable form of a detected spike, resolved against the
// keyword and bucket timestamp it occurred in.
type SpikeEvent struct {
	Keyword    string    `json:"keyword"`
	Timestamp  time.Time `json:"timestamp"`
	Score      float64   `json:"score"`
	Value      float64   `json:"value"`
	DetectedAt time.Time `json:"detected_at"`
}

// AnomalySet groups the per-detector anomaly lists of one analysis.
type AnomalySet struct {
	ZScore        []AnomalyRecord `json:"zscore"`
	MovingAverage []AnomalyRecord `json:"moving_average"`
}

// AnalysisResult is the composite outcome of one trend analysis run.
type AnalysisResult struct {
	Keyword      string        `json:"keyword"`
	TotalNews    int           `json:"total_news"`
	AvgSentiment float64       `json:"avg_sentiment"`
	TimeSeries   []TimeBucket  `json:"time_series"`
	Spikes       []SpikeRecord `json:"spikes"`
	Anomalies    AnomalySet    `json:"anomalies"`
	NewsItems    []ScoredItem  `json:"news_items"`
	AnalyzedAt   time.Time     `json:"analyzed_at"`
}

// EmptyResult is the well-defined outcome when no scorable items exist:
// zero news, neutral sentiment, empty series and anomaly lists.
func EmptyResult(keyword string) AnalysisResult {
	return AnalysisResult{
		Keyword:      keyword,
		TotalNews:    0,
		AvgSentiment: 0.5,
		TimeSeries:   []TimeBucket{},
		Spikes:       []SpikeRecord{},
		Anomalies: AnomalySet{
			ZScore:        []AnomalyRecord{},
			MovingAverage: []AnomalyRecord{},
		},
		NewsItems:  []ScoredItem{},
		AnalyzedAt: time.Now().UTC(),
	}
}
