package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"NewsTrendMonitor/internal/anomaly"
	"NewsTrendMonitor/internal/cache"
	"NewsTrendMonitor/internal/domain"
	"NewsTrendMonitor/internal/jobs"
	"NewsTrendMonitor/internal/metrics"
	"NewsTrendMonitor/internal/ports"
	"NewsTrendMonitor/internal/timeseries"
)

const (
	analyzeOperation = "analyze"
	analyzeJobType   = "analyze_trend"

	// topItemCount bounds how many items the result carries back.
	topItemCount = 20
)

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Collectors []ports.Collector
	Cleaner    ports.TextCleaner
	Analyzer   ports.SentimentAnalyzer
	Store      ports.TrendStore
	Notifier   ports.Notifier
	Cache      *cache.ResultCache
	Dispatcher *jobs.Dispatcher
	Metrics    *metrics.Collector
	Logger     *slog.Logger
	CacheTTL   time.Duration
}

// Pipeline composes collection, scoring, binning, and the three detectors
// into one reproducible analysis, consulting the result cache and driving the
// job dispatcher for deferred execution.
type Pipeline struct {
	collectors []ports.Collector
	cleaner    ports.TextCleaner
	analyzer   ports.SentimentAnalyzer
	store      ports.TrendStore
	notifier   ports.Notifier
	cache      *cache.ResultCache
	dispatcher *jobs.Dispatcher
	metrics    *metrics.Collector
	logger     *slog.Logger
	cacheTTL   time.Duration

	binner *timeseries.Binner
	zscore *anomaly.ZScoreDetector
	movavg *anomaly.MovingAverageDetector
	spike  *anomaly.SpikeDetector
}

// NewPipeline constructs the orchestration component with default-tuned
// detectors.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		collectors: deps.Collectors,
		cleaner:    deps.Cleaner,
		analyzer:   deps.Analyzer,
		store:      deps.Store,
		notifier:   deps.Notifier,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cacheTTL:   deps.CacheTTL,
		binner:     timeseries.NewBinner(),
		zscore:     anomaly.NewZScoreDetector(anomaly.DefaultThreshold, deps.Logger),
		movavg:     anomaly.NewMovingAverageDetector(anomaly.DefaultWindowSize, anomaly.DefaultThreshold, deps.Logger),
		spike:      anomaly.NewSpikeDetector(anomaly.DefaultThreshold, anomaly.DefaultMaxAnomalies, deps.Logger),
	}
}

// Analyze runs the keyword trend analysis. The cache is read before and
// written after execution; a hit returns the cached result unchanged.
// Concurrent callers with the same fingerprint may both compute; the duplicate
// work is accepted, last write wins.
func (p *Pipeline) Analyze(ctx context.Context, keyword string, maxResults, windowHours int) (domain.AnalysisResult, error) {
	if result, ok := p.Cached(keyword, maxResults, windowHours); ok {
		p.info("cache hit", "keyword", keyword)
		return result, nil
	}

	return p.execute(ctx, p.fingerprint(keyword, maxResults, windowHours), keyword, maxResults, windowHours)
}

// Cached returns the cached result for the parameter set without computing
// anything.
func (p *Pipeline) Cached(keyword string, maxResults, windowHours int) (domain.AnalysisResult, bool) {
	if p.cache == nil {
		return domain.AnalysisResult{}, false
	}
	cached, ok := p.cache.Get(p.fingerprint(keyword, maxResults, windowHours))
	if !ok {
		return domain.AnalysisResult{}, false
	}
	result, isResult := cached.(domain.AnalysisResult)
	return result, isResult
}

// Refresh recomputes the analysis and overwrites the cache entry, skipping
// the cache read. The synchronous endpoint uses it to refresh asynchronously.
func (p *Pipeline) Refresh(ctx context.Context, keyword string, maxResults, windowHours int) (domain.AnalysisResult, error) {
	fp := p.fingerprint(keyword, maxResults, windowHours)
	return p.execute(ctx, fp, keyword, maxResults, windowHours)
}

// AnalyzeAsync registers an analysis job and executes it in the background.
// Callers observe progress and failure exclusively through the dispatcher.
func (p *Pipeline) AnalyzeAsync(keyword string, maxResults, windowHours int) string {
	id := p.dispatcher.Create(analyzeJobType, map[string]string{
		"keyword":           keyword,
		"max_results":       strconv.Itoa(maxResults),
		"time_window_hours": strconv.Itoa(windowHours),
	})

	// Jobs run to completion; there is no cancellation primitive.
	go func() {
		p.dispatcher.UpdateStatus(id, jobs.StatusProcessing, nil, "")

		result, err := p.Analyze(context.Background(), keyword, maxResults, windowHours)
		if err != nil {
			p.dispatcher.UpdateStatus(id, jobs.StatusFailed, nil, err.Error())
			return
		}
		p.dispatcher.UpdateStatus(id, jobs.StatusCompleted, &result, "")
	}()

	return id
}

// Latest returns items published within the last N hours from the store.
func (p *Pipeline) Latest(ctx context.Context, hours int) ([]domain.ScoredItem, error) {
	if p.store == nil {
		return []domain.ScoredItem{}, nil
	}
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	return p.store.RecentItems(ctx, since, 100)
}

// RecentSpikes returns the most recent spike events from the store.
func (p *Pipeline) RecentSpikes(ctx context.Context, limit int) ([]domain.SpikeEvent, error) {
	if p.store == nil {
		return []domain.SpikeEvent{}, nil
	}
	return p.store.RecentSpikes(ctx, limit)
}

// Sentiment scores one piece of text through the external collaborator.
func (p *Pipeline) Sentiment(ctx context.Context, text string) (domain.Sentiment, error) {
	return p.analyzer.Analyze(ctx, text)
}

func (p *Pipeline) execute(ctx context.Context, fp, keyword string, maxResults, windowHours int) (domain.AnalysisResult, error) {
	p.info("trend analysis started", "keyword", keyword)

	raw, collected := p.collect(ctx, keyword, maxResults)
	if len(raw) == 0 {
		p.warn("no news collected", "keyword", keyword)
		result := domain.EmptyResult(keyword)
		if collected {
			// An empty-but-successful run is cached like any other result;
			// a run where every source failed stays uncached so the next
			// call retries upstream.
			p.cacheSet(fp, result)
		}
		return result, nil
	}

	unique := dedupByLink(p.clean(raw))
	if len(unique) == 0 {
		p.warn("no scorable items after preprocessing", "keyword", keyword)
		result := domain.EmptyResult(keyword)
		p.cacheSet(fp, result)
		return result, nil
	}

	scored := p.score(ctx, unique)

	buckets := p.binner.Bin(scored, windowHours)
	values := bucketValues(buckets)

	start := time.Now()
	spikes := p.spike.Detect(values)
	zscoreAnomalies := p.zscore.Detect(values)
	movavgAnomalies := p.movavg.Detect(values)
	if p.metrics != nil {
		p.metrics.RecordDetectionDuration("combined", time.Since(start))
	}

	result := domain.AnalysisResult{
		Keyword:      keyword,
		TotalNews:    len(scored),
		AvgSentiment: avgSentiment(scored),
		TimeSeries:   buckets,
		Spikes:       spikes,
		Anomalies: domain.AnomalySet{
			ZScore:        emptyIfNil(zscoreAnomalies),
			MovingAverage: emptyIfNil(movavgAnomalies),
		},
		NewsItems:  topItems(scored),
		AnalyzedAt: time.Now().UTC(),
	}

	p.persist(ctx, result, buckets, spikes, scored)
	p.cacheSet(fp, result)

	p.info("trend analysis done",
		"keyword", keyword, "news", len(scored), "buckets", len(buckets), "spikes", len(spikes))
	return result, nil
}

// collect gathers items from every source best-effort. The second return
// reports whether at least one source answered; a failure in one source must
// not abort the others.
func (p *Pipeline) collect(ctx context.Context, keyword string, maxResults int) ([]domain.NewsItem, bool) {
	var all []domain.NewsItem
	anySucceeded := false

	for _, collector := range p.collectors {
		items, err := collector.Collect(ctx, keyword, maxResults)
		if err != nil {
			p.warn("collector failed", "collector", collector.Name(), "error", err)
			continue
		}
		anySucceeded = true
		all = append(all, items...)
		p.info("collector done", "collector", collector.Name(), "items", len(items))
	}

	if len(all) > maxResults {
		all = all[:maxResults]
	}
	return all, anySucceeded
}

// clean normalizes titles and summaries, dropping items where both vanish.
func (p *Pipeline) clean(items []domain.NewsItem) []domain.NewsItem {
	if p.cleaner == nil {
		return items
	}

	kept := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		item.Title = p.cleaner.Clean(item.Title)
		item.Summary = p.cleaner.Clean(item.Summary)
		if item.Title == "" && item.Summary == "" {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// score runs the sentiment model per item. A scoring failure degrades that
// item to neutral rather than failing the run.
func (p *Pipeline) score(ctx context.Context, items []domain.NewsItem) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, 0, len(items))
	for _, item := range items {
		s := domain.Sentiment{Score: 0.5, Confidence: 0.0}
		if p.analyzer != nil {
			text := item.Title + " " + item.Summary
			got, err := p.analyzer.Analyze(ctx, text)
			if err != nil {
				p.warn("sentiment scoring failed", "link", item.Link, "error", err)
			} else {
				s = got
			}
		}
		scored = append(scored, domain.ScoredItem{
			NewsItem:       item,
			SentimentScore: s.Score,
			Confidence:     s.Confidence,
		})
	}
	return scored
}

// persist stores items and spike events and fires the alert notifier, all
// best-effort: storage or alerting failures never fail the analysis.
func (p *Pipeline) persist(ctx context.Context, result domain.AnalysisResult, buckets []domain.TimeBucket, spikes []domain.SpikeRecord, scored []domain.ScoredItem) {
	events := spikeEvents(result.Keyword, buckets, spikes, result.AnalyzedAt)

	if p.store != nil {
		if err := p.store.SaveItems(ctx, scored); err != nil {
			p.warn("persist items failed", "error", err)
		}
		if err := p.store.SaveSpikes(ctx, events); err != nil {
			p.warn("persist spikes failed", "error", err)
		}
	}

	if p.notifier != nil && len(events) > 0 {
		if err := p.notifier.NotifySpikes(ctx, result.Keyword, events); err != nil {
			p.warn("spike notification failed", "error", err)
		}
	}
}

func (p *Pipeline) fingerprint(keyword string, maxResults, windowHours int) string {
	return cache.Fingerprint(analyzeOperation, map[string]string{
		"keyword":           keyword,
		"max_results":       strconv.Itoa(maxResults),
		"time_window_hours": strconv.Itoa(windowHours),
	})
}

func (p *Pipeline) cacheSet(fp string, result domain.AnalysisResult) {
	if p.cache != nil {
		p.cache.Set(fp, result, p.cacheTTL)
	}
}

// dedupByLink keeps the first occurrence per link, preserving arrival order
// so results stay reproducible.
func dedupByLink(items []domain.NewsItem) []domain.NewsItem {
	seen := map[string]struct{}{}
	unique := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		if item.Link == "" {
			continue
		}
		if _, dup := seen[item.Link]; dup {
			continue
		}
		seen[item.Link] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}

// avgSentiment is the mean over the deduplicated items themselves, not over
// bucket means.
func avgSentiment(items []domain.ScoredItem) float64 {
	if len(items) == 0 {
		return 0.5
	}
	var sum float64
	for _, item := range items {
		sum += item.SentimentScore
	}
	return sum / float64(len(items))
}

func bucketValues(buckets []domain.TimeBucket) []float64 {
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.AvgSentiment
	}
	return values
}

func spikeEvents(keyword string, buckets []domain.TimeBucket, spikes []domain.SpikeRecord, detectedAt time.Time) []domain.SpikeEvent {
	events := make([]domain.SpikeEvent, 0, len(spikes))
	for _, s := range spikes {
		if s.BucketIndex < 0 || s.BucketIndex >= len(buckets) {
			continue
		}
		events = append(events, domain.SpikeEvent{
			Keyword:    keyword,
			Timestamp:  buckets[s.BucketIndex].Timestamp,
			Score:      s.Score,
			Value:      s.Value,
			DetectedAt: detectedAt,
		})
	}
	return events
}

func topItems(items []domain.ScoredItem) []domain.ScoredItem {
	if len(items) > topItemCount {
		items = items[:topItemCount]
	}
	out := make([]domain.ScoredItem, len(items))
	copy(out, items)
	return out
}

func emptyIfNil(records []domain.AnomalyRecord) []domain.AnomalyRecord {
	if records == nil {
		return []domain.AnomalyRecord{}
	}
	return records
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
