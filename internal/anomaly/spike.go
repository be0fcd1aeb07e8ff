package anomaly

import (
	"log/slog"
	"math"
	"sort"

	"NewsTrendMonitor/internal/domain"
)

const (
	// DefaultMaxAnomalies caps how many spikes one detection run reports.
	DefaultMaxAnomalies = 10

	// topSpikeCount is how many leading spikes carry the emphasis flag.
	topSpikeCount = 5
)

// SpikeDetector produces a ranked spike list tuned for isolated sharp
// deviations. It reuses the z-score deviation test but exposes a
// presentation-oriented contract: at most maxAnomalies records, ranked by
// score, with the top five marked for rendering emphasis.
type SpikeDetector struct {
	threshold    float64
	maxAnomalies int
	logger       *slog.Logger
}

// NewSpikeDetector builds a detector; non-positive parameters select the
// defaults.
func NewSpikeDetector(threshold float64, maxAnomalies int, logger *slog.Logger) *SpikeDetector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if maxAnomalies <= 0 {
		maxAnomalies = DefaultMaxAnomalies
	}
	return &SpikeDetector{threshold: threshold, maxAnomalies: maxAnomalies, logger: logger}
}

// Detect returns the ranked spike list for the series. Fewer than 3 buckets
// is insufficient signal to establish a baseline and yields an empty list.
// When candidates exceed the cap, the highest-score ones are kept; ties break
// toward the earlier bucket index.
func (d *SpikeDetector) Detect(values []float64) []domain.SpikeRecord {
	if len(values) < 3 {
		d.debug("spike: insufficient buckets", "buckets", len(values))
		return []domain.SpikeRecord{}
	}

	valid, indices := validValues(values)
	if len(valid) < 3 {
		d.debug("spike: too few valid values", "valid", len(valid))
		return []domain.SpikeRecord{}
	}

	mean, std := meanStd(valid)
	if std == 0 {
		d.debug("spike: zero standard deviation, flat series")
		return []domain.SpikeRecord{}
	}

	var candidates []domain.SpikeRecord
	for i, v := range valid {
		score := math.Abs(v-mean) / std
		if score > d.threshold {
			candidates = append(candidates, domain.SpikeRecord{
				AnomalyRecord: domain.AnomalyRecord{
					BucketIndex: indices[i],
					Score:       score,
					Value:       v,
				},
			})
		}
	}

	// Rank by score; the earlier bucket wins ties so truncation is stable.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].BucketIndex < candidates[j].BucketIndex
	})

	if len(candidates) > d.maxAnomalies {
		candidates = candidates[:d.maxAnomalies]
	}

	for i := range candidates {
		candidates[i].Top = i < topSpikeCount
	}

	d.debug("spike: detection done", "spikes", len(candidates))
	if candidates == nil {
		return []domain.SpikeRecord{}
	}
	return candidates
}

func (d *SpikeDetector) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
