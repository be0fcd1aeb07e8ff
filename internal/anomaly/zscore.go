package anomaly

import (
	"log/slog"
	"math"

	"NewsTrendMonitor/internal/domain"
)

// DefaultThreshold is the standard-deviation multiple a bucket must exceed
// before it is reported.
const DefaultThreshold = 2.0

// ZScoreDetector flags buckets whose value deviates from the global mean by
// more than threshold standard deviations.
type ZScoreDetector struct {
	threshold float64
	logger    *slog.Logger
}

// NewZScoreDetector builds a detector; threshold <= 0 selects the default.
func NewZScoreDetector(threshold float64, logger *slog.Logger) *ZScoreDetector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &ZScoreDetector{threshold: threshold, logger: logger}
}

// Detect returns one record per bucket whose |value - mean| / std strictly
// exceeds the threshold. NaN values are excluded from both the statistics and
// the output. A flat series (zero standard deviation) yields no anomalies.
func (d *ZScoreDetector) Detect(values []float64) []domain.AnomalyRecord {
	valid, indices := validValues(values)
	if len(valid) < 2 {
		d.debug("zscore: too few valid values", "valid", len(valid))
		return nil
	}

	mean, std := meanStd(valid)
	if std == 0 {
		d.debug("zscore: zero standard deviation, flat series")
		return nil
	}

	var records []domain.AnomalyRecord
	for i, v := range valid {
		score := math.Abs(v-mean) / std
		if score > d.threshold {
			records = append(records, domain.AnomalyRecord{
				BucketIndex: indices[i],
				Score:       score,
				Value:       v,
			})
		}
	}

	d.debug("zscore: detection done", "anomalies", len(records))
	return records
}

func (d *ZScoreDetector) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

// validValues strips NaN entries, remembering original indices.
func validValues(values []float64) ([]float64, []int) {
	valid := make([]float64, 0, len(values))
	indices := make([]int, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		valid = append(valid, v)
		indices = append(indices, i)
	}
	return valid, indices
}

// meanStd computes the mean and population standard deviation.
func meanStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}
