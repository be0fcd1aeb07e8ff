package anomaly

import (
	"log/slog"
	"math"

	"NewsTrendMonitor/internal/domain"
)

// DefaultWindowSize is the rolling window used when none is configured.
const DefaultWindowSize = 5

// MovingAverageDetector flags buckets deviating from a rolling mean,
// normalized by the global standard deviation.
type MovingAverageDetector struct {
	windowSize int
	threshold  float64
	logger     *slog.Logger
}

// NewMovingAverageDetector builds a detector; non-positive parameters select
// the defaults.
func NewMovingAverageDetector(windowSize int, threshold float64, logger *slog.Logger) *MovingAverageDetector {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &MovingAverageDetector{windowSize: windowSize, threshold: threshold, logger: logger}
}

// Detect requires at least windowSize+1 valid points; with fewer it returns
// empty after logging the reason, never an error. For each valid position at
// or past the window size, the deviation of the value from the mean of the
// window ending at it (window inclusive of the value) is normalized by the
// population standard deviation of all valid values; positions exceeding the
// threshold are flagged. Positions before the first full window are never
// flagged.
func (d *MovingAverageDetector) Detect(values []float64) []domain.AnomalyRecord {
	valid, indices := validValues(values)
	if len(valid) < d.windowSize+1 {
		d.debug("moving average: insufficient data",
			"valid", len(valid), "required", d.windowSize+1)
		return nil
	}

	_, std := meanStd(valid)
	if std == 0 {
		d.debug("moving average: zero standard deviation, flat series")
		return nil
	}

	var records []domain.AnomalyRecord
	for k := d.windowSize; k < len(valid); k++ {
		var windowSum float64
		for j := k - d.windowSize; j <= k; j++ {
			windowSum += valid[j]
		}
		windowMean := windowSum / float64(d.windowSize+1)

		deviation := math.Abs(valid[k]-windowMean) / std
		if deviation > d.threshold {
			records = append(records, domain.AnomalyRecord{
				BucketIndex: indices[k],
				Score:       deviation,
				Value:       valid[k],
			})
		}
	}

	d.debug("moving average: detection done", "anomalies", len(records))
	return records
}

func (d *MovingAverageDetector) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
