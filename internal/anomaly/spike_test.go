package anomaly

import (
	"testing"
)

func TestSpikeTooFewBuckets(t *testing.T) {
	t.Parallel()

	d := NewSpikeDetector(2.0, 10, nil)

	got := d.Detect([]float64{0.1, 0.9})
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(got) != 0 {
		t.Fatalf("expected no spikes, got %d", len(got))
	}
}

func TestSpikeFlatSeries(t *testing.T) {
	t.Parallel()

	d := NewSpikeDetector(2.0, 10, nil)
	if got := d.Detect([]float64{0.5, 0.5, 0.5, 0.5}); len(got) != 0 {
		t.Fatalf("flat series should yield no spikes, got %d", len(got))
	}
}

func TestSpikeRankedAndCapped(t *testing.T) {
	t.Parallel()

	// All four points exceed a 0.5 threshold; only the two highest scores
	// survive the cap, ranked descending.
	d := NewSpikeDetector(0.5, 2, nil)
	got := d.Detect([]float64{1, 2, 3, 100})

	if len(got) != 2 {
		t.Fatalf("expected 2 spikes, got %d", len(got))
	}
	if got[0].BucketIndex != 3 {
		t.Fatalf("highest spike should be index 3, got %d", got[0].BucketIndex)
	}
	if got[0].Score < got[1].Score {
		t.Fatalf("spikes not ranked by score: %f < %f", got[0].Score, got[1].Score)
	}
	if got[1].BucketIndex != 0 {
		t.Fatalf("second spike should be index 0, got %d", got[1].BucketIndex)
	}
}

func TestSpikeTieBreaksTowardEarlierIndex(t *testing.T) {
	t.Parallel()

	// Symmetric series: every point has the same score, so truncation keeps
	// the earliest indices.
	d := NewSpikeDetector(0.5, 2, nil)
	got := d.Detect([]float64{0, 4, 0, 4})

	if len(got) != 2 {
		t.Fatalf("expected 2 spikes, got %d", len(got))
	}
	if got[0].BucketIndex != 0 || got[1].BucketIndex != 1 {
		t.Fatalf("expected indices 0 and 1, got %d and %d", got[0].BucketIndex, got[1].BucketIndex)
	}
}

func TestSpikeTopFlag(t *testing.T) {
	t.Parallel()

	// Eight candidates, low threshold, generous cap: exactly the leading five
	// carry the Top flag.
	d := NewSpikeDetector(0.1, 10, nil)
	got := d.Detect([]float64{10, 0, 20, 0, 30, 0, 40, 0})

	if len(got) < 6 {
		t.Fatalf("expected at least 6 spikes, got %d", len(got))
	}
	for i, s := range got {
		want := i < 5
		if s.Top != want {
			t.Fatalf("spike %d: Top = %v, want %v", i, s.Top, want)
		}
	}
}
