package jobs

import (
	"testing"
	"time"

	"NewsTrendMonitor/internal/domain"
)

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil)
	id := d.Create("analyze_trend", map[string]string{"keyword": "go"})

	if id == "" {
		t.Fatal("expected non-empty job id")
	}

	job, ok := d.Get(id)
	if !ok {
		t.Fatal("expected job to exist")
	}
	if job.Status != StatusPending {
		t.Fatalf("new job should be pending, got %s", job.Status)
	}
	if job.Params["keyword"] != "go" {
		t.Fatalf("unexpected params: %v", job.Params)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil)
	id := d.Create("analyze_trend", nil)

	d.UpdateStatus(id, StatusProcessing, nil, "")

	result := &domain.AnalysisResult{Keyword: "go", TotalNews: 3}
	d.UpdateStatus(id, StatusCompleted, result, "")

	job, _ := d.Get(id)
	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if job.Result == nil || job.Result.TotalNews != 3 {
		t.Fatalf("expected result attached, got %+v", job.Result)
	}
}

func TestUpdateUnknownJobIsNoOp(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil)
	d.UpdateStatus("no-such-id", StatusCompleted, nil, "")

	if d.Len() != 0 {
		t.Fatalf("unknown update must not create jobs, len %d", d.Len())
	}
}

func TestTerminalStateAbsorbsTransitions(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil)
	id := d.Create("analyze_trend", nil)

	d.UpdateStatus(id, StatusFailed, nil, "boom")
	d.UpdateStatus(id, StatusProcessing, nil, "")

	job, _ := d.Get(id)
	if job.Status != StatusFailed {
		t.Fatalf("terminal state must absorb transitions, got %s", job.Status)
	}
	if job.Error != "boom" {
		t.Fatalf("error message lost: %q", job.Error)
	}
}

func TestSweepRemovesOldJobsRegardlessOfStatus(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil)

	current := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return current }

	oldID := d.Create("analyze_trend", nil)
	d.UpdateStatus(oldID, StatusProcessing, nil, "")

	current = current.Add(48 * time.Hour)
	freshID := d.Create("analyze_trend", nil)

	if removed := d.SweepOlderThan(24 * time.Hour); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	if _, ok := d.Get(oldID); ok {
		t.Fatal("old processing job should be swept")
	}
	if _, ok := d.Get(freshID); !ok {
		t.Fatal("fresh job should survive")
	}
}

func TestStatusStrings(t *testing.T) {
	t.Parallel()

	cases := map[Status]string{
		StatusPending:    "pending",
		StatusProcessing: "processing",
		StatusCompleted:  "completed",
		StatusFailed:     "failed",
	}
	for status, want := range cases {
		if status.String() != want {
			t.Fatalf("status %d renders %q, want %q", int(status), status.String(), want)
		}
	}

	if StatusPending.Terminal() || StatusProcessing.Terminal() {
		t.Fatal("pending/processing must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Fatal("completed/failed must be terminal")
	}
}
