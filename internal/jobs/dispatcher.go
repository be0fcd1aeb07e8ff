package jobs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsTrendMonitor/internal/domain"
)

// Status is the closed set of job states. The zero value is Pending.
type Status int

const (
	StatusPending Status = iota
	StatusProcessing
	StatusCompleted
	StatusFailed
)

// String renders the wire form of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Terminal reports whether no further transition may leave this state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// MarshalJSON encodes the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Job tracks one asynchronous analysis request through its state machine.
type Job struct {
	ID        string                 `json:"job_id"`
	Type      string                 `json:"job_type"`
	Params    map[string]string      `json:"params"`
	Status    Status                 `json:"status"`
	Result    *domain.AnalysisResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Dispatcher is the in-memory job table. All mutation goes through its
// methods; callers receive copies. Jobs are garbage-collected by age
// regardless of state, so results can silently disappear after retention.
type Dispatcher struct {
	mu     sync.RWMutex
	jobs   map[string]*Job
	logger *slog.Logger

	now func() time.Time
}

// NewDispatcher builds an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:   map[string]*Job{},
		logger: logger,
		now:    time.Now,
	}
}

// Create registers a new Pending job and returns its fresh identifier.
// It always succeeds.
func (d *Dispatcher) Create(jobType string, params map[string]string) string {
	id := uuid.NewString()
	now := d.now()

	d.mu.Lock()
	d.jobs[id] = &Job{
		ID:        id,
		Type:      jobType,
		Params:    params,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.mu.Unlock()

	d.info("job created", "job_id", id, "job_type", jobType)
	return id
}

// UpdateStatus advances the job state machine. An unknown id or a transition
// out of a terminal state is a no-op with a logged warning, never an error.
func (d *Dispatcher) UpdateStatus(id string, status Status, result *domain.AnalysisResult, errMsg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	job, ok := d.jobs[id]
	if !ok {
		d.warn("update for unknown job", "job_id", id)
		return
	}

	if job.Status.Terminal() {
		d.warn("transition out of terminal state ignored",
			"job_id", id, "from", job.Status.String(), "to", status.String())
		return
	}

	job.Status = status
	job.UpdatedAt = d.now()
	if result != nil {
		job.Result = result
	}
	if errMsg != "" {
		job.Error = errMsg
	}

	d.info("job status updated", "job_id", id, "status", status.String())
}

// Get returns a copy of the job, or ok=false when unknown.
func (d *Dispatcher) Get(id string) (Job, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	job, ok := d.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// SweepOlderThan removes jobs created before the cutoff, regardless of
// status. Removing a still-running job is the deliberate bounded-retention
// policy, not a bug.
func (d *Dispatcher) SweepOlderThan(maxAge time.Duration) int {
	cutoff := d.now().Add(-maxAge)

	d.mu.Lock()
	removed := 0
	for id, job := range d.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(d.jobs, id)
			removed++
		}
	}
	d.mu.Unlock()

	if removed > 0 {
		d.info("swept old jobs", "removed", removed)
	}
	return removed
}

// Len reports the current job count.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.jobs)
}

func (d *Dispatcher) info(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}

func (d *Dispatcher) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
