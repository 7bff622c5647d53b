// Package queue drives strictly sequential batch synthesis: an ordered
// job list, one dispatched work unit at a time, and completion handling
// that keeps the exactly-one-processing invariant even through failures.
package queue

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"deck-tts/internal/domain"
)

// OutcomeKind classifies the result of one work unit.
type OutcomeKind string

const (
	OutcomeOK           OutcomeKind = "ok"
	OutcomeSkipEmpty    OutcomeKind = "skip_empty"
	OutcomeSkipHasAudio OutcomeKind = "skip_has_audio"
	OutcomeNoAudio      OutcomeKind = "no_audio"
	OutcomeError        OutcomeKind = "error"
)

// Outcome is the typed result a work unit reports back to the queue.
type Outcome struct {
	Kind       OutcomeKind
	StoredName string
	Message    string
}

// ProcessFunc executes one work unit off the foreground goroutine.
// onProgress may be invoked from any goroutine; the queue marshals it.
type ProcessFunc func(recordID string, request domain.Request, onProgress func(int)) Outcome

// Item is one record selected for enqueueing, with its display preview.
type Item struct {
	RecordID string
	Preview  string
}

// jobEntry pairs a job with the selection it was enqueued under.
type jobEntry struct {
	job     domain.Job
	request domain.Request
}

// Queue owns the ordered job list and the sequential drive loop.
// All job state is mutated under one mutex; callbacks fire outside it.
type Queue struct {
	mu         sync.Mutex
	entries    []*jobEntry
	running    bool
	generation int

	process    ProcessFunc
	dispatcher Dispatcher
	logger     *slog.Logger

	onJob      func(domain.Job)
	onSummary  func(domain.QueueSummary)
	onFinished func(domain.QueueSummary)
}

// New creates an idle queue around one work-unit function.
func New(process ProcessFunc, dispatcher Dispatcher, logger *slog.Logger) *Queue {
	if dispatcher == nil {
		dispatcher = GoDispatcher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		process:    process,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "queue")),
	}
}

// SetCallbacks registers UI notification hooks. Callbacks run on the
// completion path and must not call back into the queue.
func (q *Queue) SetCallbacks(onJob func(domain.Job), onSummary func(domain.QueueSummary), onFinished func(domain.QueueSummary)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onJob = onJob
	q.onSummary = onSummary
	q.onFinished = onFinished
}

// Enqueue appends one waiting job per selected record, in selection
// order. Enqueueing never starts processing.
func (q *Queue) Enqueue(request domain.Request, items []Item) []domain.Job {
	q.mu.Lock()
	added := make([]domain.Job, 0, len(items))
	for _, item := range items {
		entry := &jobEntry{
			job: domain.Job{
				ID:       uuid.NewString(),
				RecordID: item.RecordID,
				State:    domain.JobStateWaiting,
				Preview:  item.Preview,
			},
			request: request,
		}
		q.entries = append(q.entries, entry)
		added = append(added, entry.job)
	}
	summary := q.summaryLocked()
	onJob, onSummary := q.onJob, q.onSummary
	q.mu.Unlock()

	if onJob != nil {
		for _, job := range added {
			onJob(job)
		}
	}
	if onSummary != nil {
		onSummary(summary)
	}
	return added
}

// Start begins the drive loop unless it is already running or the queue
// holds no waiting job.
func (q *Queue) Start() {
	q.mu.Lock()
	if q.running || q.firstWaitingLocked() == nil {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	q.driveNext()
}

// Clear drops all jobs and halts the run. A late completion or progress
// report from an in-flight work unit is ignored via the generation guard.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.generation++
	q.entries = nil
	q.running = false
	summary := q.summaryLocked()
	onSummary := q.onSummary
	q.mu.Unlock()

	if onSummary != nil {
		onSummary(summary)
	}
}

// Running reports whether a drive loop is active.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Jobs returns a snapshot of all jobs in insertion order.
func (q *Queue) Jobs() []domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.Job, len(q.entries))
	for i, entry := range q.entries {
		out[i] = entry.job
	}
	return out
}

// Summary returns the aggregate completion state.
func (q *Queue) Summary() domain.QueueSummary {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.summaryLocked()
}

// driveNext picks the first waiting job and dispatches its work unit.
// Invoked once at start and after every completion.
func (q *Queue) driveNext() {
	q.mu.Lock()
	entry := q.firstWaitingLocked()
	if entry == nil {
		q.running = false
		summary := q.summaryLocked()
		onFinished := q.onFinished
		q.mu.Unlock()

		q.logger.Info("queue drained",
			slog.Int("total", summary.Total),
			slog.Int("errors", summary.Errors))
		if onFinished != nil {
			onFinished(summary)
		}
		return
	}

	entry.job.State = domain.JobStateProcessing
	entry.job.Progress = domain.ProgressIndeterminate
	entry.job.Detail = "processing (generating…)"
	generation := q.generation
	jobID := entry.job.ID
	recordID := entry.job.RecordID
	request := entry.request
	snapshot := entry.job
	onJob := q.onJob
	q.mu.Unlock()

	if onJob != nil {
		onJob(snapshot)
	}
	q.logger.Info("job started", slog.String("job", jobID), slog.String("record", recordID))

	work := func() Outcome {
		return q.runWorkUnit(recordID, request, func(pct int) {
			q.reportProgress(jobID, generation, pct)
		})
	}
	q.dispatcher.Dispatch(work, func(outcome Outcome) {
		q.complete(jobID, generation, outcome)
	})
}

// runWorkUnit shields the drive loop from panics in the work unit; any
// internal failure becomes an error outcome so the loop always advances.
func (q *Queue) runWorkUnit(recordID string, request domain.Request, onProgress func(int)) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Kind: OutcomeError, Message: fmt.Sprintf("internal failure: %v", r)}
		}
	}()
	return q.process(recordID, request, onProgress)
}

// reportProgress marshals a background progress report onto queue state.
// Reports may arrive out of order; progress only moves forward.
func (q *Queue) reportProgress(jobID string, generation, pct int) {
	q.mu.Lock()
	if generation != q.generation {
		q.mu.Unlock()
		return
	}
	entry := q.entryByIDLocked(jobID)
	if entry == nil || entry.job.State != domain.JobStateProcessing {
		q.mu.Unlock()
		return
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if entry.job.Progress != domain.ProgressIndeterminate && pct < entry.job.Progress {
		q.mu.Unlock()
		return
	}
	entry.job.Progress = pct
	entry.job.Detail = "processing (downloading…)"
	snapshot := entry.job
	onJob := q.onJob
	q.mu.Unlock()

	if onJob != nil {
		onJob(snapshot)
	}
}

// complete maps a work-unit outcome onto the job's terminal state and
// re-invokes the drive loop. It runs exactly once per job; a stale
// generation or an already-terminal job is ignored.
func (q *Queue) complete(jobID string, generation int, outcome Outcome) {
	q.mu.Lock()
	if generation != q.generation {
		q.mu.Unlock()
		q.logger.Debug("late completion ignored", slog.String("job", jobID))
		return
	}
	entry := q.entryByIDLocked(jobID)
	if entry == nil || entry.job.State != domain.JobStateProcessing {
		q.mu.Unlock()
		return
	}

	switch outcome.Kind {
	case OutcomeOK:
		entry.job.State = domain.JobStateDone
		entry.job.Progress = 100
		entry.job.Detail = "done"
		entry.job.StoredName = outcome.StoredName
	case OutcomeSkipEmpty:
		entry.job.State = domain.JobStateSkipped
		entry.job.Progress = 0
		entry.job.Detail = "skipped (empty)"
	case OutcomeSkipHasAudio:
		entry.job.State = domain.JobStateSkipped
		entry.job.Progress = 0
		entry.job.Detail = "skipped (already has audio)"
	case OutcomeNoAudio:
		entry.job.State = domain.JobStateError
		entry.job.Progress = 0
		entry.job.Detail = "no audio returned"
	default:
		entry.job.State = domain.JobStateError
		entry.job.Progress = 0
		entry.job.Detail = "error: " + outcome.Message
	}

	snapshot := entry.job
	summary := q.summaryLocked()
	onJob, onSummary := q.onJob, q.onSummary
	q.mu.Unlock()

	q.logger.Info("job finished",
		slog.String("job", jobID),
		slog.String("state", string(snapshot.State)),
		slog.String("detail", snapshot.Detail))
	if onJob != nil {
		onJob(snapshot)
	}
	if onSummary != nil {
		onSummary(summary)
	}

	q.driveNext()
}

// firstWaitingLocked returns the first waiting entry in insertion order.
func (q *Queue) firstWaitingLocked() *jobEntry {
	for _, entry := range q.entries {
		if entry.job.State == domain.JobStateWaiting {
			return entry
		}
	}
	return nil
}

// entryByIDLocked finds one entry by job id.
func (q *Queue) entryByIDLocked(jobID string) *jobEntry {
	for _, entry := range q.entries {
		if entry.job.ID == jobID {
			return entry
		}
	}
	return nil
}

// summaryLocked computes the aggregate completion ratio.
func (q *Queue) summaryLocked() domain.QueueSummary {
	summary := domain.QueueSummary{Total: len(q.entries)}
	for _, entry := range q.entries {
		switch entry.job.State {
		case domain.JobStateDone:
			summary.Done++
		case domain.JobStateSkipped:
			summary.Skipped++
		case domain.JobStateError:
			summary.Errors++
		}
	}
	finished := summary.Done + summary.Skipped + summary.Errors
	total := summary.Total
	if total < 1 {
		total = 1
	}
	summary.Percent = finished * 100 / total
	return summary
}
