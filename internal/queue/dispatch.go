package queue

// Dispatcher executes one work unit and delivers its outcome exactly once.
// The queue never has more than one dispatch in flight.
type Dispatcher interface {
	Dispatch(work func() Outcome, done func(Outcome))
}

// GoDispatcher runs the work unit on a background goroutine.
type GoDispatcher struct{}

// Dispatch executes work off the caller's goroutine and delivers its result.
func (GoDispatcher) Dispatch(work func() Outcome, done func(Outcome)) {
	go func() {
		done(work())
	}()
}

// SyncDispatcher is the degraded fallback when background dispatch is
// unavailable: work and completion run synchronously in place.
type SyncDispatcher struct{}

// Dispatch executes work and completion inline.
func (SyncDispatcher) Dispatch(work func() Outcome, done func(Outcome)) {
	done(work())
}
