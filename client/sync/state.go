package sync

import "nutrilog/services"

// Phase of one logical read (one summary key).
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseFetching  Phase = "fetching"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// SummaryState is the pure per-key state the presentation layer renders
// from: the latest summary, whether it came from cache, and why the
// authoritative fetch failed if it did. No observable fields; subscribers
// read snapshots.
type SummaryState struct {
	Phase         Phase
	Summary       *services.DaySummary
	Degraded      bool
	FailureReason string
	// Stale is set when a write landed after the last fetch; the summary
	// shown no longer reflects the server.
	Stale bool
}

type EventKind int

const (
	EventFetchStarted EventKind = iota
	EventFetchSucceeded
	EventFetchFailed
	EventWriteSucceeded
)

// Event is one observed transition input.
type Event struct {
	Kind     EventKind
	Summary  *services.DaySummary // FetchSucceeded, or degraded data on FetchFailed
	Degraded bool
	Err      string // FetchFailed
}

// Reduce is the single transition function: state + event -> state. Pure,
// so it can be tested exhaustively and driven from anywhere.
func Reduce(s SummaryState, e Event) SummaryState {
	switch e.Kind {
	case EventFetchStarted:
		s.Phase = PhaseFetching
	case EventFetchSucceeded:
		s.Phase = PhaseSucceeded
		s.Summary = e.Summary
		s.Degraded = false
		s.FailureReason = ""
		s.Stale = false
	case EventFetchFailed:
		s.Phase = PhaseFailed
		s.FailureReason = e.Err
		if e.Summary != nil {
			// Keep the degraded data; it is better than nothing and the
			// flag tells the UI to mark it.
			s.Summary = e.Summary
			s.Degraded = true
			s.Stale = false
		}
	case EventWriteSucceeded:
		s.Stale = true
	}
	return s
}
