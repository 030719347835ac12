package sim

import "sync"

// The possible outcomes recorded in the execution log.
const (
	OutcomeCompleted = "COMPLETED"
	OutcomeFailed    = "FAILED"
	OutcomeCancelled = "CANCELLED"
)

// FlagUnmatched marks a log entry for a live agent call that did not match
// any declared agent slot.
const FlagUnmatched = "unmatched"

// A LogEntry is one record of the execution log.
type LogEntry struct {
	EventID       string     `json:"event_id"`
	Kind          string     `json:"kind"`
	App           string     `json:"app"`
	Op            string     `json:"op"`
	Args          Args       `json:"args,omitempty"`
	AdmittedTime  VTimeInSec `json:"admitted_time"`
	StartedTime   VTimeInSec `json:"started_time"`
	CompletedTime VTimeInSec `json:"completed_time"`
	Outcome       string     `json:"outcome"`
	Error         string     `json:"error,omitempty"`
	Flag          string     `json:"flag,omitempty"`

	// Result holds the raw value returned by the app operation. It is kept
	// out of the serialized record; persisted trace formats stringify it.
	Result any `json:"-"`
}

// An ExecutionLog is the authoritative, append-only record of a run. It is
// what validation and replay comparison consume.
type ExecutionLog struct {
	mu      sync.RWMutex
	entries []LogEntry
}

// NewExecutionLog creates an empty execution log.
func NewExecutionLog() *ExecutionLog {
	return &ExecutionLog{}
}

// Append adds one entry at the end of the log.
func (l *ExecutionLog) Append(e LogEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// Entries returns a copy of all the entries in append order.
func (l *ExecutionLog) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]LogEntry(nil), l.entries...)
}

// Len returns the number of entries in the log.
func (l *ExecutionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
