// Package tracing turns the execution log of a run into persisted trace
// artifacts: JSON, CSV, or database tables that external tooling replays
// and compares.
package tracing

import "github.com/sarchlab/arena/sim"

// A Tracer consumes execution-log entries as the scheduler produces them.
type Tracer interface {
	// RecordEntry receives one finished log entry.
	RecordEntry(e sim.LogEntry)

	// Flush writes all the buffered entries to the tracer's backend. It is
	// called when the run terminates.
	Flush()
}
