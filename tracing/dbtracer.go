package tracing

import (
	"sync"

	"github.com/sarchlab/arena/datarecording"
	"github.com/sarchlab/arena/sim"
)

// TraceTable is the name of the database table that holds the execution
// trace of a run.
const TraceTable = "trace"

// DBTracer stores the execution log into a database through a
// datarecording backend. The persisted table is the artifact that replay
// and trace comparison read back.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer writing through the given backend.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{backend: backend}

	t.backend.CreateTable(TraceTable, Record{})

	return t
}

// RecordEntry inserts one log entry into the trace table.
func (t *DBTracer) RecordEntry(e sim.LogEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(TraceTable, RecordFromEntry(e))
}

// Flush pushes the buffered entries into the database.
func (t *DBTracer) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.Flush()
}
