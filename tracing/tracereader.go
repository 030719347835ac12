package tracing

import (
	"context"
	"fmt"

	"github.com/sarchlab/arena/datarecording"
	"github.com/sarchlab/arena/sim"
)

// ReadTrace loads the execution trace persisted by a DBTracer back into
// log-entry form, in the order the scheduler produced it.
func ReadTrace(reader datarecording.DataReader) ([]sim.LogEntry, error) {
	reader.MapTable(TraceTable, Record{})

	rows, _, err := reader.Query(context.Background(), TraceTable,
		datarecording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil, err
	}

	entries := make([]sim.LogEntry, 0, len(rows))
	for _, row := range rows {
		rec, ok := row.(*Record)
		if !ok {
			return nil, fmt.Errorf("unexpected row type %T", row)
		}
		entries = append(entries, rec.Entry())
	}

	return entries, nil
}

// ReadTraceFile loads the execution trace from a trace database file.
func ReadTraceFile(path string) ([]sim.LogEntry, error) {
	reader := datarecording.NewReader(path)
	defer reader.Close()

	return ReadTrace(reader)
}
