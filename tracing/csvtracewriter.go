package tracing

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/sarchlab/arena/sim"
	"github.com/tebeka/atexit"
)

// CSVTraceWriter stores the execution log into a CSV file.
type CSVTraceWriter struct {
	path string
	file *os.File
	w    *csv.Writer

	entries    []sim.LogEntry
	bufferSize int
}

// NewCSVTraceWriter creates a new CSVTraceWriter.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the tracing csv file. If the file already exists, Init
// panics.
func (t *CSVTraceWriter) Init() {
	if t.path == "" {
		t.path = "arena_trace_" + xid.New().String()
	}

	filename := t.path + ".csv"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	t.file = file
	t.w = csv.NewWriter(file)

	err = t.w.Write([]string{
		"EventID", "Kind", "App", "Op", "Args",
		"Admitted", "Started", "Completed", "Outcome", "Error", "Flag",
	})
	if err != nil {
		panic(err)
	}

	atexit.Register(func() {
		t.Flush()
		t.w.Flush()
		t.file.Close()
	})
}

// RecordEntry buffers one log entry.
func (t *CSVTraceWriter) RecordEntry(e sim.LogEntry) {
	t.entries = append(t.entries, e)

	if len(t.entries) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered entries into the file.
func (t *CSVTraceWriter) Flush() {
	for _, e := range t.entries {
		rec := RecordFromEntry(e)
		err := t.w.Write([]string{
			rec.EventID,
			rec.Kind,
			rec.App,
			rec.Op,
			rec.Args,
			formatTime(rec.AdmittedTime),
			formatTime(rec.StartedTime),
			formatTime(rec.CompletedTime),
			rec.Outcome,
			rec.Error,
			rec.Flag,
		})
		if err != nil {
			panic(err)
		}
	}

	t.entries = nil
	t.w.Flush()
}

func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', 10, 64)
}
