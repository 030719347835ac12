package tracing

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/arena/sim"
	"github.com/tebeka/atexit"
)

// JSONTracer writes the execution log as a JSON array, one element per log
// entry, in the order the scheduler produced them.
type JSONTracer struct {
	w          io.Writer
	lock       sync.Mutex
	firstEntry bool
}

// RecordEntry appends one log entry to the JSON stream.
func (t *JSONTracer) RecordEntry(e sim.LogEntry) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.firstEntry {
		t.firstEntry = false
	} else {
		_, err := t.w.Write([]byte(",\n"))
		if err != nil {
			panic(err)
		}
	}

	b, err := json.Marshal(RecordFromEntry(e))
	if err != nil {
		panic(err)
	}

	_, err = t.w.Write(b)
	if err != nil {
		panic(err)
	}
}

// Flush does nothing; the stream is already written through.
func (t *JSONTracer) Flush() {
}

func (t *JSONTracer) finish() {
	t.lock.Lock()
	defer t.lock.Unlock()

	_, err := t.w.Write([]byte("\n]"))
	if err != nil {
		panic(err)
	}

	if closer, ok := t.w.(io.Closer); ok {
		err := closer.Close()
		if err != nil {
			panic(err)
		}
	}
}

// NewJSONTracer creates a tracer that writes into a JSON file with the
// given name. The file is closed at exit.
func NewJSONTracer(path string) *JSONTracer {
	if path == "" {
		path = "arena_trace_" + xid.New().String()
	}

	filename := path + ".json"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}

	t := NewJSONTracerWithWriter(file)

	atexit.Register(func() { t.finish() })

	return t
}

// NewJSONTracerWithWriter creates a tracer that writes into the given
// writer. The caller owns the closing bracket; call finish through atexit
// only when the tracer also owns the file.
func NewJSONTracerWithWriter(w io.Writer) *JSONTracer {
	t := &JSONTracer{w: w, firstEntry: true}

	_, err := w.Write([]byte("[\n"))
	if err != nil {
		panic(err)
	}

	return t
}
