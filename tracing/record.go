package tracing

import (
	"encoding/json"

	"github.com/sarchlab/arena/sim"
)

// A Record is the flattened, serialization-safe form of one execution-log
// entry. Arguments and results are JSON-encoded strings so that every
// field fits both CSV columns and database tables.
type Record struct {
	EventID       string  `json:"event_id"`
	Kind          string  `json:"kind"`
	App           string  `json:"app"`
	Op            string  `json:"op"`
	Args          string  `json:"args"`
	AdmittedTime  float64 `json:"admitted_time"`
	StartedTime   float64 `json:"started_time"`
	CompletedTime float64 `json:"completed_time"`
	Outcome       string  `json:"outcome"`
	Error         string  `json:"error"`
	Flag          string  `json:"flag"`
	Result        string  `json:"result"`
}

// RecordFromEntry flattens a log entry into a record.
func RecordFromEntry(e sim.LogEntry) Record {
	return Record{
		EventID:       e.EventID,
		Kind:          e.Kind,
		App:           e.App,
		Op:            e.Op,
		Args:          mustMarshal(e.Args),
		AdmittedTime:  float64(e.AdmittedTime),
		StartedTime:   float64(e.StartedTime),
		CompletedTime: float64(e.CompletedTime),
		Outcome:       e.Outcome,
		Error:         e.Error,
		Flag:          e.Flag,
		Result:        mustMarshal(e.Result),
	}
}

// Entry restores the log entry form of the record.
func (r Record) Entry() sim.LogEntry {
	e := sim.LogEntry{
		EventID:       r.EventID,
		Kind:          r.Kind,
		App:           r.App,
		Op:            r.Op,
		AdmittedTime:  sim.VTimeInSec(r.AdmittedTime),
		StartedTime:   sim.VTimeInSec(r.StartedTime),
		CompletedTime: sim.VTimeInSec(r.CompletedTime),
		Outcome:       r.Outcome,
		Error:         r.Error,
		Flag:          r.Flag,
	}

	if r.Args != "" && r.Args != "null" {
		args := sim.Args{}
		if err := json.Unmarshal([]byte(r.Args), &args); err == nil {
			e.Args = args
		}
	}

	if r.Result != "" && r.Result != "null" {
		var result any
		if err := json.Unmarshal([]byte(r.Result), &result); err == nil {
			e.Result = result
		}
	}

	return e
}

func mustMarshal(v any) string {
	if v == nil {
		return ""
	}

	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
