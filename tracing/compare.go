package tracing

import (
	"fmt"

	"github.com/sarchlab/arena/sim"
)

// A Difference is one mismatch found between two execution traces.
type Difference struct {
	Index int
	Field string
	A     string
	B     string
}

func (d Difference) String() string {
	return fmt.Sprintf("entry %d: %s differs, %q vs %q",
		d.Index, d.Field, d.A, d.B)
}

// Compare checks two execution traces for equality of ordering, targets,
// timestamps, and outcomes. It is how oracle-mode determinism and
// agent-vs-oracle regressions are checked. Results are not compared; they
// may legitimately contain app-specific detail the trace format does not
// canonicalize.
func Compare(a, b []sim.LogEntry) []Difference {
	var diffs []Difference

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		diffs = append(diffs, compareEntry(i, a[i], b[i])...)
	}

	for i := n; i < len(a); i++ {
		diffs = append(diffs, Difference{
			Index: i, Field: "presence", A: a[i].EventID, B: "<missing>"})
	}
	for i := n; i < len(b); i++ {
		diffs = append(diffs, Difference{
			Index: i, Field: "presence", A: "<missing>", B: b[i].EventID})
	}

	return diffs
}

func compareEntry(i int, a, b sim.LogEntry) []Difference {
	var diffs []Difference

	check := func(field, va, vb string) {
		if va != vb {
			diffs = append(diffs, Difference{
				Index: i, Field: field, A: va, B: vb})
		}
	}

	check("event_id", a.EventID, b.EventID)
	check("kind", a.Kind, b.Kind)
	check("app", a.App, b.App)
	check("op", a.Op, b.Op)
	check("admitted_time", fmtTime(a.AdmittedTime), fmtTime(b.AdmittedTime))
	check("started_time", fmtTime(a.StartedTime), fmtTime(b.StartedTime))
	check("completed_time",
		fmtTime(a.CompletedTime), fmtTime(b.CompletedTime))
	check("outcome", a.Outcome, b.Outcome)
	check("flag", a.Flag, b.Flag)

	return diffs
}

func fmtTime(t sim.VTimeInSec) string {
	return fmt.Sprintf("%.10f", float64(t))
}
