package tracing

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arena/datarecording"
	"github.com/sarchlab/arena/sim"
)

var _ = Describe("DBTracer", func() {
	It("should persist a trace that reads back in order", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")

		recorder := datarecording.New(path)
		tracer := NewDBTracer(recorder)

		entries := []sim.LogEntry{
			{EventID: "e1", Kind: "ENV", App: "Mail",
				Op: "receive_email", Outcome: sim.OutcomeCompleted},
			{EventID: "e2", Kind: "AGENT", App: "Mail", Op: "list_inbox",
				Args:          sim.Args{"folder": "inbox"},
				AdmittedTime:  2,
				StartedTime:   2,
				CompletedTime: 2,
				Outcome:       sim.OutcomeCompleted},
		}
		for _, e := range entries {
			tracer.RecordEntry(e)
		}
		tracer.Flush()
		recorder.Close()

		readBack, err := ReadTraceFile(path + ".sqlite3")
		Expect(err).ToNot(HaveOccurred())
		Expect(Compare(entries, readBack)).To(BeEmpty())
		Expect(readBack[1].Args).To(HaveKeyWithValue("folder", "inbox"))
	})
})
