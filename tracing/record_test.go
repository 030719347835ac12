package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arena/sim"
)

var _ = Describe("Record", func() {
	It("should flatten and restore a log entry", func() {
		entry := sim.LogEntry{
			EventID:       "e3",
			Kind:          "AGENT",
			App:           "Mail",
			Op:            "send_email",
			Args:          sim.Args{"to": "a@example.com", "count": 2.0},
			AdmittedTime:  1,
			StartedTime:   1,
			CompletedTime: 1.5,
			Outcome:       sim.OutcomeCompleted,
		}

		rec := RecordFromEntry(entry)
		Expect(rec.EventID).To(Equal("e3"))
		Expect(rec.Args).To(ContainSubstring(`"to":"a@example.com"`))

		restored := rec.Entry()
		Expect(restored.EventID).To(Equal(entry.EventID))
		Expect(restored.Kind).To(Equal(entry.Kind))
		Expect(restored.Args).To(HaveKeyWithValue("to", "a@example.com"))
		Expect(restored.Args).To(HaveKeyWithValue("count", 2.0))
		Expect(restored.CompletedTime).To(Equal(sim.VTimeInSec(1.5)))
	})

	It("should keep empty arguments and results empty", func() {
		rec := RecordFromEntry(sim.LogEntry{EventID: "e1"})

		Expect(rec.Args).To(Equal(""))
		Expect(rec.Result).To(Equal(""))

		restored := rec.Entry()
		Expect(restored.Args).To(BeNil())
		Expect(restored.Result).To(BeNil())
	})
})
