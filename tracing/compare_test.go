package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arena/sim"
)

var _ = Describe("Compare", func() {
	entry := func(id string, t sim.VTimeInSec) sim.LogEntry {
		return sim.LogEntry{
			EventID:       id,
			Kind:          "ENV",
			App:           "Files",
			Op:            "create_file",
			AdmittedTime:  t,
			StartedTime:   t,
			CompletedTime: t,
			Outcome:       sim.OutcomeCompleted,
		}
	}

	It("should find no differences between identical traces", func() {
		a := []sim.LogEntry{entry("e1", 1), entry("e2", 2)}
		b := []sim.LogEntry{entry("e1", 1), entry("e2", 2)}

		Expect(Compare(a, b)).To(BeEmpty())
	})

	It("should report a mismatched field with its index", func() {
		a := []sim.LogEntry{entry("e1", 1)}
		b := []sim.LogEntry{entry("e1", 1)}
		b[0].Outcome = sim.OutcomeFailed

		diffs := Compare(a, b)

		Expect(diffs).To(HaveLen(1))
		Expect(diffs[0].Index).To(Equal(0))
		Expect(diffs[0].Field).To(Equal("outcome"))
		Expect(diffs[0].A).To(Equal(sim.OutcomeCompleted))
		Expect(diffs[0].B).To(Equal(sim.OutcomeFailed))
	})

	It("should distinguish timestamps beyond float printing noise", func() {
		a := []sim.LogEntry{entry("e1", 1)}
		b := []sim.LogEntry{entry("e1", 1.0000000001)}

		diffs := Compare(a, b)

		Expect(diffs).NotTo(BeEmpty())
		Expect(diffs[0].Field).To(Equal("admitted_time"))
	})

	It("should report entries missing from the shorter trace", func() {
		a := []sim.LogEntry{entry("e1", 1), entry("e2", 2)}
		b := []sim.LogEntry{entry("e1", 1)}

		diffs := Compare(a, b)

		Expect(diffs).To(HaveLen(1))
		Expect(diffs[0].Field).To(Equal("presence"))
		Expect(diffs[0].A).To(Equal("e2"))
		Expect(diffs[0].B).To(Equal("<missing>"))
	})

	It("should not compare results", func() {
		a := []sim.LogEntry{entry("e1", 1)}
		b := []sim.LogEntry{entry("e1", 1)}
		a[0].Result = "detail only one side has"

		Expect(Compare(a, b)).To(BeEmpty())
	})
})
