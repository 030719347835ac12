package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arena/sim"
)

type captureTracer struct {
	entries []sim.LogEntry
	flushed int
}

func (t *captureTracer) RecordEntry(e sim.LogEntry) {
	t.entries = append(t.entries, e)
}

func (t *captureTracer) Flush() {
	t.flushed++
}

type fakeDomain struct {
	sim.HookableBase
}

var _ = Describe("CollectTrace", func() {
	var (
		domain *fakeDomain
		tracer *captureTracer
	)

	BeforeEach(func() {
		domain = &fakeDomain{}
		tracer = &captureTracer{}
		CollectTrace(domain, tracer)
	})

	It("should register exactly one hook", func() {
		Expect(domain.NumHooks()).To(Equal(1))
	})

	It("should panic when the same tracer is attached twice", func() {
		Expect(func() {
			CollectTrace(domain, tracer)
		}).To(Panic())
	})

	It("should forward finished and cancelled entries", func() {
		domain.InvokeHook(sim.HookCtx{
			Domain: domain,
			Pos:    sim.HookPosAfterEvent,
			Detail: sim.LogEntry{EventID: "e1"},
		})
		domain.InvokeHook(sim.HookCtx{
			Domain: domain,
			Pos:    sim.HookPosEventCancelled,
			Detail: sim.LogEntry{EventID: "e2"},
		})
		domain.InvokeHook(sim.HookCtx{
			Domain: domain,
			Pos:    sim.HookPosBeforeEvent,
			Detail: sim.LogEntry{EventID: "e3"},
		})

		Expect(tracer.entries).To(HaveLen(2))
		Expect(tracer.entries[0].EventID).To(Equal("e1"))
		Expect(tracer.entries[1].EventID).To(Equal("e2"))
	})

	It("should flush when the run ends", func() {
		domain.InvokeHook(sim.HookCtx{
			Domain: domain,
			Pos:    sim.HookPosRunEnd,
		})

		Expect(tracer.flushed).To(Equal(1))
	})
})
