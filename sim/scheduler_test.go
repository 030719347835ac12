package sim

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Scheduler", func() {
	var (
		mockCtrl *gomock.Controller
		app1     *MockApp
		b        *GraphBuilder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		app1 = stubApp(mockCtrl, "App1")
		b = NewGraphBuilder()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	makeScheduler := func(mode Mode, duration VTimeInSec) *Scheduler {
		rc := NewRunContext(b.Graph(), []App{app1})
		return NewScheduler(rc, mode, duration)
	}

	It("should run a delayed chain at the declared times", func() {
		app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil).Times(2)

		h1 := b.Call(app1, "put", nil).DependsOn(nil, 2)
		b.Call(app1, "get", nil).DependsOn(h1, 1)

		s := makeScheduler(OracleMode, 10)
		Expect(s.Run()).To(Succeed())

		Expect(s.Status()).To(Equal(RunCompleted))

		entries := s.RunContext().Log.Entries()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Op).To(Equal("put"))
		Expect(entries[0].CompletedTime).To(Equal(VTimeInSec(2)))
		Expect(entries[1].Op).To(Equal("get"))
		Expect(entries[1].CompletedTime).To(Equal(VTimeInSec(3)))
		Expect(entries[1].Outcome).To(Equal(OutcomeCompleted))
	})

	It("should honor absolute time anchors over dependency delays", func() {
		app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil).Times(2)

		h1 := b.Call(app1, "put", nil).At(1)
		b.Call(app1, "get", nil).DependsOn(h1, 1).At(5)

		s := makeScheduler(OracleMode, 10)
		Expect(s.Run()).To(Succeed())

		entries := s.RunContext().Log.Entries()
		Expect(entries[1].CompletedTime).To(Equal(VTimeInSec(5)))
	})

	It("should admit same-tick events by kind rank, then by declaration "+
		"order", func() {
		app1.EXPECT().Invoke(gomock.Any()).Return(nil, nil).Times(4)

		b.Call(app1, "check", nil).At(1).AsValidation()
		b.Call(app1, "act", nil).At(1).AsAgent()
		b.Call(app1, "put", nil).At(1)
		b.Call(app1, "post", nil).At(1)

		s := makeScheduler(OracleMode, 10)
		Expect(s.Run()).To(Succeed())

		var ops []string
		for _, e := range s.RunContext().Log.Entries() {
			ops = append(ops, e.Op)
		}
		Expect(ops).To(Equal([]string{"put", "post", "act", "check"}))
	})

	It("should record the operation result in the event and the log", func() {
		app1.EXPECT().Invoke(gomock.Any()).Return(42, nil)

		h := b.Call(app1, "get", nil)

		s := makeScheduler(OracleMode, 10)
		Expect(s.Run()).To(Succeed())

		Expect(h.Event().State()).To(Equal(StateCompleted))
		Expect(h.Event().Result()).To(Equal(42))
		Expect(s.RunContext().Log.Entries()[0].Result).To(Equal(42))
	})

	It("should capture a failure and cancel only the dependents", func() {
		app1.EXPECT().Invoke(gomock.Any()).
			DoAndReturn(func(c Call) (any, error) {
				if c.Op == "boom" {
					return nil, errors.New("exploded")
				}
				return "ok", nil
			}).AnyTimes()

		hBoom := b.Call(app1, "boom", nil).At(1)
		hDep := b.Call(app1, "get", nil).DependsOn(hBoom, 1)
		hGrand := b.Call(app1, "get", nil).DependsOn(hDep, 1)
		hSibling := b.Call(app1, "put", nil).At(2)

		s := makeScheduler(OracleMode, 10)
		Expect(s.Run()).To(Succeed())

		Expect(s.Status()).To(Equal(RunCompleted))
		Expect(hBoom.Event().State()).To(Equal(StateFailed))
		Expect(hDep.Event().State()).To(Equal(StateCancelled))
		Expect(hGrand.Event().State()).To(Equal(StateCancelled))
		Expect(hSibling.Event().State()).To(Equal(StateCompleted))

		var opErr *AppOperationError
		Expect(errors.As(hBoom.Event().Err(), &opErr)).To(BeTrue())
		Expect(opErr.Error()).To(Equal("App1.boom: exploded"))

		entries := s.RunContext().Log.Entries()
		Expect(entries[0].Outcome).To(Equal(OutcomeFailed))
		Expect(entries[1].Outcome).To(Equal(OutcomeCancelled))
		Expect(entries[2].Outcome).To(Equal(OutcomeCancelled))
	})

	It("should fire a condition event once its predicate turns true", func() {
		app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil).Times(2)

		b.Call(app1, "put", nil).At(2)
		cond := b.Call(app1, "notify", nil).When(func(rc *RunContext) bool {
			return rc.Log.Len() > 0
		})

		s := makeScheduler(OracleMode, 10)
		Expect(s.Run()).To(Succeed())

		Expect(cond.Event().State()).To(Equal(StateCompleted))
		_, _, completed := cond.Event().Times()
		Expect(completed).To(Equal(VTimeInSec(2)))
	})

	It("should time out when events remain gated past the ceiling", func() {
		h := b.Call(app1, "put", nil).At(20)

		s := makeScheduler(OracleMode, 10)
		Expect(s.Run()).To(Succeed())

		Expect(s.Status()).To(Equal(RunTimedOut))
		Expect(h.Event().State()).To(Equal(StateCancelled))
		Expect(s.CurrentTime()).To(Equal(VTimeInSec(10)))

		entries := s.RunContext().Log.Entries()
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Outcome).To(Equal(OutcomeCancelled))
	})

	It("should time out when a condition never turns true", func() {
		b.Call(app1, "notify", nil).When(func(*RunContext) bool {
			return false
		})

		s := makeScheduler(OracleMode, 5)
		Expect(s.Run()).To(Succeed())

		Expect(s.Status()).To(Equal(RunTimedOut))
	})

	It("should run an event gated exactly at the ceiling", func() {
		app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil)

		b.Call(app1, "put", nil).At(10)

		s := makeScheduler(OracleMode, 10)
		Expect(s.Run()).To(Succeed())

		Expect(s.Status()).To(Equal(RunCompleted))
	})

	It("should refuse to run a cyclic graph", func() {
		// Assemble a cycle directly; the builder would reject it earlier.
		g := b.Graph()
		e1 := &Event{id: "c1", target: Target{App: "App1", Op: "put"}}
		e2 := &Event{id: "c2", target: Target{App: "App1", Op: "put"}}
		Expect(g.add(e1)).To(Succeed())
		Expect(g.add(e2)).To(Succeed())
		e1.deps = []string{"c2"}
		g.dependents["c2"] = []string{"c1"}
		e2.deps = []string{"c1"}
		g.dependents["c1"] = []string{"c2"}

		s := makeScheduler(OracleMode, 10)

		err := s.Run()
		Expect(err).To(BeAssignableToTypeOf(&CycleError{}))
		Expect(s.Status()).To(Equal(RunAborted))
		Expect(s.FatalErr()).To(Equal(err))
	})

	Context("in agent mode", func() {
		It("should match a live call to its declared slot", func() {
			app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil).Times(2)

			h1 := b.Call(app1, "put", nil).At(1)
			slot := b.Call(app1, "act", Args{"x": 1.0}).
				DependsOn(h1, 1).AsAgent()

			s := makeScheduler(AgentMode, 10)
			done := make(chan error, 1)
			go func() { done <- s.Run() }()

			result, admitted, err := s.SubmitCall("App1", "act",
				Args{"x": 2.0})
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("ok"))
			Expect(admitted).To(Equal(VTimeInSec(2)))

			s.Stop()
			Expect(<-done).To(Succeed())
			Expect(s.Status()).To(Equal(RunCompleted))

			// The live arguments, not the declared expectation, are logged.
			Expect(slot.Event().State()).To(Equal(StateCompleted))
			entries := s.RunContext().Log.Entries()
			Expect(entries[1].Args).To(Equal(Args{"x": 2.0}))
		})

		It("should flag a call that matches no declared slot", func() {
			app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil).Times(2)

			b.Call(app1, "put", nil).At(1)

			s := makeScheduler(AgentMode, 10)
			done := make(chan error, 1)
			go func() { done <- s.Run() }()

			_, _, err := s.SubmitCall("App1", "rogue", nil)

			var unmatched *UnmatchedAgentCallError
			Expect(errors.As(err, &unmatched)).To(BeTrue())

			s.Stop()
			Expect(<-done).To(Succeed())

			entries := s.RunContext().Log.Entries()
			var flagged *LogEntry
			for i := range entries {
				if entries[i].Op == "rogue" {
					flagged = &entries[i]
				}
			}
			Expect(flagged).ToNot(BeNil())
			Expect(flagged.Flag).To(Equal(FlagUnmatched))
			Expect(flagged.EventID).To(HavePrefix("live-"))
			Expect(flagged.Outcome).To(Equal(OutcomeCompleted))
		})

		It("should keep draining autonomous events after the driver "+
			"stops", func() {
			app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil)

			env := b.Call(app1, "put", nil).At(3)
			slot := b.Call(app1, "act", nil).At(1).AsAgent()

			s := makeScheduler(AgentMode, 10)
			done := make(chan error, 1)
			go func() { done <- s.Run() }()

			s.Stop()
			Expect(<-done).To(Succeed())

			Expect(s.Status()).To(Equal(RunCompleted))
			Expect(slot.Event().State()).To(Equal(StateCancelled))
			Expect(env.Event().State()).To(Equal(StateCompleted))

			_, _, completed := env.Event().Times()
			Expect(completed).To(Equal(VTimeInSec(3)))
		})

		It("should cancel events downstream of an unmet slot", func() {
			app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil).AnyTimes()

			slot := b.Call(app1, "act", nil).At(1).AsAgent()
			dep := b.Call(app1, "get", nil).DependsOn(slot, 1)

			s := makeScheduler(AgentMode, 10)
			done := make(chan error, 1)
			go func() { done <- s.Run() }()

			s.Stop()
			Expect(<-done).To(Succeed())

			Expect(slot.Event().State()).To(Equal(StateCancelled))
			Expect(dep.Event().State()).To(Equal(StateCancelled))
		})

		It("should terminate with more submitters than the call channel "+
			"holds", func() {
			app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil).AnyTimes()

			s := makeScheduler(AgentMode, 10)
			done := make(chan error, 1)
			go func() { done <- s.Run() }()

			// Hold the loop so the submissions pile up in the channel.
			s.Pause()

			const callers = 80
			replies := make(chan error, callers)
			for i := 0; i < callers; i++ {
				go func() {
					_, _, err := s.SubmitCall("App1", "rogue", nil)
					replies <- err
				}()
			}
			time.Sleep(50 * time.Millisecond)

			s.Stop()
			s.Continue()

			Expect(<-done).To(Succeed())
			for i := 0; i < callers; i++ {
				Eventually(replies).Should(Receive())
			}
		})

		It("should reject calls after the run ended", func() {
			s := makeScheduler(AgentMode, 10)
			done := make(chan error, 1)
			go func() { done <- s.Run() }()

			s.Stop()
			Expect(<-done).To(Succeed())

			_, _, err := s.SubmitCall("App1", "late", nil)
			Expect(err).To(MatchError(ErrRunEnded))
		})

		It("should hold the clock for a ready slot while an early call "+
			"for a later slot waits", func() {
			app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil).Times(2)

			first := b.Call(app1, "act", nil).At(1).AsAgent()
			second := b.Call(app1, "get", nil).DependsOn(first, 1).AsAgent()

			s := makeScheduler(AgentMode, 10)
			done := make(chan error, 1)
			go func() { done <- s.Run() }()

			// The call for the chained slot arrives before the call for
			// the ready one. It must park, not release the clock hold.
			secondDone := make(chan error, 1)
			go func() {
				_, _, err := s.SubmitCall("App1", "get", nil)
				secondDone <- err
			}()
			time.Sleep(50 * time.Millisecond)

			_, admitted, err := s.SubmitCall("App1", "act", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(admitted).To(Equal(VTimeInSec(1)))

			Expect(<-secondDone).ToNot(HaveOccurred())

			s.Stop()
			Expect(<-done).To(Succeed())

			Expect(s.Status()).To(Equal(RunCompleted))
			Expect(first.Event().State()).To(Equal(StateCompleted))
			Expect(second.Event().State()).To(Equal(StateCompleted))
		})

		It("should serve oracle slots to live calls", func() {
			app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil)

			slot := b.Call(app1, "act", nil).At(1).Oracle()

			s := makeScheduler(AgentMode, 10)
			done := make(chan error, 1)
			go func() { done <- s.Run() }()

			_, admitted, err := s.SubmitCall("App1", "act", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(admitted).To(Equal(VTimeInSec(1)))

			s.Stop()
			Expect(<-done).To(Succeed())
			Expect(slot.Event().State()).To(Equal(StateCompleted))
		})
	})

	Context("with hooks", func() {
		It("should invoke hooks around the run and each event", func() {
			app1.EXPECT().Invoke(gomock.Any()).Return("ok", nil)

			b.Call(app1, "put", nil).At(1)

			s := makeScheduler(OracleMode, 10)

			var positions []string
			s.AcceptHook(hookFunc(func(ctx HookCtx) {
				positions = append(positions, ctx.Pos.Name)
			}))

			Expect(s.Run()).To(Succeed())

			Expect(positions).To(Equal([]string{
				"RunStart",
				"EventAdmitted",
				"BeforeEvent",
				"AfterEvent",
				"RunEnd",
			}))
		})
	})
})

// hookFunc adapts a function to the Hook interface for tests.
type hookFunc func(ctx HookCtx)

func (f hookFunc) Func(ctx HookCtx) {
	f(ctx)
}
