package sim

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Mode selects the driver of a run. Oracle mode and agent mode are mutually
// exclusive drivers over the same admission algorithm.
type Mode int

const (
	// OracleMode auto-supplies the expected agent calls from the declared
	// graph, producing a known-good baseline trace.
	OracleMode Mode = iota

	// AgentMode requires an external driver to supply the agent calls.
	AgentMode
)

func (m Mode) String() string {
	switch m {
	case OracleMode:
		return "oracle"
	case AgentMode:
		return "agent"
	}
	return "unknown"
}

// RunStatus is the terminal status of a run.
type RunStatus int

// A run is in exactly one of these statuses. Every run terminates in
// RunCompleted, RunTimedOut, or RunAborted.
const (
	RunNotStarted RunStatus = iota
	RunInProgress
	RunCompleted
	RunTimedOut
	RunAborted
)

func (s RunStatus) String() string {
	switch s {
	case RunNotStarted:
		return "NOT_STARTED"
	case RunInProgress:
		return "IN_PROGRESS"
	case RunCompleted:
		return "COMPLETED"
	case RunTimedOut:
		return "TIMED_OUT"
	case RunAborted:
		return "ABORTED"
	}
	return "UNKNOWN"
}

// ErrRunEnded is returned to an agent driver that submits a call after the
// run terminated.
var ErrRunEnded = errors.New("run is not accepting agent calls")

// A Slot describes a ready agent-kind event that a live agent call may
// match.
type Slot struct {
	EventID string `json:"event_id"`
	App     string `json:"app"`
	Op      string `json:"op"`
}

type agentCall struct {
	target Target
	reply  chan agentReply
}

type agentReply struct {
	result   any
	admitted VTimeInSec
	err      error
}

// A Scheduler turns a frozen event graph plus live agent calls into an
// ordered, side-effecting execution trace.
//
// A single loop goroutine owns all event-state transitions and clock
// advancement. App operations for same-tick independent events are
// dispatched onto worker goroutines; the loop rejoins on their completion
// to finalize event states.
type Scheduler struct {
	HookableBase

	mode     Mode
	rc       *RunContext
	duration VTimeInSec

	// mu guards event states and times for readers outside the loop
	// goroutine, such as the monitor and the agent driver.
	mu sync.RWMutex

	agentCalls  chan *agentCall
	queuedCalls []*agentCall
	callMu      sync.Mutex
	callsClosed bool
	inFlight    sync.WaitGroup
	wakeCh      chan struct{}
	stopCh      chan struct{}
	stopOnce    sync.Once

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	slotsRetired bool

	singleRunLock sync.Mutex

	status   RunStatus
	fatalErr error
}

// NewScheduler creates a scheduler over a run context. The duration is the
// simulated-time ceiling of the run.
func NewScheduler(
	rc *RunContext,
	mode Mode,
	duration VTimeInSec,
) *Scheduler {
	return &Scheduler{
		mode:       mode,
		rc:         rc,
		duration:   duration,
		agentCalls: make(chan *agentCall, 64),
		wakeCh:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		status:     RunNotStarted,
	}
}

// Mode returns the driver mode of the scheduler.
func (s *Scheduler) Mode() Mode {
	return s.mode
}

// Duration returns the simulated-time ceiling of the run.
func (s *Scheduler) Duration() VTimeInSec {
	return s.duration
}

// CurrentTime returns the current simulated time of the run.
func (s *Scheduler) CurrentTime() VTimeInSec {
	return s.rc.Clock.Now()
}

// RunContext returns the run context the scheduler steps.
func (s *Scheduler) RunContext() *RunContext {
	return s.rc
}

// Status returns the status of the run.
func (s *Scheduler) Status() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// FatalErr returns the error that aborted the run, if any.
func (s *Scheduler) FatalErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fatalErr
}

// Run processes the event graph until the run terminates. It freezes the
// graph, then loops: admit ready events, execute them, and advance the
// clock to the next interesting time.
func (s *Scheduler) Run() error {
	s.singleRunLock.Lock()
	defer s.singleRunLock.Unlock()

	if err := s.rc.Graph.Freeze(); err != nil {
		s.abort(err)
		return err
	}

	s.setStatus(RunInProgress)
	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosRunStart, Item: s.rc})
	s.rc.Clock.ScheduleWakeup(s.duration)

	for {
		if s.isStopped() {
			if s.mode == OracleMode {
				s.endRun(RunCompleted)
				return nil
			}

			// The driver is done. Unmet agent slots can never be matched
			// anymore, while autonomous events keep draining.
			s.retireAgentSlots()
		}

		// Autonomous events of a tick execute before the live calls admitted
		// at the same tick, mirroring the kind ranks of oracle admission.
		// Serving calls after the admission pass also lets a queued call
		// match a slot that became ready this very tick.
		s.pauseLock.Lock()
		batch := s.collectAdmissible()
		if len(batch) > 0 {
			s.executeBatch(batch)
		}
		progressed := s.serveAgentCalls() || len(batch) > 0
		s.pauseLock.Unlock()

		if progressed {
			continue
		}

		if !s.hasPendingWork() {
			if s.mode == OracleMode || s.isStopped() {
				s.endRun(RunCompleted)
				return nil
			}

			// Agent mode: the graph is drained, but the driver may still
			// issue calls until it stops or the ceiling is reached.
			if _, rt := s.rc.Clock.Strategy().(*RealTimeAdvance); rt {
				now := s.rc.Clock.Now()
				if s.rc.Clock.Strategy().Wait(now, s.duration, s.wakeCh) {
					if err := s.rc.Clock.AdvanceTo(s.duration); err != nil {
						s.abort(err)
						return err
					}
					s.endRun(RunCompleted)
					return nil
				}
				continue
			}

			select {
			case c := <-s.agentCalls:
				s.queuedCalls = append(s.queuedCalls, c)
			case <-s.stopCh:
			}
			continue
		}

		// With a fast clock, simulated time only advances past a ready agent
		// slot once the driver acted on it or stopped. A real-time clock
		// keeps flowing so that a slow agent can genuinely time out.
		//
		// At this point queuedCalls holds only deferred calls, because
		// serveAgentCalls ran earlier this iteration. Deferred calls are
		// waiting on slots that ready up through live calls, so they keep
		// the hold engaged rather than releasing it.
		if s.mode == AgentMode && !s.isStopped() && s.hasReadySlots() {
			if _, rt := s.rc.Clock.Strategy().(*RealTimeAdvance); !rt {
				select {
				case c := <-s.agentCalls:
					s.queuedCalls = append(s.queuedCalls, c)
				case <-s.stopCh:
				}
				continue
			}
		}

		now := s.rc.Clock.Now()
		if now >= s.duration {
			s.endRun(s.endStatusAtCeiling())
			return nil
		}

		next, ok := s.rc.Clock.NextWakeup()
		if !ok {
			if s.mode == AgentMode && len(s.queuedCalls) == 0 &&
				!s.isStopped() {
				select {
				case c := <-s.agentCalls:
					s.queuedCalls = append(s.queuedCalls, c)
				case <-s.stopCh:
				}
				continue
			}

			// The remaining events are gated on conditions that can no
			// longer change. Jump to the ceiling and report the timeout.
			next = s.duration
		}

		if next > s.duration {
			next = s.duration
		}

		if !s.rc.Clock.Strategy().Wait(now, next, s.wakeCh) {
			continue
		}

		if err := s.rc.Clock.AdvanceTo(next); err != nil {
			s.abort(err)
			return err
		}
	}
}

// Stop requests termination of the run. It is how an agent driver declares
// that it is done. Remaining unadmitted events are cancelled.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.signalWake()
}

// Pause prevents the scheduler from admitting more events.
func (s *Scheduler) Pause() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if s.isPaused {
		return
	}

	s.pauseLock.Lock()
	s.isPaused = true
}

// Continue allows the scheduler to admit more events.
func (s *Scheduler) Continue() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if !s.isPaused {
		return
	}

	s.pauseLock.Unlock()
	s.isPaused = false
}

// SubmitCall delivers one live agent call to the run. It blocks until the
// call is admitted and executed, and returns the operation result, the
// simulated time at which the call was admitted, and an error. A call that
// does not match any ready agent slot is still executed and logged, but the
// returned error is an UnmatchedAgentCallError.
func (s *Scheduler) SubmitCall(
	app, op string,
	args Args,
) (any, VTimeInSec, error) {
	c := &agentCall{
		target: Target{App: app, Op: op, Args: args},
		reply:  make(chan agentReply, 1),
	}

	// Admission past the closed check registers the submission, and the
	// send happens outside the lock so that a full channel never blocks
	// termination. The terminal drain waits for registered sends before it
	// finishes, so every accepted call is guaranteed a reply.
	s.callMu.Lock()
	if s.callsClosed {
		s.callMu.Unlock()
		return nil, 0, ErrRunEnded
	}
	s.inFlight.Add(1)
	s.callMu.Unlock()

	s.agentCalls <- c
	s.inFlight.Done()
	s.signalWake()

	r := <-c.reply
	return r.result, r.admitted, r.err
}

// ReadySlots returns the agent-kind events that are currently ready to be
// matched against live agent calls.
func (s *Scheduler) ReadySlots() []Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var slots []Slot
	for _, e := range s.rc.Graph.Events() {
		if e.kind.isAgentKind() && e.state == StateReady {
			slots = append(slots, Slot{
				EventID: e.id,
				App:     e.target.App,
				Op:      e.target.Op,
			})
		}
	}

	return slots
}

// StateCounts returns the number of events in each state. The monitor uses
// it to render run progress.
func (s *Scheduler) StateCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range s.rc.Graph.Events() {
		counts[e.state.String()]++
	}

	return counts
}

func (s *Scheduler) isStopped() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// retireAgentSlots cancels the agent slots that are still waiting for a
// live call once the driver declared it is done. Events depending on a
// retired slot can never run and are cancelled along with it.
func (s *Scheduler) retireAgentSlots() {
	if s.slotsRetired {
		return
	}
	s.slotsRetired = true

	for _, e := range s.rc.Graph.Events() {
		if !e.kind.isAgentKind() {
			continue
		}
		if st := e.State(); st != StatePending && st != StateReady {
			continue
		}

		s.cancelEvent(e)
		s.cascadeCancel(e)
	}
}

func (s *Scheduler) signalWake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) setStatus(st RunStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Scheduler) setState(e *Event, st EventState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st == StateRunning && e.state == StateRunning {
		panic("event " + e.id + " is already running")
	}

	e.state = st
}

// collectAdmissible performs one admission pass: re-evaluate condition
// predicates, promote pending events whose gates are satisfied, and select
// the ready events the current mode may fire. The batch is ordered by the
// kind tie-break rank, then by declaration order, so that same-tick
// admission is deterministic.
func (s *Scheduler) collectAdmissible() []*Event {
	now := s.rc.Clock.Now()

	var batch []*Event
	for _, e := range s.rc.Graph.Events() {
		if e.State() == StatePending {
			s.promoteIfReady(e, now)
		}
		if e.State() == StateReady && s.firesAutonomously(e) {
			batch = append(batch, e)
		}
	}

	sort.SliceStable(batch, func(i, j int) bool {
		ri := batch[i].kind.admissionRank()
		rj := batch[j].kind.admissionRank()
		if ri != rj {
			return ri < rj
		}
		return batch[i].declOrder < batch[j].declOrder
	})

	return batch
}

func (s *Scheduler) promoteIfReady(e *Event, now VTimeInSec) {
	if e.kind == KindCondition && e.predicate != nil {
		if !e.predicate(s.rc) {
			return
		}
	}

	depsDone, depTime := s.dependenciesCompleted(e)
	if !depsDone {
		return
	}

	gate := depTime + e.delay
	if abs, ok := e.AbsoluteTime(); ok {
		if abs > gate {
			gate = abs
		}
	}

	if gate > now {
		s.rc.Clock.ScheduleWakeup(gate)
		return
	}

	s.setState(e, StateReady)
}

func (s *Scheduler) dependenciesCompleted(
	e *Event,
) (done bool, completedAt VTimeInSec) {
	for _, depID := range e.deps {
		dep, ok := s.rc.Graph.Event(depID)
		if !ok {
			panic("dependency " + depID + " of event " + e.id + " not found")
		}
		if dep.State() != StateCompleted {
			return false, 0
		}
		if dep.completedTime > completedAt {
			completedAt = dep.completedTime
		}
	}
	return true, completedAt
}

// firesAutonomously tells if a ready event is fired by the scheduler
// itself. Agent slots in agent mode wait for a matching live call instead.
func (s *Scheduler) firesAutonomously(e *Event) bool {
	switch e.kind {
	case KindEnv, KindCondition, KindValidation:
		return true
	case KindOracle:
		return s.mode == OracleMode
	case KindAgent:
		// In oracle mode the scheduler auto-supplies the expected call.
		return s.mode == OracleMode
	}
	return false
}

type completion struct {
	result any
	err    error
}

// executeBatch runs all the admitted events of one tick. Independent events
// are dispatched concurrently onto worker goroutines; the loop joins on all
// of them and finalizes states in admission order, which keeps the
// execution log deterministic.
func (s *Scheduler) executeBatch(batch []*Event) {
	now := s.rc.Clock.Now()
	completions := make([]completion, len(batch))

	var wg sync.WaitGroup
	for i, e := range batch {
		s.setState(e, StateRunning)
		e.admittedTime = now
		e.startedTime = now

		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosEventAdmitted, Item: e})
		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosBeforeEvent, Item: e})

		wg.Add(1)
		go func(i int, e *Event) {
			defer wg.Done()
			result, err := s.invoke(e.target.App, e.target.Op, e.target.Args)
			completions[i] = completion{result: result, err: err}
		}(i, e)
	}
	wg.Wait()

	for i, e := range batch {
		s.finalize(e, completions[i].result, completions[i].err, e.target.Args)
	}
}

// finalize records the outcome of an executed event and propagates failure
// along the dependency edges.
func (s *Scheduler) finalize(e *Event, result any, err error, args Args) {
	if e.State() == StateCancelled {
		// The event was cancelled while its operation was in flight. The
		// operation is non-interruptible, so the result is discarded.
		return
	}

	now := s.rc.Clock.Now()
	e.completedTime = now

	entry := LogEntry{
		EventID:       e.id,
		Kind:          e.kind.String(),
		App:           e.target.App,
		Op:            e.target.Op,
		Args:          args,
		AdmittedTime:  e.admittedTime,
		StartedTime:   e.startedTime,
		CompletedTime: now,
	}

	if err != nil {
		opErr := &AppOperationError{
			App: e.target.App,
			Op:  e.target.Op,
			Err: err,
		}
		e.err = opErr
		s.setState(e, StateFailed)

		entry.Outcome = OutcomeFailed
		entry.Error = opErr.Error()
		s.rc.Log.Append(entry)

		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAfterEvent, Item: e,
			Detail: entry})
		s.cascadeCancel(e)
		return
	}

	e.result = result
	s.setState(e, StateCompleted)

	entry.Outcome = OutcomeCompleted
	entry.Result = result
	s.rc.Log.Append(entry)

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAfterEvent, Item: e,
		Detail: entry})
}

// cascadeCancel cancels every downstream event that can no longer run
// because one of its dependencies failed or was cancelled. Siblings with no
// dependency on the failed event are unaffected.
func (s *Scheduler) cascadeCancel(failed *Event) {
	for _, depID := range s.rc.Graph.Dependents(failed.id) {
		dep, _ := s.rc.Graph.Event(depID)
		if dep == nil {
			continue
		}
		if st := dep.State(); st != StatePending && st != StateReady {
			continue
		}

		s.cancelEvent(dep)
		s.cascadeCancel(dep)
	}
}

func (s *Scheduler) cancelEvent(e *Event) {
	s.setState(e, StateCancelled)
	e.completedTime = s.rc.Clock.Now()

	entry := LogEntry{
		EventID:       e.id,
		Kind:          e.kind.String(),
		App:           e.target.App,
		Op:            e.target.Op,
		CompletedTime: s.rc.Clock.Now(),
		Outcome:       OutcomeCancelled,
	}
	s.rc.Log.Append(entry)

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosEventCancelled, Item: e,
		Detail: entry})
}

// serveAgentCalls admits the live agent calls that arrived since the last
// tick. Each call is matched against the ready agent slots by target; the
// earliest-declared matching slot wins. A call whose declared slot exists
// but is not ready yet stays queued until the slot's gates are satisfied,
// so that a replayed call cannot outrun the graph.
func (s *Scheduler) serveAgentCalls() bool {
	pending := s.queuedCalls
	s.queuedCalls = nil

	for {
		select {
		case c := <-s.agentCalls:
			pending = append(pending, c)
			continue
		default:
		}
		break
	}

	served := false
	var deferred []*agentCall

	for _, c := range pending {
		if s.shouldDefer(c.target) {
			deferred = append(deferred, c)
			continue
		}

		s.handleAgentCall(c)
		served = true
	}

	s.queuedCalls = deferred

	return served
}

// shouldDefer tells if a live call must wait for its declared slot to
// become ready. Calls with no declared slot at all are served, and flagged,
// right away.
func (s *Scheduler) shouldDefer(t Target) bool {
	if s.matchSlot(t) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.rc.Graph.Events() {
		if e.kind.isAgentKind() && e.state == StatePending &&
			e.target.Same(t) {
			return true
		}
	}

	return false
}

func (s *Scheduler) handleAgentCall(c *agentCall) {
	now := s.rc.Clock.Now()

	slot := s.matchSlot(c.target)
	if slot == nil {
		s.handleUnmatchedCall(c, now)
		return
	}

	s.setState(slot, StateRunning)
	slot.admittedTime = now
	slot.startedTime = now

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosEventAdmitted, Item: slot})
	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosBeforeEvent, Item: slot})

	// The slot executes with the arguments the agent actually passed, not
	// the declared expectation. Validation compares the two later.
	result, err := s.invoke(c.target.App, c.target.Op, c.target.Args)
	s.finalize(slot, result, err, c.target.Args)

	c.reply <- agentReply{result: result, admitted: now, err: slot.Err()}
}

func (s *Scheduler) handleUnmatchedCall(c *agentCall, now VTimeInSec) {
	result, err := s.invoke(c.target.App, c.target.Op, c.target.Args)

	entry := LogEntry{
		EventID:       "live-" + GetIDGenerator().Generate(),
		Kind:          KindAgent.String(),
		App:           c.target.App,
		Op:            c.target.Op,
		Args:          c.target.Args,
		AdmittedTime:  now,
		StartedTime:   now,
		CompletedTime: now,
		Outcome:       OutcomeCompleted,
		Flag:          FlagUnmatched,
		Result:        result,
	}

	replyErr := error(&UnmatchedAgentCallError{
		App: c.target.App,
		Op:  c.target.Op,
	})

	if err != nil {
		opErr := &AppOperationError{
			App: c.target.App,
			Op:  c.target.Op,
			Err: err,
		}
		entry.Outcome = OutcomeFailed
		entry.Error = opErr.Error()
		replyErr = opErr
	}

	s.rc.Log.Append(entry)
	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAfterEvent, Detail: entry})

	c.reply <- agentReply{result: result, admitted: now, err: replyErr}
}

func (s *Scheduler) matchSlot(t Target) *Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.rc.Graph.Events() {
		if !e.kind.isAgentKind() || e.state != StateReady {
			continue
		}
		if e.target.Same(t) {
			return e
		}
	}

	return nil
}

func (s *Scheduler) invoke(app, op string, args Args) (any, error) {
	a, ok := s.rc.App(app)
	if !ok {
		return nil, fmt.Errorf("unknown app %s", app)
	}

	return a.Invoke(Call{Op: op, Args: args, Now: s.rc.Clock.Now()})
}

func (s *Scheduler) hasReadySlots() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.rc.Graph.Events() {
		if e.kind.isAgentKind() && e.state == StateReady {
			return true
		}
	}
	return false
}

func (s *Scheduler) hasPendingWork() bool {
	for _, e := range s.rc.Graph.Events() {
		if st := e.State(); st == StatePending || st == StateReady {
			return true
		}
	}
	return false
}

// endStatusAtCeiling decides the terminal status when the simulated time
// reaches the scenario duration. Remaining unadmitted events turn the run
// into a timeout; a fully drained graph completes normally.
func (s *Scheduler) endStatusAtCeiling() RunStatus {
	if s.hasPendingWork() {
		return RunTimedOut
	}
	return RunCompleted
}

func (s *Scheduler) endRun(status RunStatus) {
	s.cancelRemaining()
	s.setStatus(status)
	s.rejectWaitingCalls()
	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosRunEnd, Item: s.rc,
		Detail: status})
}

func (s *Scheduler) abort(err error) {
	s.mu.Lock()
	s.fatalErr = err
	s.mu.Unlock()

	s.cancelRemaining()
	s.setStatus(RunAborted)
	s.rejectWaitingCalls()
	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosRunEnd, Item: s.rc,
		Detail: RunAborted})
}

func (s *Scheduler) cancelRemaining() {
	for _, e := range s.rc.Graph.Events() {
		if st := e.State(); st == StatePending || st == StateReady {
			s.cancelEvent(e)
		}
	}
}

// rejectWaitingCalls unblocks agent drivers that are still waiting for a
// reply after the run terminated.
func (s *Scheduler) rejectWaitingCalls() {
	s.callMu.Lock()
	s.callsClosed = true
	s.callMu.Unlock()

	// Keep receiving until every submitter that passed the closed check has
	// handed its call over; a full channel must never wedge termination.
	settled := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(settled)
	}()

	for {
		select {
		case c := <-s.agentCalls:
			c.reply <- agentReply{err: ErrRunEnded}
			continue
		case <-settled:
		}
		break
	}

	for {
		select {
		case c := <-s.agentCalls:
			c.reply <- agentReply{err: ErrRunEnded}
		default:
			for _, c := range s.queuedCalls {
				c.reply <- agentReply{err: ErrRunEnded}
			}
			s.queuedCalls = nil
			return
		}
	}
}

// State returns the current state of the event with the given ID.
func (s *Scheduler) State(eventID string) (EventState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.rc.Graph.Event(eventID)
	if !ok {
		return 0, false
	}
	return e.state, true
}
