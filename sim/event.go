package sim

// VTimeInSec defines the time in the simulated space in the unit of second
type VTimeInSec float64

// EventKind classifies who causes an event to happen.
type EventKind int

// The possible kinds of events.
const (
	// KindEnv marks an event scripted by the scenario designer. It fires
	// autonomously once its temporal and causal gates are satisfied.
	KindEnv EventKind = iota

	// KindAgent marks an expected agent action. A KindAgent node in the
	// graph is a slot that is matched against a call actually issued by the
	// live agent driver. It is never auto-fired from the graph in agent
	// mode.
	KindAgent

	// KindOracle marks a known-good agent action. Oracle events are only
	// admitted when the scheduler runs in oracle mode, where they stand in
	// for the calls a correct agent would have made.
	KindOracle

	// KindValidation marks an event that only checks correctness and has no
	// scenario-visible purpose of its own.
	KindValidation

	// KindCondition marks an event gated by a predicate over the current
	// environment state in addition to its temporal gates.
	KindCondition
)

func (k EventKind) String() string {
	switch k {
	case KindEnv:
		return "ENV"
	case KindAgent:
		return "AGENT"
	case KindOracle:
		return "ORACLE"
	case KindValidation:
		return "VALIDATION"
	case KindCondition:
		return "CONDITION"
	}
	return "UNKNOWN"
}

// isAgentKind tells if an event of this kind stands for an agent action.
// Both declared agent slots and oracle stand-ins are matchable by live
// calls.
func (k EventKind) isAgentKind() bool {
	return k == KindAgent || k == KindOracle
}

// admissionRank defines the tie-break order among events that become ready
// at the same simulated time. Lower ranks are admitted first. Oracle events
// stand in for agent calls and therefore share the agent rank.
func (k EventKind) admissionRank() int {
	switch k {
	case KindEnv:
		return 0
	case KindAgent, KindOracle:
		return 1
	case KindCondition:
		return 2
	case KindValidation:
		return 3
	}
	return 4
}

// EventState is the lifecycle state of an event.
type EventState int

// The possible states of an event. An event moves from StatePending to
// StateReady to StateRunning, and ends in exactly one of StateCompleted,
// StateFailed, or StateCancelled. StateCancelled is only reachable from
// StatePending and StateReady.
const (
	StatePending EventState = iota
	StateReady
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

func (s EventState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	case StateCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// Args carries the named arguments bound to an app operation.
type Args map[string]any

// A Target names the app operation that an event invokes, together with the
// arguments bound at declaration time.
type Target struct {
	App  string `json:"app"`
	Op   string `json:"op"`
	Args Args   `json:"args"`
}

// Same tells if two targets name the same app operation, ignoring arguments.
func (t Target) Same(o Target) bool {
	return t.App == o.App && t.Op == o.Op
}

// A Predicate guards a condition event. It is re-evaluated on every
// scheduler tick while the event is pending and must only read state.
type Predicate func(rc *RunContext) bool

// An Event is a unit of causal and temporal scheduling against an app.
//
// Events are created through a GraphBuilder during capture mode. All state
// transitions after the run starts are performed by the Scheduler, which is
// the only writer.
type Event struct {
	id        string
	kind      EventKind
	target    Target
	deps      []string
	delay     VTimeInSec
	absTime   *VTimeInSec
	predicate Predicate
	declOrder int

	state  EventState
	result any
	err    error

	admittedTime  VTimeInSec
	startedTime   VTimeInSec
	completedTime VTimeInSec
}

// ID returns the identifier of the event, unique within a scenario.
func (e *Event) ID() string {
	return e.id
}

// Kind returns the kind of the event.
func (e *Event) Kind() EventKind {
	return e.kind
}

// Target returns the app operation the event invokes.
func (e *Event) Target() Target {
	return e.target
}

// Dependencies returns the IDs of the events that must complete before this
// event can be admitted.
func (e *Event) Dependencies() []string {
	return append([]string(nil), e.deps...)
}

// Delay returns the minimum simulated-time offset between the completion of
// all dependencies and the admission of this event.
func (e *Event) Delay() VTimeInSec {
	return e.delay
}

// AbsoluteTime returns the explicit simulated timestamp before which the
// event cannot run, and whether one was declared.
func (e *Event) AbsoluteTime() (VTimeInSec, bool) {
	if e.absTime == nil {
		return 0, false
	}
	return *e.absTime, true
}

// State returns the current lifecycle state of the event.
func (e *Event) State() EventState {
	return e.state
}

// Result returns the value produced by the app operation. It is only valid
// after the event completed.
func (e *Event) Result() any {
	return e.result
}

// Err returns the failure recorded for the event, if any.
func (e *Event) Err() error {
	return e.err
}

// Times returns the admitted, started, and completed simulated times of the
// event. They are only meaningful for states at or past the one they mark.
func (e *Event) Times() (admitted, started, completed VTimeInSec) {
	return e.admittedTime, e.startedTime, e.completedTime
}
