package sim

import "strconv"

// A GraphBuilder is the capture-mode context of a scenario. While the
// scenario declares its event flow, app operations are called through the
// builder, which records them as graph nodes instead of executing them.
// Declaring an event never touches app state.
type GraphBuilder struct {
	graph  *EventGraph
	nextID int
}

// NewGraphBuilder creates a builder over a fresh event graph.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{graph: NewEventGraph()}
}

// Call captures an operation call against an app as a new event. The call
// is validated against the app's operation table but not executed. The
// returned handle is used to declare the event's kind and dependencies.
// The event defaults to KindEnv.
func (b *GraphBuilder) Call(app App, op string, args Args) *EventHandle {
	if _, ok := app.Operation(op); !ok {
		panic("app " + app.Name() + " has no operation " + op)
	}

	// IDs are assigned per builder so that two captures of the same
	// scenario produce identical, comparable traces.
	b.nextID++

	e := &Event{
		id:   "e" + strconv.Itoa(b.nextID),
		kind: KindEnv,
		target: Target{
			App:  app.Name(),
			Op:   op,
			Args: args,
		},
		state: StatePending,
	}

	if err := b.graph.add(e); err != nil {
		panic(err)
	}

	return &EventHandle{builder: b, evt: e}
}

// Graph returns the graph collected so far. The graph stays mutable until
// the scheduler begins stepping it.
func (b *GraphBuilder) Graph() *EventGraph {
	return b.graph
}

// An EventHandle is the placeholder returned for a captured operation call.
// It never carries a result; it only identifies the declared event so that
// dependencies and kinds can be attached.
type EventHandle struct {
	builder  *GraphBuilder
	evt      *Event
	depsDone bool
}

// DependsOn declares that the event runs only after the predecessor
// completed, plus the given delay in simulated seconds. Passing nil as the
// predecessor anchors the delay to the scenario start. Dependencies are
// declared exactly once per event; a second call panics with a
// DuplicateDependencyError.
func (h *EventHandle) DependsOn(
	pred *EventHandle,
	delaySeconds float64,
) *EventHandle {
	if pred == nil {
		return h.DependsOnAll(delaySeconds)
	}
	return h.DependsOnAll(delaySeconds, pred)
}

// DependsOnAll declares a fan-in dependency: the event runs only after all
// the predecessors completed, plus the given delay.
func (h *EventHandle) DependsOnAll(
	delaySeconds float64,
	preds ...*EventHandle,
) *EventHandle {
	if h.depsDone {
		panic(&DuplicateDependencyError{EventID: h.evt.id})
	}
	h.depsDone = true

	h.evt.delay = VTimeInSec(delaySeconds)

	ids := make([]string, 0, len(preds))
	for _, p := range preds {
		ids = append(ids, p.evt.id)
	}

	if len(ids) > 0 {
		if err := h.graph().addEdges(h.evt, ids); err != nil {
			panic(err)
		}
	}

	return h
}

// At anchors the event to an explicit simulated timestamp instead of a
// causal predecessor. The event cannot run before that time.
func (h *EventHandle) At(t VTimeInSec) *EventHandle {
	abs := t
	h.evt.absTime = &abs
	return h
}

// AsAgent marks the event as an expected agent action slot.
func (h *EventHandle) AsAgent() *EventHandle {
	h.evt.kind = KindAgent
	return h
}

// Oracle marks the event as a known-good agent action, admitted only in
// oracle mode.
func (h *EventHandle) Oracle() *EventHandle {
	h.evt.kind = KindOracle
	return h
}

// AsValidation marks the event as a validation-only probe.
func (h *EventHandle) AsValidation() *EventHandle {
	h.evt.kind = KindValidation
	return h
}

// When turns the event into a condition event gated by the predicate in
// addition to its temporal gates. The predicate is re-evaluated on every
// scheduler tick while the event is pending.
func (h *EventHandle) When(p Predicate) *EventHandle {
	h.evt.kind = KindCondition
	h.evt.predicate = p
	return h
}

// Event returns the declared event.
func (h *EventHandle) Event() *Event {
	return h.evt
}

func (h *EventHandle) graph() *EventGraph {
	return h.builder.graph
}
