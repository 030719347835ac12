package sim

// A RunContext bundles the mutable structures of one run: the clock, the
// event graph, the apps, and the execution log. It is passed explicitly to
// every scheduler operation; there is no ambient current-run state.
type RunContext struct {
	Clock *Clock
	Graph *EventGraph
	Apps  map[string]App
	Log   *ExecutionLog
}

// NewRunContext creates a run context over the given graph and apps with a
// fast clock and an empty log.
func NewRunContext(graph *EventGraph, apps []App) *RunContext {
	return NewRunContextWithClock(graph, apps, NewClock())
}

// NewRunContextWithClock creates a run context with an explicit clock,
// which allows real-time execution for human-paced observation.
func NewRunContextWithClock(
	graph *EventGraph,
	apps []App,
	clock *Clock,
) *RunContext {
	byName := make(map[string]App, len(apps))
	for _, a := range apps {
		if _, ok := byName[a.Name()]; ok {
			panic("app " + a.Name() + " registered twice")
		}
		byName[a.Name()] = a
	}

	return &RunContext{
		Clock: clock,
		Graph: graph,
		Apps:  byName,
		Log:   NewExecutionLog(),
	}
}

// App returns the app registered under the given name.
func (rc *RunContext) App(name string) (App, bool) {
	a, ok := rc.Apps[name]
	return a, ok
}

// Now returns the current simulated time of the run.
func (rc *RunContext) Now() VTimeInSec {
	return rc.Clock.Now()
}
