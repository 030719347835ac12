package sim

import "fmt"

// A CycleError reports that the declared dependency edges do not form a DAG.
// It is an authoring bug and aborts scenario setup.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("event graph has a dependency cycle: %v", e.Path)
}

// A DuplicateDependencyError reports that DependsOn was called twice on the
// same event handle. Dependency edges are declared exactly once.
type DuplicateDependencyError struct {
	EventID string
}

func (e *DuplicateDependencyError) Error() string {
	return fmt.Sprintf(
		"dependencies of event %s are already declared", e.EventID)
}

// A GraphFrozenError reports an attempt to mutate the topology of an event
// graph after the scheduler started stepping it.
type GraphFrozenError struct {
	Op string
}

func (e *GraphFrozenError) Error() string {
	return fmt.Sprintf("cannot %s: event graph is frozen", e.Op)
}

// A ClockRegressionError reports an attempt to move the simulated clock
// backward. It indicates an invariant violation and is fatal to the run.
type ClockRegressionError struct {
	Now    VTimeInSec
	Target VTimeInSec
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf(
		"cannot advance clock to %.10f, now is %.10f", e.Target, e.Now)
}

// An AppOperationError wraps a failure raised by an app while executing an
// event. It is captured per event and never crashes the loop.
type AppOperationError struct {
	App string
	Op  string
	Err error
}

func (e *AppOperationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.App, e.Op, e.Err)
}

func (e *AppOperationError) Unwrap() error {
	return e.Err
}

// An UnmatchedAgentCallError flags a live agent call that does not
// correspond to any ready agent slot in the graph. The call is still
// executed and logged.
type UnmatchedAgentCallError struct {
	App string
	Op  string
}

func (e *UnmatchedAgentCallError) Error() string {
	return fmt.Sprintf(
		"agent call %s.%s does not match any declared slot", e.App, e.Op)
}
