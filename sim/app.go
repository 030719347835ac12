package sim

// EffectClass classifies what an operation does to the state of its app.
type EffectClass int

// The possible effect classes of an app operation.
const (
	EffectRead EffectClass = iota
	EffectWrite
	EffectDelete
)

func (c EffectClass) String() string {
	switch c {
	case EffectRead:
		return "READ"
	case EffectWrite:
		return "WRITE"
	case EffectDelete:
		return "DELETE"
	}
	return "UNKNOWN"
}

// An ArgSpec describes one argument of an app operation.
type ArgSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// An OpSpec describes one operation exposed by an app: its name, its effect
// class, and its argument schema. The same table that the scheduler
// consults to invoke operations can be read by an external tool-description
// generator.
type OpSpec struct {
	Name   string      `json:"name"`
	Effect EffectClass `json:"effect"`
	Args   []ArgSpec   `json:"args"`
}

// A Call carries one operation invocation into an app. Apps read the
// simulated time from the call rather than from the wall clock.
type Call struct {
	Op   string
	Args Args
	Now  VTimeInSec
}

// An App is a stateful object exposing named operations.
//
// An app exclusively owns its internal state. The scheduler may dispatch
// operations for independent events concurrently, so an app must provide
// its own critical-section discipline.
type App interface {
	// Name returns the name under which the app is registered.
	Name() string

	// Operations lists the operations of the app in registration order.
	Operations() []OpSpec

	// Operation returns the spec of a single operation.
	Operation(name string) (OpSpec, bool)

	// Invoke executes an operation and returns its result or error.
	Invoke(c Call) (any, error)
}
