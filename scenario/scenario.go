// Package scenario defines what a scenario supplies to the engine (apps,
// an event flow, a duration, and pass criteria) and orchestrates runs.
package scenario

import (
	"github.com/sarchlab/arena/sim"
	"github.com/sarchlab/arena/validation"
)

// A Scenario supplies the initial app set, the event flow, the run
// duration, and the pass criteria of one task.
type Scenario interface {
	// Name identifies the scenario in the registry and in artifacts.
	Name() string

	// InitApps creates and populates the apps of the scenario.
	InitApps() ([]sim.App, error)

	// BuildEvents declares the event flow through the capture-mode
	// builder. No app state is touched while declaring.
	BuildEvents(b *sim.GraphBuilder, apps map[string]sim.App) error

	// Duration returns the simulated-time ceiling of a run.
	Duration() sim.VTimeInSec

	// UserPrompt returns the task the agent is asked to perform.
	UserPrompt() string

	// Validate grades the finished run.
	Validate(rc *sim.RunContext) validation.Result
}

// AppsByName indexes an app slice by app name.
func AppsByName(apps []sim.App) map[string]sim.App {
	byName := make(map[string]sim.App, len(apps))
	for _, a := range apps {
		byName[a.Name()] = a
	}
	return byName
}

// App returns the app with the given name and concrete type from an
// AppsByName map. It panics on a missing name or a wrong type, which is an
// authoring bug.
func App[T sim.App](apps map[string]sim.App, name string) T {
	a, ok := apps[name]
	if !ok {
		panic("scenario has no app " + name)
	}

	typed, ok := a.(T)
	if !ok {
		panic("app " + name + " has an unexpected type")
	}

	return typed
}
