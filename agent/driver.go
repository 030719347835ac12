// Package agent defines the contract between the scheduler and an external
// agent driver, plus a replay driver that re-issues the agent calls of a
// recorded trace.
package agent

import (
	"context"

	"github.com/sarchlab/arena/sim"
)

// Env is the scheduler surface an agent driver interacts with. It is
// implemented by *sim.Scheduler.
type Env interface {
	// SubmitCall delivers one live agent call. It blocks until the call is
	// executed and returns its result, the simulated time at which it was
	// admitted, and an error. An UnmatchedAgentCallError flags a call that
	// matched no declared slot but was executed anyway.
	SubmitCall(app, op string, args sim.Args) (any, sim.VTimeInSec, error)

	// ReadySlots reports which declared agent actions are currently ready,
	// so that the driver can tell which declared action a call matched.
	ReadySlots() []sim.Slot

	// Stop signals that the driver is done. It is one of the run's end
	// conditions.
	Stop()
}

// A Driver issues agent calls against a running scheduler. The scheduler
// never calls into the driver; the driver pushes calls in.
type Driver interface {
	Drive(ctx context.Context, env Env) error
}
