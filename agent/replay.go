package agent

import (
	"context"
	"errors"

	"github.com/sarchlab/arena/sim"
)

// A ReplayDriver re-issues the agent calls of a previously recorded trace,
// in trace order. It is used for regression comparison: an oracle or agent
// trace replayed against the same scenario must line up with the original.
type ReplayDriver struct {
	entries []sim.LogEntry
}

// NewReplayDriver creates a driver over a recorded trace. Only agent-kind
// entries that were actually admitted are replayed.
func NewReplayDriver(trace []sim.LogEntry) *ReplayDriver {
	d := &ReplayDriver{}

	for _, e := range trace {
		if e.Kind != sim.KindAgent.String() &&
			e.Kind != sim.KindOracle.String() {
			continue
		}
		if e.Outcome == sim.OutcomeCancelled {
			continue
		}
		d.entries = append(d.entries, e)
	}

	return d
}

// Drive submits the recorded calls one at a time, waiting for each to be
// admitted before issuing the next, then stops the run.
func (d *ReplayDriver) Drive(ctx context.Context, env Env) error {
	defer env.Stop()

	for _, e := range d.entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, _, err := env.SubmitCall(e.App, e.Op, e.Args)
		if err != nil && !isExpectedReplayError(err) {
			return err
		}
	}

	return nil
}

// isExpectedReplayError filters the errors a faithful replay may
// legitimately observe: the original call may have failed in the same way,
// or the slot layout may flag the call as unmatched.
func isExpectedReplayError(err error) bool {
	var unmatched *sim.UnmatchedAgentCallError
	if errors.As(err, &unmatched) {
		return true
	}

	var opErr *sim.AppOperationError
	return errors.As(err, &opErr)
}
