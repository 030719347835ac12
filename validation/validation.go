// Package validation checks a finished run against scenario-defined pass
// criteria. Hard checks compare structured fields and tool-call arguments
// exactly; soft checks are delegated to an external semantic judge.
package validation

import (
	"fmt"
	"strings"

	"github.com/sarchlab/arena/sim"
)

// A Result is the verdict of validating a run. Validation failures are
// ordinary pass/fail outcomes, never errors.
type Result struct {
	Success  bool   `json:"success"`
	Feedback string `json:"feedback"`
}

// A Check is one hard validation criterion evaluated over the final run
// context: its apps, its graph, and its execution log.
type Check func(rc *sim.RunContext) Result

// All combines checks; every check must pass. The feedback strings of the
// failing checks are joined.
func All(checks ...Check) Check {
	return func(rc *sim.RunContext) Result {
		var failures []string

		for _, c := range checks {
			r := c(rc)
			if !r.Success {
				failures = append(failures, r.Feedback)
			}
		}

		if len(failures) > 0 {
			return Result{Feedback: strings.Join(failures, "; ")}
		}
		return Result{Success: true, Feedback: "all checks passed"}
	}
}

// EventCompleted checks that the event with the given ID reached the
// completed state.
func EventCompleted(eventID string) Check {
	return func(rc *sim.RunContext) Result {
		e, ok := rc.Graph.Event(eventID)
		if !ok {
			return Result{
				Feedback: fmt.Sprintf("event %s does not exist", eventID)}
		}
		if e.State() != sim.StateCompleted {
			return Result{Feedback: fmt.Sprintf(
				"event %s ended %s, want COMPLETED", eventID, e.State())}
		}
		return Result{Success: true}
	}
}

// CallMade checks that the log records a completed call of the given app
// operation whose arguments include the given key-value pairs.
func CallMade(app, op string, args sim.Args) Check {
	return func(rc *sim.RunContext) Result {
		for _, entry := range rc.Log.Entries() {
			if entry.App != app || entry.Op != op {
				continue
			}
			if entry.Outcome != sim.OutcomeCompleted {
				continue
			}
			if argsMatch(entry.Args, args) {
				return Result{Success: true}
			}
		}

		return Result{Feedback: fmt.Sprintf(
			"no completed call of %s.%s with arguments %v", app, op, args)}
	}
}

// CallOrder checks that a completed call of a.aop is logged before a
// completed call of b.bop.
func CallOrder(aApp, aOp, bApp, bOp string) Check {
	return func(rc *sim.RunContext) Result {
		aIdx, bIdx := -1, -1
		for i, entry := range rc.Log.Entries() {
			if entry.Outcome != sim.OutcomeCompleted {
				continue
			}
			if aIdx < 0 && entry.App == aApp && entry.Op == aOp {
				aIdx = i
			}
			if entry.App == bApp && entry.Op == bOp {
				bIdx = i
			}
		}

		if aIdx < 0 {
			return Result{Feedback: fmt.Sprintf(
				"%s.%s was never called", aApp, aOp)}
		}
		if bIdx < 0 {
			return Result{Feedback: fmt.Sprintf(
				"%s.%s was never called", bApp, bOp)}
		}
		if aIdx > bIdx {
			return Result{Feedback: fmt.Sprintf(
				"%s.%s was called after %s.%s", aApp, aOp, bApp, bOp)}
		}
		return Result{Success: true}
	}
}

// NoUnmatchedCalls checks that the agent issued no call that failed to
// match a declared slot.
func NoUnmatchedCalls() Check {
	return func(rc *sim.RunContext) Result {
		for _, entry := range rc.Log.Entries() {
			if entry.Flag == sim.FlagUnmatched {
				return Result{Feedback: fmt.Sprintf(
					"unmatched agent call %s.%s", entry.App, entry.Op)}
			}
		}
		return Result{Success: true}
	}
}

func argsMatch(got, want sim.Args) bool {
	for k, v := range want {
		gv, ok := got[k]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", gv) != fmt.Sprintf("%v", v) {
			return false
		}
	}
	return true
}
