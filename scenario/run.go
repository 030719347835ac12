package scenario

import (
	"context"

	"github.com/sarchlab/arena/agent"
	"github.com/sarchlab/arena/datarecording"
	"github.com/sarchlab/arena/monitoring"
	"github.com/sarchlab/arena/sim"
	"github.com/sarchlab/arena/tracing"
	"github.com/sarchlab/arena/validation"
)

// A Result summarizes one finished run: its terminal status, the
// validation verdict, and the execution log.
type Result struct {
	Scenario   string            `json:"scenario"`
	Status     sim.RunStatus     `json:"status"`
	Validation validation.Result `json:"validation"`
	Log        []sim.LogEntry    `json:"log"`
}

// A Run is a fully wired, not-yet-executed run of a scenario.
type Run struct {
	scenario Scenario
	rc       *sim.RunContext
	sched    *sim.Scheduler
	driver   agent.Driver
	recorder datarecording.DataRecorder
	dbTracer *tracing.DBTracer
	monitor  *monitoring.Monitor
}

// Scheduler returns the scheduler of the run.
func (r *Run) Scheduler() *sim.Scheduler {
	return r.sched
}

// RunContext returns the run context of the run.
func (r *Run) RunContext() *sim.RunContext {
	return r.rc
}

// Execute drives the run to termination and grades it. In agent mode the
// driver runs on its own goroutine while the scheduler loop owns all state
// transitions.
func (r *Run) Execute(ctx context.Context) (Result, error) {
	result := Result{Scenario: r.scenario.Name()}

	driverDone := make(chan error, 1)
	if r.driver != nil {
		go func() {
			driverDone <- r.driver.Drive(ctx, r.sched)
		}()
	}

	runErr := r.sched.Run()

	if r.driver != nil {
		<-driverDone
	}

	result.Status = r.sched.Status()
	result.Log = r.rc.Log.Entries()

	if runErr != nil {
		return result, runErr
	}

	result.Validation = r.scenario.Validate(r.rc)

	return result, nil
}

// Terminate releases the resources of the run, flushing and closing the
// trace database.
func (r *Run) Terminate() {
	if r.recorder != nil {
		r.recorder.Close()
		r.recorder = nil
	}
}
