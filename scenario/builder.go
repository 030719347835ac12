package scenario

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/arena/agent"
	"github.com/sarchlab/arena/datarecording"
	"github.com/sarchlab/arena/monitoring"
	"github.com/sarchlab/arena/sim"
	"github.com/sarchlab/arena/tracing"
)

// Builder can be used to build a run.
type Builder struct {
	mode           sim.Mode
	realTimeClock  bool
	monitorOn      bool
	monitorPort    int
	browserOn      bool
	recordingOn    bool
	outputFileName string
	driver         agent.Driver
}

// MakeBuilder creates a new builder. Runs default to oracle mode with a
// fast clock and trace recording on.
func MakeBuilder() Builder {
	return Builder{
		mode:        sim.OracleMode,
		recordingOn: true,
	}
}

// WithAgentMode sets the run to be driven by the given agent driver.
func (b Builder) WithAgentMode(driver agent.Driver) Builder {
	b.mode = sim.AgentMode
	b.driver = driver
	return b
}

// WithRealTimeClock sets the run to advance in lockstep with the wall
// clock.
func (b Builder) WithRealTimeClock() Builder {
	b.realTimeClock = true
	return b
}

// WithMonitoring sets the run to serve the monitoring API.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number of the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowserWindow makes the run open the monitoring page in the default
// browser.
func (b Builder) WithBrowserWindow() Builder {
	b.browserOn = true
	return b
}

// WithoutRecording disables trace recording. Useful in tests that only
// care about in-memory outcomes.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the trace
// database.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.browserOn {
		panic("browser window cannot be opened when monitoring is disabled")
	}

	if b.mode == sim.AgentMode && b.driver == nil {
		panic("agent mode requires a driver")
	}
}

// Build prepares a run of the given scenario. Construction-time authoring
// bugs, such as dependency cycles, surface as an error and leave the run
// aborted rather than partially built.
func (b Builder) Build(sc Scenario) (run *Run, err error) {
	b.parametersMustBeValid()

	defer func() {
		if r := recover(); r != nil {
			run = nil
			if rErr, ok := r.(error); ok {
				err = fmt.Errorf("scenario %s setup: %w", sc.Name(), rErr)
				return
			}
			err = fmt.Errorf("scenario %s setup: %v", sc.Name(), r)
		}
	}()

	apps, err := sc.InitApps()
	if err != nil {
		return nil, fmt.Errorf("scenario %s setup: %w", sc.Name(), err)
	}

	gb := sim.NewGraphBuilder()
	if err := sc.BuildEvents(gb, AppsByName(apps)); err != nil {
		return nil, fmt.Errorf("scenario %s setup: %w", sc.Name(), err)
	}

	clock := sim.NewClock()
	if b.realTimeClock {
		clock = sim.NewClockWithStrategy(sim.NewRealTimeAdvance())
	}

	rc := sim.NewRunContextWithClock(gb.Graph(), apps, clock)
	sched := sim.NewScheduler(rc, b.mode, sc.Duration())

	run = &Run{
		scenario: sc,
		rc:       rc,
		sched:    sched,
		driver:   b.driver,
	}

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "arena_run_" + xid.New().String()
		}

		run.recorder = datarecording.New(outputPath)
		run.dbTracer = tracing.NewDBTracer(run.recorder)
		tracing.CollectTrace(sched, run.dbTracer)
	}

	if b.monitorOn {
		run.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			run.monitor.WithPortNumber(b.monitorPort)
		}
		if b.browserOn {
			run.monitor.WithBrowserWindow()
		}
		run.monitor.RegisterScheduler(sched)
		run.monitor.StartServer()
	}

	return run, nil
}
