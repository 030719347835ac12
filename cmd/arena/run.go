package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/arena/agent"
	"github.com/sarchlab/arena/scenario"
	"github.com/sarchlab/arena/tracing"
)

var (
	runConfigPath  string
	runReplayPath  string
	runRealTime    bool
	runMonitor     bool
	runMonitorPort int
	runOpenBrowser bool
	runOut         string
	runNoRecording bool
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Execute a scenario and grade the resulting trace",
	Long: `Run executes a registered scenario. Without --replay the run is in
oracle mode and the declared flow supplies the agent's actions, producing
the baseline trace. With --replay the agent actions recorded in the given
trace are submitted against a fresh run of the same scenario.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runScenario,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "arena.yaml",
		"path of the run config file")
	runCmd.Flags().StringVar(&runReplayPath, "replay", "",
		"trace database whose agent calls drive the run")
	runCmd.Flags().BoolVar(&runRealTime, "real-time", false,
		"advance the clock in lockstep with the wall clock")
	runCmd.Flags().BoolVar(&runMonitor, "monitor", false,
		"serve the monitoring API during the run")
	runCmd.Flags().IntVar(&runMonitorPort, "port", 0,
		"port number of the monitoring server")
	runCmd.Flags().BoolVar(&runOpenBrowser, "open", false,
		"open the monitoring page in the default browser")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "",
		"output file name of the trace database")
	runCmd.Flags().BoolVar(&runNoRecording, "no-recording", false,
		"disable trace recording")
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := LoadRunConfig(runConfigPath)
	if err != nil {
		return err
	}

	sc, err := scenario.New(args[0])
	if err != nil {
		return err
	}

	b, err := builderFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	run, err := b.Build(sc)
	if err != nil {
		return err
	}
	defer run.Terminate()

	fmt.Fprintf(os.Stderr, "Running scenario %s for %.1f seconds\n",
		sc.Name(), float64(sc.Duration()))
	fmt.Fprintf(os.Stderr, "Task: %s\n", sc.UserPrompt())

	result, err := run.Execute(cmd.Context())
	if err != nil {
		return fmt.Errorf("run %s: %w", sc.Name(), err)
	}

	fmt.Printf("Status:     %s\n", result.Status)
	fmt.Printf("Log events: %d\n", len(result.Log))

	if result.Validation.Success {
		fmt.Println("Validation: PASS")
		return nil
	}

	fmt.Println("Validation: FAIL")
	if result.Validation.Feedback != "" {
		fmt.Printf("Feedback:   %s\n", result.Validation.Feedback)
	}

	return fmt.Errorf("scenario %s failed validation", sc.Name())
}

func builderFromFlags(
	cmd *cobra.Command,
	cfg RunConfig,
) (scenario.Builder, error) {
	b := scenario.MakeBuilder()

	if runReplayPath != "" {
		trace, err := tracing.ReadTraceFile(runReplayPath)
		if err != nil {
			return b, fmt.Errorf("read replay trace: %w", err)
		}
		b = b.WithAgentMode(agent.NewReplayDriver(trace))
	}

	if cfg.RealTime || runRealTime {
		b = b.WithRealTimeClock()
	}

	if cfg.Monitor.Enabled || runMonitor {
		b = b.WithMonitoring()

		port := cfg.Monitor.Port
		if cmd.Flags().Changed("port") {
			port = runMonitorPort
		}
		if port > 0 {
			b = b.WithMonitorPort(port)
		}

		if cfg.Monitor.OpenBrowser || runOpenBrowser {
			b = b.WithBrowserWindow()
		}
	}

	recording := cfg.Recording.Enabled
	if runNoRecording {
		recording = false
	}
	if !recording {
		b = b.WithoutRecording()
	} else {
		out := cfg.Recording.Output
		if runOut != "" {
			out = runOut
		}
		if out != "" {
			b = b.WithOutputFileName(out)
		}
	}

	return b, nil
}
