// Command arena runs agent scenarios: capture a scenario's event flow,
// execute it in oracle or agent mode, and grade the resulting trace.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// Register the bundled scenarios.
	_ "github.com/sarchlab/arena/scenarios/officeday"
)

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Arena - deterministic agent scenario runner",
	Long: `Arena declares a scenario as a dependency graph of app operations,
executes the graph on a simulated clock, and records a replayable trace.
Oracle mode produces the known-good baseline; agent mode lets an external
driver perform the agent's part of the flow.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Populate the environment from a local .env file if one exists.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(compareCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
