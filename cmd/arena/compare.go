package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/arena/tracing"
)

var compareCmd = &cobra.Command{
	Use:   "compare <baseline> <trace>",
	Short: "Compare two trace databases event by event",
	Long: `Compare reads two trace databases, typically an oracle baseline and an
agent run of the same scenario, and prints every divergence between them.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(_ *cobra.Command, args []string) error {
		baseline, err := tracing.ReadTraceFile(args[0])
		if err != nil {
			return fmt.Errorf("read baseline: %w", err)
		}

		trace, err := tracing.ReadTraceFile(args[1])
		if err != nil {
			return fmt.Errorf("read trace: %w", err)
		}

		diffs := tracing.Compare(baseline, trace)
		if len(diffs) == 0 {
			fmt.Println("Traces match.")
			return nil
		}

		for _, d := range diffs {
			fmt.Println(d)
		}

		return fmt.Errorf("%d differences found", len(diffs))
	},
}
