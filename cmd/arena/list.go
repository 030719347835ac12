package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/arena/scenario"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered scenarios",
	Run: func(_ *cobra.Command, _ []string) {
		for _, name := range scenario.Names() {
			fmt.Println(name)
		}
	},
}
