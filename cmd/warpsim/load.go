package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a scenario TOML file, replacing any currently running simulation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadScenario(args[0]); err != nil {
			return err
		}
		fmt.Printf("loaded %s: %d nodes\n", args[0], len(cn.sim.Nodes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
