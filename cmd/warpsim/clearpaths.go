package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearpathsCmd = &cobra.Command{
	Use:   "clearpaths",
	Short: "Invalidate every node's cached route set, forcing a re-pick on next send",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSim(); err != nil {
			return err
		}
		for _, n := range cn.sim.Nodes {
			n.DB.InvalidateRoutes()
		}
		fmt.Println("cleared cached routes on all nodes")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearpathsCmd)
}
