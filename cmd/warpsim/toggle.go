package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <node>",
	Short: "Toggle a node's administrative up/down state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSim(); err != nil {
			return err
		}
		n, ok := cn.sim.Node(args[0])
		if !ok {
			return fmt.Errorf("unknown node %q", args[0])
		}
		n.SetActive(!n.Active)
		state := "up"
		if !n.Active {
			state = "down"
		}
		fmt.Printf("%s is now %s\n", args[0], state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}
