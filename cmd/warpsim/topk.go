package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var topkCmd = &cobra.Command{
	Use:   "topk <node> <k>",
	Short: "Set a node's candidate-path budget (K-Path Selector width)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSim(); err != nil {
			return err
		}
		n, ok := cn.sim.Node(args[0])
		if !ok {
			return fmt.Errorf("unknown node %q", args[0])
		}
		k, err := strconv.Atoi(args[1])
		if err != nil || k < 1 {
			return fmt.Errorf("invalid k %q: must be a positive integer", args[1])
		}
		n.DB.SetTopK(k)
		fmt.Printf("%s top_k set to %d\n", args[0], k)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topkCmd)
}
