package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"warp/internal/cliview"
)

var drawpathsCmd = &cobra.Command{
	Use:   "drawpaths <src> <dst>",
	Short: "Draw src's cached candidate paths to dst",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSim(); err != nil {
			return err
		}
		src, ok := cn.sim.Node(args[0])
		if !ok {
			return fmt.Errorf("unknown node %q", args[0])
		}
		dst, ok := cn.sim.Node(args[1])
		if !ok {
			return fmt.Errorf("unknown node %q", args[1])
		}
		snap := src.RouteSnapshot(dst.Identity)
		if len(snap) == 0 {
			fmt.Printf("no cached routes %s -> %s\n", args[0], args[1])
			return nil
		}
		cliview.DrawPaths(os.Stdout, snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(drawpathsCmd)
}
