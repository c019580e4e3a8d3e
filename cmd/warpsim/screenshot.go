// screenshot is a textual stand-in for the graphical renderer's capture
// command; the renderer itself sits outside the core's scope, so the
// console only dumps the per-destination route tables "view <node>"
// renders, for every node, to a file. The status lines "view" prints
// without a node argument are not included.
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"warp/internal/cliview"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot [file]",
	Short: "Write the current simulator state to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSim(); err != nil {
			return err
		}
		path := fmt.Sprintf("warpsim-%d.txt", time.Now().Unix())
		if len(args) == 1 {
			path = args[0]
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating screenshot file: %w", err)
		}
		defer f.Close()

		names := make([]string, 0, len(cn.sim.Nodes))
		for name := range cn.sim.Nodes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			n := cn.sim.Nodes[name]
			for dst := range n.DB.Routes {
				cliview.RenderRoutes(f, name, n.RouteSnapshot(dst))
			}
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
}
