package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"warp/internal/cliview"
)

var viewCmd = &cobra.Command{
	Use:   "view [node]",
	Short: "Show node status, or one node's cached routes by destination",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSim(); err != nil {
			return err
		}
		if len(args) == 0 {
			names := make([]string, 0, len(cn.sim.Nodes))
			for name := range cn.sim.Nodes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				n := cn.sim.Nodes[name]
				state := "up"
				if !n.Active {
					state = "down"
				}
				fmt.Printf("%-8s %-4s direct_neighbors=%d drops=%d\n", name, state, len(n.DB.DirectNeighbors), n.DropCount)
			}
			return nil
		}

		n, ok := cn.sim.Node(args[0])
		if !ok {
			return fmt.Errorf("unknown node %q", args[0])
		}
		for dst := range n.DB.Routes {
			cliview.RenderRoutes(os.Stdout, args[0], n.RouteSnapshot(dst))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
