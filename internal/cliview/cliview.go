// Package cliview renders simulator state to a terminal: the view and
// drawpaths CLI subcommands' table and path-diagram output, via
// github.com/olekukonko/tablewriter and github.com/fatih/color.
package cliview

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"warp/node"
	"warp/topo"
)

// RenderRoutes prints one node's cached candidate routes to a
// destination as a table: path, weight, bytes sent, outstanding deficit.
func RenderRoutes(w io.Writer, nodeName string, snapshots []node.RouteSnapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintf(w, "%s: no cached routes\n", color.YellowString(nodeName))
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"path", "weight", "bytes sent", "deficit"})
	for _, s := range snapshots {
		table.Append([]string{
			pathString(s.Path),
			fmt.Sprintf("%.4f", s.Weight),
			fmt.Sprintf("%.0f", s.TotalBytesSent),
			fmt.Sprintf("%.2f", s.DeficitBytes),
		})
	}
	fmt.Fprintf(w, "%s routes to %s:\n", color.CyanString(nodeName), snapshots[0].Destination.Name)
	table.Render()
}

// DrawPaths renders each candidate route as an arrow diagram, colored by
// rank: the primary (first-accepted, shortest) path in green, alternates
// in plain white.
func DrawPaths(w io.Writer, snapshots []node.RouteSnapshot) {
	for i, s := range snapshots {
		line := pathString(s.Path)
		if i == 0 {
			line = color.GreenString(line)
		}
		fmt.Fprintf(w, "  [%d] %s (weight %.4f)\n", i, line, s.Weight)
	}
}

func pathString(path []*topo.Node) string {
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.Name
	}
	return strings.Join(names, " -> ")
}
