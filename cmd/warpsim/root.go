// Package main is warpsim, the interactive command console collaborator
// spec.md §6 names: a REPL over a running Simulator exposing send, topk,
// toggle, view, drawpaths, clearpaths, load, and screenshot. Grounded on
// the teacher's cmd/main.go for logging setup, and on the cobra-per-
// subcommand-file layout the pack's encodeous-nylon/cmd package uses.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"warp/internal/config"
	"warp/sim"
	"warp/sim/telemetry"
)

// console holds the single loaded simulation the REPL's subcommands act
// on. It is cmd-layer state, not core state: the core (sim, node, lsdb,
// ...) never reaches for it — every core type is still constructed with
// its collaborators injected explicitly.
type console struct {
	sim      *sim.Simulator
	sink     *telemetry.Sink
	registry *prometheus.Registry
	log      *logrus.Entry
}

var cn = &console{log: logrus.NewEntry(logrus.StandardLogger())}

var rootCmd = &cobra.Command{
	Use:           "warpsim",
	Short:         "WARP routing protocol simulator console",
	Long:          "warpsim runs a discrete-event simulation of the WARP multipath routing protocol and exposes an interactive console for driving it.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var scenarioFlag string
var ticksPerCommandFlag int

func init() {
	rootCmd.PersistentFlags().StringVar(&scenarioFlag, "scenario", "", "scenario TOML file to load at startup")
	rootCmd.PersistentFlags().IntVar(&ticksPerCommandFlag, "tick-stride", 1, "simulator ticks advanced after each send command")
}

// Execute runs the root command, returning the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadScenario(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if cn.sim != nil {
		cn.sim.Close()
	}
	cn.registry = prometheus.NewRegistry()
	cn.sink = telemetry.New(cn.registry, cn.log)
	s, err := sim.New(cfg, cn.sink, cn.log)
	if err != nil {
		return fmt.Errorf("starting simulator: %w", err)
	}
	cn.sim = s
	return nil
}

func requireSim() error {
	if cn.sim == nil {
		return fmt.Errorf("no scenario loaded, run: load <file>")
	}
	return nil
}

// advance runs the configured tick stride and syncs each node's drop
// count into the telemetry sink, since DropCount lives outside the
// EventSink interface.
func advance() {
	if cn.sim == nil {
		return
	}
	cn.sim.Run(ticksPerCommandFlag)
	for name, n := range cn.sim.Nodes {
		cn.sink.SetDropped(name, n.DropCount)
		cn.sink.SetDeadNeighbors(name, n.DeadNeighborCount)
	}
}
