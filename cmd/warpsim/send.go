package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"warp/forward"
)

var sendCmd = &cobra.Command{
	Use:   "send <src> <dst> <bytes>",
	Short: "Send a datagram from src to dst of the given size",
	Args:  cobra.ExactArgs(3),
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
		size, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid byte count %q: %w", args[2], err)
		}

		src.SendDatagram(&forward.Datagram{Source: src.Identity, Destination: dst.Identity, SizeBytes: size})
		advance()
		fmt.Printf("sent %.0f bytes %s -> %s\n", size, args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
