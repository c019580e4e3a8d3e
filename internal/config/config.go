// Package config loads the TOML scenario file the exerciser simulator
// runs: node/link topology plus the per-node protocol parameters.
// Grounded on the teacher's cmd/main.go, which loads
// forwarding_config.toml the same way via github.com/BurntSushi/toml.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// NodeSpec names one simulated node.
type NodeSpec struct {
	Name string `toml:"name"`
}

// LinkSpec describes one real-network edge the simulator's ground-truth
// topology carries; bandwidth/full_duplex feed transmission timing and
// the effective-bandwidth capacity the K-Path Selector prunes against.
type LinkSpec struct {
	A          string  `toml:"a"`
	B          string  `toml:"b"`
	Bandwidth  float64 `toml:"bandwidth"`
	FullDuplex bool    `toml:"full_duplex"`
}

// Scenario is the full simulator configuration.
type Scenario struct {
	HelloInterval          float64 `toml:"hello_interval"`
	HelloBroadcastInterval int     `toml:"hello_broadcast_interval"`
	NeighborTimeout        float64 `toml:"neighbor_timeout"`
	TopK                   int     `toml:"top_k"`
	TickSeconds            float64 `toml:"tick_seconds"`
	Algorithm              string  `toml:"algorithm"`
	LogFile                string  `toml:"log_file"`
	LogLevel               string  `toml:"log_level"`

	Nodes []NodeSpec `toml:"nodes"`
	Links []LinkSpec `toml:"links"`
}

func applyDefaults(s *Scenario) {
	if s.HelloInterval <= 0 {
		s.HelloInterval = 5
	}
	if s.NeighborTimeout <= 0 {
		s.NeighborTimeout = 15
	}
	if s.TopK <= 0 {
		s.TopK = 3
	}
	if s.TickSeconds <= 0 {
		s.TickSeconds = 1
	}
	if s.Algorithm == "" {
		s.Algorithm = "kpath"
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	var s Scenario
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("loading scenario config %q: %w", path, err)
	}
	applyDefaults(&s)

	names := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		names[n.Name] = true
	}
	for _, l := range s.Links {
		if !names[l.A] || !names[l.B] {
			return nil, fmt.Errorf("link %s-%s references an undeclared node", l.A, l.B)
		}
	}
	return &s, nil
}
