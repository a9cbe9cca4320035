// Package scenario loads a declarative description of a simulation run from
// YAML: the node set, the sink address, the radio adjacency graph, the
// shared channel parameters, and each node's application-layer timing.
//
// This corresponds to CG-8663-shadowmesh's pkg/config.Config (a YAML-backed struct
// with LoadConfig/setDefaults/validate), adapted from server/daemon startup
// parameters to a simulation's topology and per-node schedule. The
// original_source framework supplied this through `.ned`/`.ini` files read
// by the simulation kernel; a declarative YAML file is the Go-native
// equivalent of that role.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wsnsim/floodrouting/simhost"
	"github.com/wsnsim/floodrouting/wire"
)

// NodeSpec describes one simulated node: its address, the neighbours its
// radio can reach, and its application-layer timing parameters.
type NodeSpec struct {
	Address    wire.Address   `yaml:"address"`
	Neighbours []wire.Address `yaml:"neighbours"`

	// StartupDelay is the delay before a non-sink node's first emission.
	StartupDelay simhost.Time `yaml:"startup_delay"`
	// DelayLimit is the sink-side freshness gate; 0 disables it.
	DelayLimit simhost.Time `yaml:"delay_limit"`
	// PacketSpacing is the cadence between emissions. It is left at the
	// literal YAML value, including 0, since 0 intentionally means "this
	// node stays silent for the run" per the application agent's contract
	// — it is not treated as "unset" the way the channel defaults below
	// are.
	PacketSpacing simhost.Time `yaml:"packet_spacing"`
}

// ChannelSpec describes the shared radio channel's parameters, applied
// uniformly to every link since this simulator has no per-edge path-loss
// model.
type ChannelSpec struct {
	PropagationDelay simhost.Time `yaml:"propagation_delay"`
	RSSI             float64      `yaml:"rssi"`
	LQI              float64      `yaml:"lqi"`
	TxCost           float64      `yaml:"tx_cost"`
	RxCost           float64      `yaml:"rx_cost"`
}

// Scenario is a complete, validated run description.
type Scenario struct {
	Sink    wire.Address `yaml:"sink"`
	Nodes   []NodeSpec   `yaml:"nodes"`
	Channel ChannelSpec  `yaml:"channel"`
	// Horizon bounds how long the host is run before the final report is
	// collected. 0 means "run until the event queue drains naturally".
	Horizon simhost.Time `yaml:"horizon"`
}

// Load reads and validates a scenario from a YAML file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}

	s.setDefaults()

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario: invalid %s: %w", path, err)
	}

	return &s, nil
}

func (s *Scenario) setDefaults() {
	if s.Channel.PropagationDelay == 0 {
		s.Channel.PropagationDelay = 1
	}
	if s.Channel.RSSI == 0 {
		s.Channel.RSSI = -60
	}
	if s.Channel.LQI == 0 {
		s.Channel.LQI = 200
	}
}

func (s *Scenario) validate() error {
	if s.Sink == "" {
		return fmt.Errorf("sink address is required")
	}
	if len(s.Nodes) == 0 {
		return fmt.Errorf("at least one node is required")
	}

	known := make(map[wire.Address]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Address == "" {
			return fmt.Errorf("node with empty address")
		}
		if known[n.Address] {
			return fmt.Errorf("duplicate node address: %s", n.Address)
		}
		known[n.Address] = true
	}

	if !known[s.Sink] {
		return fmt.Errorf("sink address %s is not a declared node", s.Sink)
	}

	for _, n := range s.Nodes {
		for _, neighbour := range n.Neighbours {
			if !known[neighbour] {
				return fmt.Errorf("node %s lists unknown neighbour %s", n.Address, neighbour)
			}
			if neighbour == n.Address {
				return fmt.Errorf("node %s lists itself as a neighbour", n.Address)
			}
		}
	}

	return nil
}

// Adjacency returns the node-to-neighbours graph in the shape
// mac.NewSimChannel expects.
func (s *Scenario) Adjacency() map[wire.Address][]wire.Address {
	out := make(map[wire.Address][]wire.Address, len(s.Nodes))
	for _, n := range s.Nodes {
		out[n.Address] = append([]wire.Address(nil), n.Neighbours...)
	}
	return out
}

// Addresses returns every node's address, in declaration order.
func (s *Scenario) Addresses() []wire.Address {
	out := make([]wire.Address, len(s.Nodes))
	for i, n := range s.Nodes {
		out[i] = n.Address
	}
	return out
}

// Node returns the spec for addr, and whether it was found.
func (s *Scenario) Node(addr wire.Address) (NodeSpec, bool) {
	for _, n := range s.Nodes {
		if n.Address == addr {
			return n, true
		}
	}
	return NodeSpec{}, false
}
