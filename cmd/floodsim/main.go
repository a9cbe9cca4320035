// Command floodsim runs a flood-routing simulation scenario to completion
// and prints the collected output statistics.
//
// This corresponds to CG-8663-shadowmesh's cmd/lightnode idiom: flag-based startup,
// log.Fatalf on setup errors, and plain log.Println progress lines, adapted
// from standing up a live P2P node to driving a discrete-event run to its
// horizon.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"sort"

	"github.com/wsnsim/floodrouting/app"
	"github.com/wsnsim/floodrouting/mac"
	"github.com/wsnsim/floodrouting/routing"
	"github.com/wsnsim/floodrouting/scenario"
	"github.com/wsnsim/floodrouting/simhost"
	"github.com/wsnsim/floodrouting/wire"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a scenario YAML file (required)")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	flag.Parse()

	if *scenarioPath == "" {
		log.Fatalf("Error: -scenario flag is required")
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.Default()
	if *verbose {
		logger = slog.New(slog.NewTextHandler(logWriter{}, &slog.HandlerOptions{Level: logLevel}))
	}

	log.Printf("Loading scenario: %s", *scenarioPath)
	sc, err := scenario.Load(*scenarioPath)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}
	log.Printf("Loaded %d nodes, sink=%s", len(sc.Nodes), sc.Sink)

	host := simhost.NewHost()
	energy := simhost.NewEnergyModel()
	routingStats := simhost.NewRegistry()
	appStats := simhost.NewRegistry()

	channel := mac.NewSimChannel(host, sc.Adjacency(), mac.ChannelConfig{
		PropagationDelay: sc.Channel.PropagationDelay,
		RSSI:             sc.Channel.RSSI,
		LQI:              sc.Channel.LQI,
		Energy:           energy,
		TxCost:           sc.Channel.TxCost,
		RxCost:           sc.Channel.RxCost,
		Logger:           logger,
	})

	engines := make(map[wire.Address]*routing.Engine, len(sc.Nodes))
	agents := make(map[wire.Address]*app.Agent, len(sc.Nodes))

	for _, n := range sc.Nodes {
		radio := channel.Radio(n.Address)
		engine := routing.New(routing.Config{Self: n.Address, Logger: logger}, radio)
		agent := app.New(app.Config{
			Self:          n.Address,
			Sink:          sc.Sink,
			StartupDelay:  n.StartupDelay,
			DelayLimit:    n.DelayLimit,
			PacketSpacing: n.PacketSpacing,
			Logger:        logger,
		}, engine, host, energy)

		routingStats.DeclareOutput(n.Address, engine)
		appStats.DeclareOutput(n.Address, agent)
		engines[n.Address] = engine
		agents[n.Address] = agent
	}

	for _, n := range sc.Nodes {
		engines[n.Address].Start()
		agents[n.Address].Start()
	}

	log.Println("Running simulation...")
	if sc.Horizon > 0 {
		host.RunUntil(sc.Horizon)
	} else {
		host.Run()
	}

	for _, n := range sc.Nodes {
		engines[n.Address].Finish()
	}

	peers := make(map[wire.Address]app.PeerStatsSnapshot, len(sc.Nodes))
	for addr, snapshot := range appStats.CollectOutput() {
		if ps, ok := snapshot.(app.PeerStatsSnapshot); ok {
			peers[addr] = ps
		}
	}

	routingSnapshots := make(map[wire.Address]routing.CountersSnapshot, len(sc.Nodes))
	for addr, snapshot := range routingStats.CollectOutput() {
		if cs, ok := snapshot.(routing.CountersSnapshot); ok {
			routingSnapshots[addr] = cs
		}
	}

	printReport(sc, routingSnapshots, agents, peers)
}

// printReport prints, per node, the routing packet breakdown and — for the
// sink — the per-peer delivery-rate and energy-efficiency report, in that
// declaration order. The routing counters and the peers' sent counts are
// read through simhost.Registry; the sink's agent is called directly only
// for its Finish step, which turns those peer counts into the report.
func printReport(sc *scenario.Scenario, routingSnapshots map[wire.Address]routing.CountersSnapshot, agents map[wire.Address]*app.Agent, peers map[wire.Address]app.PeerStatsSnapshot) {
	fmt.Println()
	fmt.Println("=== Routing packet breakdown ===")
	for _, n := range sc.Nodes {
		counters := routingSnapshots[n.Address]
		fmt.Printf("-- %s --\n", n.Address)
		printSortedBreakdown("TX", counters.TXBreakdown())
		printSortedBreakdown("RX", counters.RXBreakdown())
	}

	fmt.Println()
	fmt.Println("=== Delivery report (sink) ===")
	result := agents[sc.Sink].Finish(peers)
	sort.Slice(result.Reports, func(i, j int) bool { return result.Reports[i].Peer < result.Reports[j].Peer })
	for _, r := range result.Reports {
		fmt.Printf("%s: reception_rate=%.3f loss_rate=%.3f\n", r.Peer, r.ReceptionRate, r.LossRate)
	}
	if result.EnergyPerBit > 0 {
		fmt.Printf("Energy nJ/bit: %.3f\n", result.EnergyPerBit)
	}
}

func printSortedBreakdown(label string, breakdown map[string]uint32) {
	keys := make([]string, 0, len(breakdown))
	for k := range breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  [%s] %s: %d\n", label, k, breakdown[k])
	}
}

// logWriter adapts the standard logger's destination for slog's text
// handler so -verbose output interleaves with the plain log.Println lines.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	log.Print(string(p))
	return len(p), nil
}
