// Package app implements the Application Agent: the periodic data
// generator that runs on every non-sink node, the receive accumulator that
// runs on the sink, and the end-of-run delivery-rate/energy reporter.
//
// This corresponds to the teacher's device/room dispatch + stats pattern
// (a small per-node component that both originates and consumes traffic
// and exposes a StatsProvider for reporting), adapted from MeshCore's BBS
// message board semantics to this protocol's single-sink data collection.
package app

import (
	"fmt"
	"log/slog"

	"github.com/wsnsim/floodrouting/routing"
	"github.com/wsnsim/floodrouting/simhost"
	"github.com/wsnsim/floodrouting/wire"
)

// Packet is the generic application payload carried inside DATA and RREQ
// routing packets. Emission always uses Size 0 per the current protocol
// revision; Size exists so a future revision (or a richer scenario) can
// model non-trivial payloads without changing the wire shape.
type Packet struct {
	Name      string
	Seq       uint32
	CreatedAt simhost.Time
	Size      int
}

// Len reports the packet's simulated byte length.
func (p *Packet) Len() int { return p.Size }

// Config configures an Agent.
type Config struct {
	// Self is this node's network address.
	Self wire.Address
	// Sink is the configured nextRecipient address. A node whose Self
	// equals Sink acts as the sink for the run.
	Sink wire.Address

	// StartupDelay is the delay, in the host's time unit, before the first
	// emission on a non-sink node.
	StartupDelay simhost.Time
	// DelayLimit is the sink-side freshness gate; 0 disables it.
	DelayLimit simhost.Time
	// PacketSpacing is the cadence between emissions; 0 means the node
	// never emits.
	PacketSpacing simhost.Time

	Logger *slog.Logger
}

// PeerStatsSnapshot is the read-only view an Agent publishes of its own
// counters, so that finalisation can read it through the host's registry
// instead of one node reaching across to poke at another node's live
// state. This resolves the "self-reference through the topology" design
// note: the finaliser asks the simhost.Registry for each peer's snapshot,
// the same way the teacher's device/room exposes GetStats() rather than a
// direct field read across components.
type PeerStatsSnapshot struct {
	// PacketsSentToSink is how many packets this node has sent towards the
	// sink. Every non-sink node only ever addresses the sink, so a single
	// counter suffices; the sink's own snapshot reports zero.
	PacketsSentToSink uint32
}

// Report is the finalisation output for one peer, as described in §4.2.
type Report struct {
	Peer          wire.Address
	ReceptionRate float64
	LossRate      float64
}

// FinishResult is the sink's complete end-of-run finalisation output: the
// per-peer delivery reports plus the network's declared "Energy nJ/bit"
// output statistic from spec.md §6. EnergyPerBit is 0 when no bytes were
// delivered, per the "silent node" scenario in spec.md §8 (no energy line
// is reported when nothing was delivered network-wide).
type FinishResult struct {
	Reports      []Report
	EnergyPerBit float64
}

// Agent is the per-node Application Agent.
type Agent struct {
	cfg    Config
	log    *slog.Logger
	engine *routing.Engine
	host   *simhost.Host
	energy *simhost.EnergyModel

	isSink bool
	seq    uint32

	packetsSentToSink uint32 // only meaningful on a non-sink node

	// Sink-only accumulators, keyed by originating peer.
	packetsReceived map[wire.Address]uint32
	bytesReceived   map[wire.Address]uint32
}

// New creates an Agent bound to engine for sending and host for scheduling.
// The agent installs itself as engine's deliver handler.
func New(cfg Config, engine *routing.Engine, host *simhost.Host, energy *simhost.EnergyModel) *Agent {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &Agent{
		cfg:             cfg,
		log:             logger.WithGroup("app").With("node", cfg.Self),
		engine:          engine,
		host:            host,
		energy:          energy,
		isSink:          cfg.Self == cfg.Sink,
		packetsReceived: make(map[wire.Address]uint32),
		bytesReceived:   make(map[wire.Address]uint32),
	}
	engine.SetDeliverHandler(a.FromNetwork)
	return a
}

// Stats implements simhost.StatsProvider, publishing this node's
// PeerStatsSnapshot for other nodes' finalisation passes to read.
func (a *Agent) Stats() any {
	return PeerStatsSnapshot{PacketsSentToSink: a.packetsSentToSink}
}

// Start begins the agent's periodic emission timer on a non-sink node.
// The sink schedules nothing; it only waits for deliveries via FromNetwork.
func (a *Agent) Start() {
	if a.isSink {
		a.log.Debug("sink agent started, awaiting deliveries")
		return
	}
	if a.cfg.PacketSpacing == 0 {
		a.log.Debug("packet spacing is zero, node stays silent for the run")
		return
	}
	a.host.After(a.cfg.StartupDelay, a.emit)
}

// emit constructs and sends one application packet towards the sink, then
// rearms the timer at PacketSpacing.
func (a *Agent) emit(h *simhost.Host) {
	pkt := &Packet{
		Name:      fmt.Sprintf("AppPacket:%d", a.seq),
		Seq:       a.seq,
		CreatedAt: h.Now(),
		Size:      0,
	}
	a.log.Debug("emitting application packet", "seq", a.seq)
	a.engine.FromApplication(pkt, a.cfg.Sink)

	a.packetsSentToSink++
	a.seq++

	h.After(a.cfg.PacketSpacing, a.emit)
}

// FromNetwork is the routing engine's deliver handler: it is invoked when a
// DATA or RREQ-encapsulated application packet reaches this node. Only the
// sink consumes packets; any delivery to a non-sink node is a protocol
// violation upstream and is logged as an internal error rather than acted
// on.
func (a *Agent) FromNetwork(payload any, source wire.Address, rssi, lqi float64) {
	if !a.isSink {
		a.log.Error("application packet delivered to a non-sink node", "source", source)
		return
	}

	pkt, ok := payload.(*Packet)
	if !ok {
		a.log.Error("delivered payload is not an application packet", "source", source)
		return
	}

	now := a.host.Now()
	if a.cfg.DelayLimit != 0 && now-pkt.CreatedAt > a.cfg.DelayLimit {
		a.log.Debug("dropping stale application packet", "source", source, "age", now-pkt.CreatedAt)
		return
	}

	a.packetsReceived[source]++
	a.bytesReceived[source] += uint32(pkt.Len())
}

// Finish produces the end-of-run report. peers maps every other node's
// address to the PeerStatsSnapshot it published; bytesDelivered is summed
// across the peers this node actually received from.
//
// Only the sink produces a non-empty result: it is the only node with
// receive-side counters populated.
func (a *Agent) Finish(peers map[wire.Address]PeerStatsSnapshot) FinishResult {
	if !a.isSink {
		return FinishResult{}
	}

	var reports []Report
	var bytesDelivered uint64

	for peer, snapshot := range peers {
		sent := snapshot.PacketsSentToSink
		if sent == 0 {
			continue
		}
		received := a.packetsReceived[peer]
		rate := float64(received) / float64(sent)
		reports = append(reports, Report{
			Peer:          peer,
			ReceptionRate: rate,
			LossRate:      1 - rate,
		})
		bytesDelivered += uint64(a.bytesReceived[peer])
	}

	var energyPerBit float64
	if bytesDelivered > 0 && a.energy != nil {
		spent := a.energy.SpentEnergy(a.cfg.Self)
		energyPerBit = spent * 1e9 / (float64(bytesDelivered) * 8)
		a.log.Info("end of run energy efficiency", "nj_per_bit", energyPerBit)
	}

	return FinishResult{Reports: reports, EnergyPerBit: energyPerBit}
}
