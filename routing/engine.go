// Package routing implements the per-node routing engine: on-demand flood
// route discovery (RREQ/RREP) and pinned-source-route unicast forwarding
// (DATA), with per-source sequence watermarking to suppress duplicate and
// looped flooding traffic.
//
// This corresponds to the teacher's device/router.Router — the packet
// dispatch pipeline (gate checks, then a switch on packet type, then a
// forwarding decision) is kept, but the gates and the forwarding rules
// themselves are this protocol's, not MeshCore's: deduplication becomes a
// per-source sequence watermark (seqwatch), the contact list becomes a
// source-route cache (routecache), and the single wire codec becomes four
// packet-type handlers operating directly on wire.Packet.
package routing

import (
	"fmt"
	"log/slog"

	"github.com/wsnsim/floodrouting/mac"
	"github.com/wsnsim/floodrouting/routecache"
	"github.com/wsnsim/floodrouting/seqwatch"
	"github.com/wsnsim/floodrouting/wire"
)

// DeliverHandler is invoked when a packet's payload should be handed up to
// the local Application Agent, along with the originating address and the
// signal metrics of the hop the packet was last carried over.
type DeliverHandler func(payload any, source wire.Address, rssi, lqi float64)

// Config configures an Engine.
type Config struct {
	// Self is this node's network address.
	Self wire.Address

	// Logger for routing diagnostics. Falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// Engine is the per-node routing state machine described in the package
// doc. One Engine instance exists per simulated node; nothing here is
// shared across nodes.
type Engine struct {
	cfg   Config
	log   *slog.Logger
	radio mac.Radio

	seq uint32 // local sequence counter, SEQ

	neighbours map[wire.Address]mac.ID // MAC neighbour cache
	routes     *routecache.Cache       // source-route cache
	watermarks *seqwatch.Table         // per-source sequence watermark

	counters Counters

	onDeliver DeliverHandler
}

// New creates a routing Engine bound to radio. The engine installs itself
// as the radio's packet handler.
func New(cfg Config, radio mac.Radio) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		cfg:        cfg,
		log:        logger.WithGroup("routing").With("node", cfg.Self),
		radio:      radio,
		neighbours: make(map[wire.Address]mac.ID),
		routes:     routecache.New(),
		watermarks: seqwatch.New(),
	}
	radio.SetPacketHandler(e.FromMAC)
	return e
}

// SetDeliverHandler registers the callback used to hand a decapsulated
// payload up to the local Application Agent.
func (e *Engine) SetDeliverHandler(fn DeliverHandler) {
	e.onDeliver = fn
}

// Start begins the engine's operation. There is no background work to
// launch — every entry point runs to completion synchronously — so this
// exists only to match the routing engine's lifecycle contract.
func (e *Engine) Start() {
	e.log.Debug("routing engine started")
}

// Finish ends the engine's operation. Per-node tables and counters are left
// in place, so Counters and Stats stay readable for the end-of-run report;
// nothing is torn down here since state does not outlive the run regardless.
func (e *Engine) Finish() {
	e.log.Debug("routing engine finished",
		"routes_cached", e.routes.Count(),
		"peers_seen", e.watermarks.Len())
}

// Counters returns a point-in-time snapshot of this engine's routing packet
// breakdown statistics.
func (e *Engine) Counters() CountersSnapshot {
	return e.counters.Snapshot()
}

// Stats implements simhost.StatsProvider.
func (e *Engine) Stats() any {
	return e.Counters()
}

// FromApplication handles a packet submitted by the local Application
// Agent, addressed to destination. See §4.1.1: if a route to destination
// is already cached, the packet is sent as DATA directly along it;
// otherwise an RREQ is broadcast to discover one.
func (e *Engine) FromApplication(payload any, destination wire.Address) {
	if route, ok := e.routes.Lookup(destination); ok {
		e.sendData(payload, destination, route)
		return
	}
	e.sendRREQ(payload, destination)
}

func (e *Engine) sendData(payload any, destination wire.Address, route []wire.Address) {
	pkt := &wire.Packet{
		Name:        fmt.Sprintf("DATA-packet::%s:%d", e.cfg.Self, e.seq),
		Type:        wire.DATA,
		Source:      e.cfg.Self,
		Destination: destination,
		Seq:         e.seq,
		Route:       wire.EncodeRoute(route),
		Index:       0,
		Payload:     payload,
	}
	e.seq++
	e.counters.NewDataPackets++

	nextHop := pkt.NextHop()
	e.log.Debug("emitting DATA", "destination", destination, "next_hop", nextHop, "seq", pkt.Seq)
	e.radio.Unicast(pkt, e.neighbours[nextHop])
}

func (e *Engine) sendRREQ(payload any, destination wire.Address) {
	pkt := &wire.Packet{
		Name:        fmt.Sprintf("REQ-packet::%s:%d", e.cfg.Self, e.seq),
		Type:        wire.RREQ,
		Source:      e.cfg.Self,
		Destination: destination,
		Seq:         e.seq,
		Index:       0,
		Payload:     payload,
	}
	e.seq++
	e.counters.NewOtherPackets++

	e.log.Debug("emitting RREQ", "destination", destination, "seq", pkt.Seq)
	e.radio.Broadcast(pkt)
}

// FromMAC handles a packet arriving over the radio from macSource, with
// link-quality metrics rssi and lqi. See §4.1.2: a nil packet or one that
// fails wire.Packet.Validate is discarded and counted; every other packet is
// run through neighbour-learning, the self-origin filter, and the sequence
// filter, in that order, before being dispatched by type.
func (e *Engine) FromMAC(pkt *wire.Packet, macSource mac.ID, rssi, lqi float64) {
	if pkt == nil || pkt.Validate() != nil {
		e.log.Debug("discarding malformed packet")
		e.counters.DiscardedPackets++
		return
	}

	e.learnNeighbour(pkt, macSource)

	if pkt.Source == e.cfg.Self {
		e.log.Debug("discarding self-echo", "seq", pkt.Seq)
		e.counters.DiscardedPackets++
		return
	}

	if !e.watermarks.Admit(string(pkt.Source), pkt.Seq) {
		e.log.Debug("discarding stale packet", "source", pkt.Source, "seq", pkt.Seq)
		e.counters.DiscardedPackets++
		return
	}

	if pkt.Type == wire.DATA {
		e.counters.DataPackets++
	} else {
		e.counters.OtherPackets++
	}

	switch pkt.Type {
	case wire.DATA:
		e.handleData(pkt, rssi, lqi)
	case wire.RREQ:
		e.handleRREQ(pkt, rssi, lqi)
	case wire.RREP:
		e.handleRREP(pkt)
	case wire.ACK:
		e.log.Debug("ignoring ACK packet (unimplemented)", "source", pkt.Source)
	}
}

// learnNeighbour credits the packet's immediate transmitter — not
// necessarily its logical source — with the MAC identifier it actually
// arrived from.
func (e *Engine) learnNeighbour(pkt *wire.Packet, macSource mac.ID) {
	transmitter := pkt.Source
	if pkt.Index > 0 {
		transmitter = pkt.Route[pkt.Index-1]
	}
	e.neighbours[transmitter] = macSource
}

func (e *Engine) handleData(pkt *wire.Packet, rssi, lqi float64) {
	if pkt.Destination == e.cfg.Self {
		e.log.Debug("delivering DATA to application", "source", pkt.Source, "seq", pkt.Seq)
		e.counters.ForwardedToApplication++
		e.deliver(pkt.Payload, pkt.Source, rssi, lqi)
		return
	}

	fwd := pkt.Clone()
	fwd.Index = advanceIndex(pkt.Index)
	nextHop := fwd.NextHop()
	e.counters.RelayedDataPackets++

	e.log.Debug("relaying DATA", "source", pkt.Source, "destination", pkt.Destination, "next_hop", nextHop)
	e.radio.Unicast(fwd, e.neighbours[nextHop])
}

func (e *Engine) handleRREQ(pkt *wire.Packet, rssi, lqi float64) {
	if pkt.Destination != e.cfg.Self {
		fwd := pkt.Clone()
		if pkt.Index < wire.RouteCapacity {
			fwd.Route[pkt.Index] = e.cfg.Self
		}
		fwd.Index = advanceIndex(pkt.Index)
		e.counters.RelayedOtherPackets++

		e.log.Debug("relaying RREQ", "source", pkt.Source, "destination", pkt.Destination)
		e.radio.Broadcast(fwd)
		return
	}

	if _, exists := e.routes.Lookup(pkt.Source); exists {
		e.log.Debug("discarding duplicate RREQ (route already cached)", "source", pkt.Source)
		e.counters.DiscardedPackets++
		return
	}

	route := reverseRoute(pkt)
	e.routes.Insert(pkt.Source, route)
	e.counters.ForwardedToApplication++
	e.deliver(pkt.Payload, pkt.Source, rssi, lqi)

	e.sendRREP(pkt.Source, route)
}

func (e *Engine) sendRREP(to wire.Address, route []wire.Address) {
	pkt := &wire.Packet{
		Name:        fmt.Sprintf("REP-packet::%s:%d", e.cfg.Self, e.seq),
		Type:        wire.RREP,
		Source:      e.cfg.Self,
		Destination: to,
		Seq:         e.seq,
		Route:       wire.EncodeRoute(route),
		Index:       0,
	}
	e.seq++
	e.counters.NewOtherPackets++

	nextHop := pkt.NextHop()
	e.log.Debug("emitting RREP", "destination", to, "next_hop", nextHop, "seq", pkt.Seq)
	e.radio.Unicast(pkt, e.neighbours[nextHop])
}

func (e *Engine) handleRREP(pkt *wire.Packet) {
	if pkt.Destination != e.cfg.Self {
		fwd := pkt.Clone()
		fwd.Index = advanceIndex(pkt.Index)
		nextHop := fwd.NextHop()
		e.counters.RelayedOtherPackets++

		e.log.Debug("relaying RREP", "source", pkt.Source, "destination", pkt.Destination, "next_hop", nextHop)
		e.radio.Unicast(fwd, e.neighbours[nextHop])
		return
	}

	route := reverseRoute(pkt)
	e.routes.Insert(pkt.Source, route)
	e.log.Debug("installed route from RREP", "peer", pkt.Source, "route", route)
}

func (e *Engine) deliver(payload any, source wire.Address, rssi, lqi float64) {
	if e.onDeliver != nil {
		e.onDeliver(payload, source, rssi, lqi)
	}
}

// advanceIndex returns index+1, capped at RouteCapacity so the invariant
// 0 <= index <= capacity holds forever even once a route has run past its
// written region.
func advanceIndex(index int) int {
	if index+1 > wire.RouteCapacity {
		return wire.RouteCapacity
	}
	return index + 1
}

// reverseRoute computes the reverse path back to pkt's originator from the
// accumulated forward route, per the round-trip law in §8: given an RREQ
// that arrived having accumulated [route[0], ..., route[index-1]], the
// reverse path is that sequence walked backwards with the originator
// appended at the tail — [route[index-1], ..., route[0], source] — so that
// route-encoding later drops the redundant final hop (the peer itself) and
// keeps route[0] as the correct next hop back towards it.
func reverseRoute(pkt *wire.Packet) []wire.Address {
	out := make([]wire.Address, 0, pkt.Index+1)
	for i := pkt.Index - 1; i >= 0; i-- {
		out = append(out, pkt.Route[i])
	}
	out = append(out, pkt.Source)
	return out
}
