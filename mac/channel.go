package mac

import (
	"log/slog"

	"github.com/wsnsim/floodrouting/simhost"
	"github.com/wsnsim/floodrouting/wire"
)

// ChannelConfig configures a SimChannel.
type ChannelConfig struct {
	// PropagationDelay is the simulated time a packet spends in flight
	// between two neighbouring radios, in the host's time unit.
	PropagationDelay simhost.Time

	// RSSI and LQI are the signal-quality values reported to every
	// receiving handler. This channel has no physical path-loss model, so
	// every in-range hop reports the same metrics.
	RSSI float64
	LQI  float64

	// Energy, when set, is charged TxCost on the sending node for every
	// broadcast or unicast transmission and RxCost on each receiving node
	// for every delivered packet, supplying the "spent energy" figure the
	// end-of-run report reads back out. A nil Energy makes the channel
	// free, which is fine for tests that don't care about it.
	Energy *simhost.EnergyModel
	TxCost float64
	RxCost float64

	// Logger receives per-transmission diagnostics. Falls back to
	// slog.Default() if nil.
	Logger *slog.Logger
}

// SimChannel is the shared medium every node's radio transmits into. It
// knows the network's adjacency (which nodes are in range of which) and
// delivers packets to in-range neighbours after a simulated propagation
// delay, via the Host's event queue.
//
// This is the simulated counterpart of the teacher's MQTT/serial transport:
// instead of a real network socket, delivery is a scheduled Host event, and
// "connected" always means "in range per the scenario's adjacency graph".
type SimChannel struct {
	host *simhost.Host
	cfg  ChannelConfig
	log  *slog.Logger

	neighbours map[wire.Address][]wire.Address
	addrByID   map[ID]wire.Address
	handlers   map[wire.Address]PacketHandler
}

// NewSimChannel creates a channel over host using the given adjacency graph.
// neighbours need not be symmetric; if the scenario models asymmetric links,
// list only the reachable direction.
func NewSimChannel(host *simhost.Host, neighbours map[wire.Address][]wire.Address, cfg ChannelConfig) *SimChannel {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &SimChannel{
		host:       host,
		cfg:        cfg,
		log:        logger.WithGroup("mac"),
		neighbours: neighbours,
		addrByID:   make(map[ID]wire.Address),
		handlers:   make(map[wire.Address]PacketHandler),
	}
	for addr, peers := range neighbours {
		c.addrByID[IDFor(addr)] = addr
		for _, p := range peers {
			c.addrByID[IDFor(p)] = p
		}
	}
	return c
}

// Radio returns the Radio interface a node at id should use to send and
// receive over this channel.
func (c *SimChannel) Radio(id wire.Address) Radio {
	return &nodeRadio{channel: c, self: id}
}

func (c *SimChannel) setHandler(id wire.Address, fn PacketHandler) {
	c.handlers[id] = fn
}

// broadcast delivers pkt to every neighbour of src after the propagation
// delay. Each neighbour receives an independent clone so that one handler
// mutating its packet cannot affect another's.
func (c *SimChannel) broadcast(src wire.Address, pkt *wire.Packet) {
	c.chargeTx(src)
	for _, n := range c.neighbours[src] {
		c.deliver(src, n, pkt.Clone())
	}
}

// unicast delivers pkt to the neighbour whose MAC identifier is dest, but
// only if that neighbour is actually in range of src; otherwise the packet
// is dropped silently, as an out-of-range transmission would be on real
// hardware.
func (c *SimChannel) unicast(src wire.Address, pkt *wire.Packet, dest ID) {
	destAddr, ok := c.addrByID[dest]
	if !ok {
		c.log.Debug("dropped unicast to unknown MAC id", "src", src, "dest", dest)
		return
	}
	for _, n := range c.neighbours[src] {
		if n == destAddr {
			c.chargeTx(src)
			c.deliver(src, destAddr, pkt.Clone())
			return
		}
	}
	c.log.Debug("dropped unicast to non-neighbour", "src", src, "dest", destAddr)
}

func (c *SimChannel) deliver(src, dest wire.Address, pkt *wire.Packet) {
	c.host.After(c.cfg.PropagationDelay, func(h *simhost.Host) {
		handler, ok := c.handlers[dest]
		if !ok {
			c.log.Debug("dropped: no handler registered", "dest", dest)
			return
		}
		c.chargeRx(dest)
		handler(pkt, IDFor(src), c.cfg.RSSI, c.cfg.LQI)
	})
}

func (c *SimChannel) chargeTx(node wire.Address) {
	if c.cfg.Energy != nil {
		c.cfg.Energy.Spend(node, c.cfg.TxCost)
	}
}

func (c *SimChannel) chargeRx(node wire.Address) {
	if c.cfg.Energy != nil {
		c.cfg.Energy.Spend(node, c.cfg.RxCost)
	}
}

// nodeRadio is the Radio handed to a single node; it forwards every call to
// the shared SimChannel with the node's own address bound as the sender.
type nodeRadio struct {
	channel *SimChannel
	self    wire.Address
}

func (r *nodeRadio) ID() ID { return IDFor(r.self) }

func (r *nodeRadio) Broadcast(pkt *wire.Packet) {
	r.channel.broadcast(r.self, pkt)
}

func (r *nodeRadio) Unicast(pkt *wire.Packet, dest ID) {
	r.channel.unicast(r.self, pkt, dest)
}

func (r *nodeRadio) SetPacketHandler(fn PacketHandler) {
	r.channel.setHandler(r.self, fn)
}
