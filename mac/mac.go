// Package mac provides the simulated radio layer nodes send and receive
// routing packets through.
//
// This corresponds to the teacher's transport.Transport interface
// (Start/Stop/IsConnected/SetPacketHandler/SendPacket over MQTT or serial
// hardware). There is no hardware here, so Start/Stop/IsConnected have no
// counterpart; what remains is the packet handler registration and the
// send operation, now split into Broadcast (flood) and Unicast (direct) to
// match the two delivery modes the routing engine uses, and the handler is
// given a link-level source identifier and signal metrics the way the
// teacher's PacketHandler is given a transport.PacketSource.
package mac

import (
	"hash/fnv"

	"github.com/wsnsim/floodrouting/wire"
)

// ID is an opaque MAC-layer identifier. The routing engine never interprets
// it beyond using it as a destination handle for Unicast.
type ID uint32

// IDFor derives the MAC identifier for a network address. In this simulated
// radio layer the mapping is a pure function of the address rather than an
// assigned hardware handle, since there is no real radio to enumerate.
func IDFor(addr wire.Address) ID {
	h := fnv.New32a()
	_, _ = h.Write([]byte(addr))
	return ID(h.Sum32())
}

// PacketHandler is called when a packet arrives at a node's radio, along
// with the MAC identifier of the neighbour that transmitted it and simple
// signal-quality metrics for that hop.
type PacketHandler func(pkt *wire.Packet, src ID, rssi, lqi float64)

// Radio is the interface the routing engine sends and receives packets
// through. A node never talks to another node directly; it only ever talks
// to its own Radio.
type Radio interface {
	// ID returns the MAC identifier of the node this radio belongs to.
	ID() ID
	// Broadcast transmits pkt to every neighbour in radio range.
	Broadcast(pkt *wire.Packet)
	// Unicast transmits pkt to a specific neighbour by MAC identifier. The
	// channel drops the packet without notifying the sender if dest does
	// not resolve to a node in range.
	Unicast(pkt *wire.Packet, dest ID)
	// SetPacketHandler registers the callback invoked for every packet this
	// radio receives, whether broadcast or unicast.
	SetPacketHandler(fn PacketHandler)
}
