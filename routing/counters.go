package routing

// Counters tracks the routing packet breakdown statistics declared at the
// engine level. Unlike the teacher's RouterCounters, these are plain fields
// rather than atomics: the concurrency model guarantees a single thread
// ever touches one node's engine (see simhost), so there is nothing to
// synchronize against.
type Counters struct {
	// TX breakdown
	NewDataPackets      uint32
	NewOtherPackets     uint32
	RelayedDataPackets  uint32
	RelayedOtherPackets uint32

	// RX breakdown
	DataPackets            uint32
	OtherPackets           uint32
	DiscardedPackets       uint32
	ForwardedToApplication uint32
}

// CountersSnapshot is a plain-value copy of Counters for reading.
type CountersSnapshot Counters

// Snapshot returns a point-in-time copy of the counters.
func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot(*c)
}

// Reset zeroes all counters.
func (c *Counters) Reset() {
	*c = Counters{}
}

// TXBreakdown returns the "Routing packet breakdown (TX)" output labels.
func (s CountersSnapshot) TXBreakdown() map[string]uint32 {
	return map[string]uint32{
		"New data packets":     s.NewDataPackets,
		"New other packets":    s.NewOtherPackets,
		"Relaid data packets":  s.RelayedDataPackets,
		"Relaid other packets": s.RelayedOtherPackets,
	}
}

// RXBreakdown returns the "Routing packet breakdown (RX)" output labels.
func (s CountersSnapshot) RXBreakdown() map[string]uint32 {
	return map[string]uint32{
		"Data packets":                           s.DataPackets,
		"Other packets":                          s.OtherPackets,
		"Discarded packets":                      s.DiscardedPackets,
		"Packets forwarded to application layer": s.ForwardedToApplication,
	}
}
