package simhost

import "github.com/wsnsim/floodrouting/wire"

// StatsProvider is implemented by anything the Host can ask for a
// point-in-time snapshot of its own state, without the asker needing a
// pointer into the provider's internals.
//
// This is the teacher's device/room StatsProvider pattern (a pull-based
// GetStats() accessor instead of a push-based callback), applied here to
// resolve the simulator's cross-node visibility problem: the design notes
// call for end-of-run reporting to read every node's counters without one
// node's Application Agent reaching across and poking at another node's
// routing engine state directly.
type StatsProvider interface {
	// Stats returns a read-only snapshot of the provider's current counters.
	Stats() any
}

// Registry lets each node publish its StatsProvider under its own address so
// that end-of-run reporting can collect every node's statistics from one
// place, in a single-threaded pass, after the Host has finished running.
type Registry struct {
	providers map[wire.Address]StatsProvider
}

// NewRegistry creates an empty stats registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[wire.Address]StatsProvider)}
}

// DeclareOutput registers node's StatsProvider. A later call for the same
// address replaces the earlier registration.
func (r *Registry) DeclareOutput(node wire.Address, provider StatsProvider) {
	r.providers[node] = provider
}

// CollectOutput returns a snapshot from every registered node's provider,
// keyed by address.
func (r *Registry) CollectOutput() map[wire.Address]any {
	out := make(map[wire.Address]any, len(r.providers))
	for addr, p := range r.providers {
		out[addr] = p.Stats()
	}
	return out
}

// Lookup returns the snapshot for a single node, and whether a provider was
// registered for it.
func (r *Registry) Lookup(node wire.Address) (any, bool) {
	p, ok := r.providers[node]
	if !ok {
		return nil, false
	}
	return p.Stats(), true
}
