package simhost

import "github.com/wsnsim/floodrouting/wire"

// EnergyModel tracks simulated energy expenditure per node, as a single
// running total that does not record which action spent it. The simulator
// never models a battery running out; it only needs a running total per
// node for the end-of-run report.
type EnergyModel struct {
	perNode map[wire.Address]float64
}

// NewEnergyModel creates an energy tracker with all nodes starting at zero.
func NewEnergyModel() *EnergyModel {
	return &EnergyModel{perNode: make(map[wire.Address]float64)}
}

// Spend adds amount to node's running energy total. amount is in joules, the
// unit app.Agent.Finish assumes when it reports nJ/bit.
func (e *EnergyModel) Spend(node wire.Address, amount float64) {
	e.perNode[node] += amount
}

// SpentEnergy returns the running total spent by node.
func (e *EnergyModel) SpentEnergy(node wire.Address) float64 {
	return e.perNode[node]
}

// Totals returns a copy of the per-node running totals.
func (e *EnergyModel) Totals() map[wire.Address]float64 {
	out := make(map[wire.Address]float64, len(e.perNode))
	for addr, total := range e.perNode {
		out[addr] = total
	}
	return out
}
