package routecache

import (
	"testing"

	"github.com/wsnsim/floodrouting/wire"
)

func TestInsert_FirstWriterWins(t *testing.T) {
	c := New()
	if !c.Insert("S", []wire.Address{"B", "A"}) {
		t.Fatal("Insert() for new source = false, want true")
	}
	if c.Insert("S", []wire.Address{"C"}) {
		t.Fatal("Insert() for already-cached source = true, want false (first writer wins)")
	}
	route, ok := c.Lookup("S")
	if !ok {
		t.Fatal("Lookup() after insert = not found")
	}
	if len(route) != 2 || route[0] != "B" || route[1] != "A" {
		t.Errorf("Lookup() = %v, want [B A] (original route preserved)", route)
	}
}

func TestLookup_Unknown(t *testing.T) {
	c := New()
	if _, ok := c.Lookup("ghost"); ok {
		t.Error("Lookup() for unknown source reported ok=true")
	}
}

func TestLookup_ReturnsCopy(t *testing.T) {
	c := New()
	c.Insert("S", []wire.Address{"A"})
	route, _ := c.Lookup("S")
	route[0] = "mutated"

	route2, _ := c.Lookup("S")
	if route2[0] != "A" {
		t.Error("Lookup() leaked internal slice; mutation through one result affected another")
	}
}

func TestInsert_CallbackOnlyOnNewRoute(t *testing.T) {
	c := New()
	calls := 0
	c.SetOnInsert(func(source wire.Address, route []wire.Address) { calls++ })

	c.Insert("S", []wire.Address{"A"})
	c.Insert("S", []wire.Address{"B"})

	if calls != 1 {
		t.Errorf("onInsert called %d times, want 1", calls)
	}
}

func TestCount(t *testing.T) {
	c := New()
	c.Insert("S1", []wire.Address{"A"})
	c.Insert("S2", []wire.Address{"B"})
	if got := c.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
}

func TestForEach_EarlyStop(t *testing.T) {
	c := New()
	c.Insert("S1", []wire.Address{"A"})
	c.Insert("S2", []wire.Address{"B"})

	visited := 0
	c.ForEach(func(source wire.Address, route []wire.Address) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("ForEach() visited %d entries, want 1 (early stop)", visited)
	}
}
