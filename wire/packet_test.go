package wire

import "testing"

func TestValidate(t *testing.T) {
	p := &Packet{Source: "A", Destination: "S", Index: 1}
	p.Route[0] = "B"
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_SameSourceDestination(t *testing.T) {
	p := &Packet{Source: "A", Destination: "A"}
	if err := p.Validate(); err != ErrSameSourceDestination {
		t.Fatalf("Validate() = %v, want ErrSameSourceDestination", err)
	}
}

func TestValidate_DuplicateRelay(t *testing.T) {
	p := &Packet{Source: "A", Destination: "S", Index: 2}
	p.Route[0] = "B"
	p.Route[1] = "B"
	if err := p.Validate(); err == nil {
		t.Fatal("Validate() = nil, want duplicate relay error")
	}
}

func TestNextHop(t *testing.T) {
	p := &Packet{Destination: "S", Index: 0}
	p.Route[0] = "B"
	if got := p.NextHop(); got != "B" {
		t.Errorf("NextHop() = %q, want B", got)
	}

	p.Index = RouteCapacity
	if got := p.NextHop(); got != "S" {
		t.Errorf("NextHop() at exhausted cursor = %q, want S (destination)", got)
	}
}

func TestEncodeRoute(t *testing.T) {
	route := EncodeRoute([]Address{"B", "A"})
	if route[0] != "B" {
		t.Errorf("route[0] = %q, want B", route[0])
	}
	for i := 1; i < RouteCapacity; i++ {
		if route[i] != "" {
			t.Errorf("route[%d] = %q, want empty", i, route[i])
		}
	}
}

func TestEncodeRoute_Empty(t *testing.T) {
	route := EncodeRoute(nil)
	for i, a := range route {
		if a != "" {
			t.Errorf("route[%d] = %q, want empty", i, a)
		}
	}
}

func TestClone(t *testing.T) {
	p := &Packet{Source: "A", Destination: "S", Payload: "app-packet"}
	p.Route[0] = "B"
	p.Index = 1
	clone := p.Clone()

	if clone == p {
		t.Fatal("Clone() returned the same pointer")
	}
	if clone.Payload != p.Payload || clone.Route[0] != p.Route[0] {
		t.Error("Clone() did not preserve Payload and Route")
	}

	clone.Route[0] = "mutated"
	if p.Route[0] != "B" {
		t.Error("Clone() shares the Route array with the original")
	}
}
