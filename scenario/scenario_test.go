package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wsnsim/floodrouting/wire"
)

func writeScenario(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_ValidChainScenario(t *testing.T) {
	path := writeScenario(t, `
sink: S
nodes:
  - address: A
    neighbours: [B]
    startup_delay: 10
    packet_spacing: 20
  - address: B
    neighbours: [A, S]
  - address: S
    neighbours: [B]
channel:
  propagation_delay: 2
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Sink != "S" {
		t.Errorf("Sink = %q, want S", s.Sink)
	}
	if len(s.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(s.Nodes))
	}
	if s.Channel.PropagationDelay != 2 {
		t.Errorf("PropagationDelay = %v, want 2", s.Channel.PropagationDelay)
	}
	// RSSI/LQI were left unset in the file; defaults should have applied.
	if s.Channel.RSSI != -60 || s.Channel.LQI != 200 {
		t.Errorf("Channel defaults = %+v, want RSSI=-60 LQI=200", s.Channel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Error("Load() on a missing file, want error")
	}
}

func TestLoad_RejectsMissingSink(t *testing.T) {
	path := writeScenario(t, `
nodes:
  - address: A
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() with no sink, want error")
	}
}

func TestLoad_RejectsSinkNotInNodes(t *testing.T) {
	path := writeScenario(t, `
sink: Z
nodes:
  - address: A
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() with a sink that isn't a declared node, want error")
	}
}

func TestLoad_RejectsDuplicateAddress(t *testing.T) {
	path := writeScenario(t, `
sink: A
nodes:
  - address: A
  - address: A
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() with duplicate node addresses, want error")
	}
}

func TestLoad_RejectsUnknownNeighbour(t *testing.T) {
	path := writeScenario(t, `
sink: A
nodes:
  - address: A
    neighbours: [Ghost]
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() with a neighbour that isn't a declared node, want error")
	}
}

func TestLoad_RejectsSelfNeighbour(t *testing.T) {
	path := writeScenario(t, `
sink: A
nodes:
  - address: A
    neighbours: [A]
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() with a node listing itself as a neighbour, want error")
	}
}

func TestLoad_PacketSpacingZeroIsPreserved(t *testing.T) {
	path := writeScenario(t, `
sink: S
nodes:
  - address: A
    packet_spacing: 0
  - address: S
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n, ok := s.Node("A")
	if !ok {
		t.Fatal("Node(A) not found")
	}
	if n.PacketSpacing != 0 {
		t.Errorf("PacketSpacing = %v, want 0 (not defaulted)", n.PacketSpacing)
	}
}

func TestAdjacency(t *testing.T) {
	path := writeScenario(t, `
sink: S
nodes:
  - address: A
    neighbours: [B]
  - address: B
    neighbours: [A, S]
  - address: S
    neighbours: [B]
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	adj := s.Adjacency()
	if got := adj["A"]; len(got) != 1 || got[0] != "B" {
		t.Errorf("Adjacency()[A] = %v, want [B]", got)
	}
	if got := adj["B"]; len(got) != 2 {
		t.Errorf("Adjacency()[B] = %v, want 2 entries", got)
	}
}

func TestAddresses(t *testing.T) {
	path := writeScenario(t, `
sink: A
nodes:
  - address: A
  - address: B
  - address: C
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []wire.Address{"A", "B", "C"}
	got := s.Addresses()
	if len(got) != len(want) {
		t.Fatalf("Addresses() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Addresses()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
