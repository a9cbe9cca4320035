// Package seqwatch tracks, per originating peer, the highest originator-local
// sequence number this node has accepted, so stale or duplicated packets can
// be dropped before they are acted on.
//
// This corresponds to the teacher's core/dedupe circular-buffer seen-table,
// reworked from a bounded recently-seen window into an exact per-source
// watermark: the data model calls for a monotone high-water mark per peer,
// not a fixed-size recency window.
package seqwatch

import "sync"

// Table is a per-node, per-peer sequence watermark.
//
// Admit reports whether seq is new for peer (strictly greater than any
// previously admitted seq from that peer) and, if so, raises the watermark.
// A peer seen for the first time is admitted unconditionally.
type Table struct {
	mu    sync.Mutex
	marks map[string]uint32
}

// New creates an empty watermark table.
func New() *Table {
	return &Table{marks: make(map[string]uint32)}
}

// Admit returns true and records seq as the new watermark for peer if seq is
// strictly greater than the peer's current watermark (or the peer is
// unknown). Returns false, leaving the table unchanged, if seq is stale
// (seq <= watermark).
func (t *Table) Admit(peer string, seq uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	watermark, known := t.marks[peer]
	if known && seq <= watermark {
		return false
	}
	t.marks[peer] = seq
	return true
}

// Watermark returns the highest sequence number admitted for peer and
// whether the peer has been observed at all.
func (t *Table) Watermark(peer string) (uint32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.marks[peer]
	return w, ok
}

// Len returns the number of distinct peers tracked.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.marks)
}
