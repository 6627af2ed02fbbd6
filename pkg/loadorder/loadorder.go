// Package loadorder models the host-persisted, per-profile user load order
// and reconciles it with resolved module graphs.
//
// The load order is keyed by external module id and owned by the host; the
// core consumes it read-only and proposes position assignments back through
// explicit store writes, never by mutating shared state.
package loadorder

import (
	"sort"
)

// Entry is the persisted state for one module in a profile's load order.
type Entry struct {
	// Position orders the module within the profile, ascending.
	Position int `json:"position"`
	// Enabled marks the module active for launch.
	Enabled bool `json:"enabled"`
	// Locked prevents the host UI from moving the entry.
	Locked bool `json:"locked"`
}

// LoadOrder maps external module id to its persisted entry.
type LoadOrder map[string]Entry

// EnabledSequence returns the external ids of enabled entries sorted by
// position ascending. Position ties break on id so the sequence is
// deterministic.
func (o LoadOrder) EnabledSequence() []string {
	type keyed struct {
		id  string
		pos int
	}
	var entries []keyed
	for id, e := range o {
		if e.Enabled {
			entries = append(entries, keyed{id: id, pos: e.Position})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pos != entries[j].pos {
			return entries[i].pos < entries[j].pos
		}
		return entries[i].id < entries[j].id
	})

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// Position returns the recorded position for an external id and whether the
// order knows the id at all. Used by the resolver as a tie-break hint.
func (o LoadOrder) Position(externalID string) (int, bool) {
	e, ok := o[externalID]
	if !ok {
		return 0, false
	}
	return e.Position, true
}

// FromSequence builds a load order proposing consecutive positions for the
// given external ids, all enabled. This is how reconciliation results are
// written back to the host store.
func FromSequence(ids []string) LoadOrder {
	o := make(LoadOrder, len(ids))
	for i, id := range ids {
		o[id] = Entry{Position: i, Enabled: true}
	}
	return o
}
