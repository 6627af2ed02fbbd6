package module

import "sync"

// Cache is the process-wide mapping of module id to parsed record.
//
// The cache is rebuilt wholesale on every refresh: Rebuild constructs a
// complete new snapshot and swaps it in under the lock, so a reader never
// observes a cache that mixes entries from two different scans. Lookup and
// AllIDs return copies; external code cannot retain mutable references into
// the cache.
//
// Enumeration order is the insertion order of the most recent rebuild (the
// scan order), which the resolver uses as its deterministic tie-break.
type Cache struct {
	mu   sync.RWMutex
	snap snapshot
}

// snapshot is one immutable generation of the cache contents.
type snapshot struct {
	records map[string]Record
	order   []string // ids in insertion order
}

// NewCache creates an empty module cache.
func NewCache() *Cache {
	return &Cache{snap: emptySnapshot()}
}

func emptySnapshot() snapshot {
	return snapshot{records: make(map[string]Record)}
}

// Rebuild atomically replaces the entire cache contents with the given
// records. Duplicate ids keep the first occurrence; later duplicates are
// dropped, preserving the uniqueness invariant. Records with an empty id are
// skipped.
//
// The new snapshot is fully built before the swap, so concurrent readers see
// either the old generation or the new one, never a mix.
func (c *Cache) Rebuild(records []Record) {
	next := snapshot{
		records: make(map[string]Record, len(records)),
		order:   make([]string, 0, len(records)),
	}
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, dup := next.records[r.ID]; dup {
			continue
		}
		next.records[r.ID] = r.clone()
		next.order = append(next.order, r.ID)
	}

	c.mu.Lock()
	c.snap = next
	c.mu.Unlock()
}

// Clear empties the cache immediately. Used before a rebuild begins and on
// unrecoverable discovery failure so stale data is never queried as current.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.snap = emptySnapshot()
	c.mu.Unlock()
}

// Lookup returns a copy of the record with the given id.
func (c *Cache) Lookup(id string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.snap.records[id]
	if !ok {
		return Record{}, false
	}
	return r.clone(), true
}

// LookupExternal returns a copy of the record whose external id matches.
// The host's persisted load order is keyed by external id, so validation
// queries arrive in that namespace. Falls back to primary id matching when
// no record declares the external id.
func (c *Cache) LookupExternal(externalID string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.snap.order {
		r := c.snap.records[id]
		if r.EffectiveExternalID() == externalID {
			return r.clone(), true
		}
	}
	if r, ok := c.snap.records[externalID]; ok {
		return r.clone(), true
	}
	return Record{}, false
}

// AllIDs returns the module ids in stable enumeration order (the insertion
// order of the most recent rebuild).
func (c *Cache) AllIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.snap.order))
	copy(out, c.snap.order)
	return out
}

// All returns copies of all records in enumeration order.
func (c *Cache) All() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, 0, len(c.snap.order))
	for _, id := range c.snap.order {
		out = append(out, c.snap.records[id].clone())
	}
	return out
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snap.records)
}

// ApplyValidation overwrites each record's validation state with the result
// of a resolution pass. Records absent from the map get an empty validation,
// so stale cyclic/missing findings never survive a re-resolution.
func (c *Cache) ApplyValidation(validation map[string]Validation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, r := range c.snap.records {
		v, ok := validation[id]
		if !ok {
			v = Validation{}
		}
		r.Invalid = v.clone()
		c.snap.records[id] = r
	}
}
