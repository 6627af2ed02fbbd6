// Package resolve builds the module dependency graph and computes a
// deterministic, fault-tolerant load ordering.
//
// The resolver never fails: missing dependencies are excluded from the sort
// and recorded per dependent, cycles are detected as strongly-connected
// components and recorded on every participant, and the output always
// contains every cached module exactly once. A broken dependency graph
// degrades to an imperfect but usable ordering instead of blocking the user.
package resolve

import (
	"github.com/modstack/modstack/pkg/loadorder"
	"github.com/modstack/modstack/pkg/module"
)

// Result is the outcome of one resolution pass.
type Result struct {
	// Ordered contains every cached module id exactly once, dependencies
	// before dependents wherever the graph allows.
	Ordered []string

	// Validation maps module id to its cyclic/missing findings. Every
	// cached id has an entry; clean modules have empty findings.
	Validation map[string]module.Validation
}

// Resolve computes the dependency ordering for the current cache contents.
//
// The hint load order is used only to break ties among simultaneously
// available nodes, never as ground truth: a hinted node sorts by its
// recorded position (ascending) and wins over unhinted nodes; otherwise
// cache enumeration order decides. The same cache contents and hint always
// produce the same sequence.
func Resolve(cache *module.Cache, hint loadorder.LoadOrder) Result {
	ids := cache.AllIDs()

	g := buildGraph(cache, ids)
	ordered, leftover := kahnSort(g, hint)

	if len(leftover) > 0 {
		markCycles(g, leftover)
		// Cycle participants still appear in the output, in cache
		// enumeration order, so the sequence is always complete.
		ordered = append(ordered, leftover...)
	}

	validation := make(map[string]module.Validation, len(ids))
	for _, id := range ids {
		validation[id] = g.validation[id]
	}
	return Result{Ordered: ordered, Validation: validation}
}

// Apply runs a resolution pass and merges the findings back into the cache,
// overwriting any previous validation state.
func Apply(cache *module.Cache, hint loadorder.LoadOrder) Result {
	res := Resolve(cache, hint)
	cache.ApplyValidation(res.Validation)
	return res
}

// ValidationFor returns the cyclic/missing findings for the module whose
// external id matches. The host's persisted load order indexes modules by
// external id, so queries arrive in that namespace. Unknown ids and modules
// without findings yield empty, non-nil lists; this lookup never fails.
func ValidationFor(cache *module.Cache, externalID string) module.Validation {
	rec, ok := cache.LookupExternal(externalID)
	v := module.Validation{}
	if ok {
		v = rec.Invalid
	}
	if v.Cyclic == nil {
		v.Cyclic = []string{}
	}
	if v.Missing == nil {
		v.Missing = []string{}
	}
	return v
}

// graph is the dependency graph for one resolution pass. An edge dep->id
// means dep must precede id. Edges whose dependency is not cached are
// excluded from the graph entirely (recorded as missing instead), so the
// sort always terminates.
type graph struct {
	ids        []string                     // cache enumeration order
	scanPos    map[string]int               // id -> enumeration index
	externalID map[string]string            // id -> external id (hint namespace)
	children   map[string][]string          // dep id -> dependent ids
	inDegree   map[string]int               // id -> unresolved dependency count
	validation map[string]module.Validation // findings per id
}

func buildGraph(cache *module.Cache, ids []string) *graph {
	g := &graph{
		ids:        ids,
		scanPos:    make(map[string]int, len(ids)),
		externalID: make(map[string]string, len(ids)),
		children:   make(map[string][]string, len(ids)),
		inDegree:   make(map[string]int, len(ids)),
		validation: make(map[string]module.Validation, len(ids)),
	}
	for i, id := range ids {
		g.scanPos[id] = i
		g.inDegree[id] = 0
	}

	for _, id := range ids {
		rec, ok := cache.Lookup(id)
		if !ok {
			continue
		}
		g.externalID[id] = rec.EffectiveExternalID()

		v := g.validation[id]
		for _, dep := range rec.Dependencies {
			if dep == id {
				continue
			}
			if _, cached := g.scanPos[dep]; !cached {
				v.Missing = append(v.Missing, dep)
				continue
			}
			g.children[dep] = append(g.children[dep], id)
			g.inDegree[id]++
		}
		g.validation[id] = v
	}
	return g
}

// kahnSort runs a stable topological sort. Among all currently available
// zero-in-degree nodes it repeatedly picks the best per the tie-break rule.
// Nodes never reaching in-degree zero (cycle participants and their
// dependents) are returned separately, in cache enumeration order.
func kahnSort(g *graph, hint loadorder.LoadOrder) (ordered, leftover []string) {
	less := func(a, b string) bool {
		pa, hintedA := hint.Position(g.externalID[a])
		pb, hintedB := hint.Position(g.externalID[b])
		switch {
		case hintedA && hintedB:
			if pa != pb {
				return pa < pb
			}
		case hintedA:
			return true
		case hintedB:
			return false
		}
		return g.scanPos[a] < g.scanPos[b]
	}

	var ready []string
	for _, id := range g.ids {
		if g.inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	ordered = make([]string, 0, len(g.ids))
	done := make(map[string]bool, len(g.ids))

	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if less(ready[i], ready[best]) {
				best = i
			}
		}
		id := ready[best]
		ready = append(ready[:best], ready[best+1:]...)

		ordered = append(ordered, id)
		done[id] = true

		for _, child := range g.children[id] {
			g.inDegree[child]--
			if g.inDegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	for _, id := range g.ids {
		if !done[id] {
			leftover = append(leftover, id)
		}
	}
	return ordered, leftover
}

// markCycles finds strongly-connected components among the leftover nodes
// and records, on every member, all other ids in its component. Leftover
// nodes outside any cycle (stuck only because they depend on one) get no
// cyclic finding.
func markCycles(g *graph, leftover []string) {
	for _, scc := range stronglyConnected(g, leftover) {
		if len(scc) < 2 {
			continue
		}
		for _, id := range scc {
			v := g.validation[id]
			for _, other := range scc {
				if other != id {
					v.Cyclic = append(v.Cyclic, other)
				}
			}
			g.validation[id] = v
		}
	}
}

// stronglyConnected is Tarjan's algorithm restricted to the given node
// subset. Components come out in an order derived from cache enumeration,
// and each component's members are in cache enumeration order.
func stronglyConnected(g *graph, nodes []string) [][]string {
	subset := make(map[string]bool, len(nodes))
	for _, id := range nodes {
		subset[id] = true
	}

	index := make(map[string]int, len(nodes))
	lowlink := make(map[string]int, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	var stack []string
	var components [][]string
	next := 0

	var strongconnect func(id string)
	strongconnect = func(id string) {
		index[id] = next
		lowlink[id] = next
		next++
		stack = append(stack, id)
		onStack[id] = true

		for _, child := range g.children[id] {
			if !subset[child] {
				continue
			}
			if _, seen := index[child]; !seen {
				strongconnect(child)
				lowlink[id] = min(lowlink[id], lowlink[child])
			} else if onStack[child] {
				lowlink[id] = min(lowlink[id], index[child])
			}
		}

		if lowlink[id] == index[id] {
			var comp []string
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				comp = append(comp, top)
				if top == id {
					break
				}
			}
			sortByScanPos(g, comp)
			components = append(components, comp)
		}
	}

	for _, id := range nodes {
		if _, seen := index[id]; !seen {
			strongconnect(id)
		}
	}
	return components
}

func sortByScanPos(g *graph, ids []string) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && g.scanPos[ids[j]] < g.scanPos[ids[j-1]]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
