package resolve

import (
	"slices"
	"testing"

	"github.com/modstack/modstack/pkg/loadorder"
	"github.com/modstack/modstack/pkg/module"
)

func buildCache(records ...module.Record) *module.Cache {
	c := module.NewCache()
	c.Rebuild(records)
	return c
}

func indexOf(t *testing.T, ids []string, id string) int {
	t.Helper()
	i := slices.Index(ids, id)
	if i < 0 {
		t.Fatalf("id %q missing from ordering %v", id, ids)
	}
	return i
}

func TestResolveAcyclicChain(t *testing.T) {
	// B depends on A, C depends on B.
	c := buildCache(
		module.Record{ID: "C", Dependencies: []string{"B"}},
		module.Record{ID: "A"},
		module.Record{ID: "B", Dependencies: []string{"A"}},
	)

	res := Resolve(c, nil)

	if len(res.Ordered) != 3 {
		t.Fatalf("Ordered = %v, want 3 entries", res.Ordered)
	}
	a, b, cc := indexOf(t, res.Ordered, "A"), indexOf(t, res.Ordered, "B"), indexOf(t, res.Ordered, "C")
	if !(a < b && b < cc) {
		t.Errorf("Ordered = %v, want A before B before C", res.Ordered)
	}
	for id, v := range res.Validation {
		if !v.IsClean() {
			t.Errorf("Validation[%s] = %+v, want clean", id, v)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	c := buildCache(
		module.Record{ID: "M3"},
		module.Record{ID: "M1"},
		module.Record{ID: "M2"},
	)
	hint := loadorder.LoadOrder{"M2": {Position: 0}, "M3": {Position: 1}}

	first := Resolve(c, hint).Ordered
	for range 20 {
		if got := Resolve(c, hint).Ordered; !slices.Equal(got, first) {
			t.Fatalf("Resolve() = %v, want stable %v", got, first)
		}
	}
	// Hinted nodes first by position, unhinted after in scan order.
	want := []string{"M2", "M3", "M1"}
	if !slices.Equal(first, want) {
		t.Errorf("Ordered = %v, want %v", first, want)
	}
}

func TestResolveTieBreakScanOrderWithoutHint(t *testing.T) {
	c := buildCache(
		module.Record{ID: "Z"},
		module.Record{ID: "A"},
	)

	got := Resolve(c, nil).Ordered
	want := []string{"Z", "A"}
	if !slices.Equal(got, want) {
		t.Errorf("Ordered = %v, want cache enumeration order %v", got, want)
	}
}

func TestResolveHintIsOnlyATieBreak(t *testing.T) {
	// Hint says B first, but B depends on A: dependency order wins.
	c := buildCache(
		module.Record{ID: "A"},
		module.Record{ID: "B", Dependencies: []string{"A"}},
	)
	hint := loadorder.LoadOrder{"B": {Position: 0}, "A": {Position: 1}}

	got := Resolve(c, hint).Ordered
	want := []string{"A", "B"}
	if !slices.Equal(got, want) {
		t.Errorf("Ordered = %v, want %v (hint must not override edges)", got, want)
	}
}

func TestResolveHintKeyedByExternalID(t *testing.T) {
	c := buildCache(
		module.Record{ID: "Mod.One", ExternalID: "One"},
		module.Record{ID: "Mod.Two", ExternalID: "Two"},
	)
	hint := loadorder.LoadOrder{"Two": {Position: 0}, "One": {Position: 1}}

	got := Resolve(c, hint).Ordered
	want := []string{"Mod.Two", "Mod.One"}
	if !slices.Equal(got, want) {
		t.Errorf("Ordered = %v, want %v", got, want)
	}
}

func TestResolveMutualCycle(t *testing.T) {
	c := buildCache(
		module.Record{ID: "A", Dependencies: []string{"B"}},
		module.Record{ID: "B", Dependencies: []string{"A"}},
	)

	res := Resolve(c, nil)

	if len(res.Ordered) != 2 {
		t.Fatalf("Ordered = %v, want both cycle members present", res.Ordered)
	}
	if got := res.Validation["A"].Cyclic; !slices.Equal(got, []string{"B"}) {
		t.Errorf("Cyclic(A) = %v, want [B]", got)
	}
	if got := res.Validation["B"].Cyclic; !slices.Equal(got, []string{"A"}) {
		t.Errorf("Cyclic(B) = %v, want [A]", got)
	}
}

func TestResolveTriangleCycleRecordsAllOthers(t *testing.T) {
	c := buildCache(
		module.Record{ID: "A", Dependencies: []string{"C"}},
		module.Record{ID: "B", Dependencies: []string{"A"}},
		module.Record{ID: "C", Dependencies: []string{"B"}},
	)

	res := Resolve(c, nil)

	if len(res.Ordered) != 3 {
		t.Fatalf("Ordered = %v, want all 3 present", res.Ordered)
	}
	// Each member records all other participants, not just its neighbor.
	if got := res.Validation["A"].Cyclic; !slices.Equal(got, []string{"B", "C"}) {
		t.Errorf("Cyclic(A) = %v, want [B C]", got)
	}
	if got := res.Validation["B"].Cyclic; !slices.Equal(got, []string{"A", "C"}) {
		t.Errorf("Cyclic(B) = %v, want [A C]", got)
	}
	if got := res.Validation["C"].Cyclic; !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Cyclic(C) = %v, want [A B]", got)
	}
}

func TestResolveCycleDependentIsNotCyclic(t *testing.T) {
	// D depends on the A<->B cycle but is not part of it.
	c := buildCache(
		module.Record{ID: "A", Dependencies: []string{"B"}},
		module.Record{ID: "B", Dependencies: []string{"A"}},
		module.Record{ID: "D", Dependencies: []string{"A"}},
	)

	res := Resolve(c, nil)

	if len(res.Ordered) != 3 {
		t.Fatalf("Ordered = %v, want all 3 present", res.Ordered)
	}
	if got := res.Validation["D"].Cyclic; len(got) != 0 {
		t.Errorf("Cyclic(D) = %v, want empty (D only depends on a cycle)", got)
	}
	// Leftover nodes appear in cache enumeration order.
	want := []string{"A", "B", "D"}
	if !slices.Equal(res.Ordered, want) {
		t.Errorf("Ordered = %v, want %v", res.Ordered, want)
	}
}

func TestResolveMissingDependency(t *testing.T) {
	c := buildCache(
		module.Record{ID: "C", Dependencies: []string{"D"}},
	)

	res := Resolve(c, nil)

	if !slices.Equal(res.Ordered, []string{"C"}) {
		t.Errorf("Ordered = %v, want [C]", res.Ordered)
	}
	if got := res.Validation["C"].Missing; !slices.Equal(got, []string{"D"}) {
		t.Errorf("Missing(C) = %v, want [D]", got)
	}
}

func TestResolveMissingEdgeDoesNotBlockSort(t *testing.T) {
	c := buildCache(
		module.Record{ID: "A", Dependencies: []string{"Ghost"}},
		module.Record{ID: "B", Dependencies: []string{"A"}},
	)

	res := Resolve(c, nil)
	want := []string{"A", "B"}
	if !slices.Equal(res.Ordered, want) {
		t.Errorf("Ordered = %v, want %v", res.Ordered, want)
	}
}

func TestResolveEmptyCache(t *testing.T) {
	res := Resolve(module.NewCache(), nil)
	if len(res.Ordered) != 0 || len(res.Validation) != 0 {
		t.Errorf("Resolve(empty) = %+v, want empty result", res)
	}
}

func TestApplyMergesValidationIntoCache(t *testing.T) {
	c := buildCache(
		module.Record{ID: "A", Dependencies: []string{"B"}},
		module.Record{ID: "B", Dependencies: []string{"A"}},
	)

	Apply(c, nil)

	rec, _ := c.Lookup("A")
	if !slices.Equal(rec.Invalid.Cyclic, []string{"B"}) {
		t.Errorf("cache Invalid.Cyclic(A) = %v, want [B]", rec.Invalid.Cyclic)
	}
}

func TestApplyOverwritesPreviousFindings(t *testing.T) {
	c := module.NewCache()
	c.Rebuild([]module.Record{
		{ID: "A", Dependencies: []string{"B"}},
		{ID: "B", Dependencies: []string{"A"}},
	})
	Apply(c, nil)

	// Fix the cycle and re-resolve: old findings must disappear.
	c.Rebuild([]module.Record{
		{ID: "A"},
		{ID: "B", Dependencies: []string{"A"}},
	})
	Apply(c, nil)

	rec, _ := c.Lookup("A")
	if !rec.Invalid.IsClean() {
		t.Errorf("Invalid(A) after fix = %+v, want clean", rec.Invalid)
	}
}

func TestValidationForUnknownIsEmpty(t *testing.T) {
	c := buildCache(module.Record{ID: "A"})

	v := ValidationFor(c, "Unknown")
	if v.Cyclic == nil || v.Missing == nil {
		t.Error("ValidationFor(unknown) returned nil slices, want empty")
	}
	if len(v.Cyclic) != 0 || len(v.Missing) != 0 {
		t.Errorf("ValidationFor(unknown) = %+v, want empty", v)
	}
}

func TestValidationForByExternalID(t *testing.T) {
	c := buildCache(
		module.Record{ID: "Mod.One", ExternalID: "One", Dependencies: []string{"Ghost"}},
	)
	Apply(c, nil)

	v := ValidationFor(c, "One")
	if !slices.Equal(v.Missing, []string{"Ghost"}) {
		t.Errorf("ValidationFor(One).Missing = %v, want [Ghost]", v.Missing)
	}
}

func TestResolveIdempotentAcrossRebuilds(t *testing.T) {
	records := []module.Record{
		{ID: "Native"},
		{ID: "MyMod", Dependencies: []string{"Native", "Ghost"}},
	}
	c := module.NewCache()

	c.Rebuild(records)
	first := Resolve(c, nil)
	c.Rebuild(records)
	second := Resolve(c, nil)

	if !slices.Equal(first.Ordered, second.Ordered) {
		t.Errorf("Ordered differs across identical rebuilds: %v vs %v", first.Ordered, second.Ordered)
	}
	if !slices.Equal(first.Validation["MyMod"].Missing, second.Validation["MyMod"].Missing) {
		t.Error("Validation differs across identical rebuilds")
	}
}
