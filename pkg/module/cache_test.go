package module

import (
	"slices"
	"testing"
)

func TestRebuildPreservesScanOrder(t *testing.T) {
	c := NewCache()
	c.Rebuild([]Record{{ID: "SandBox"}, {ID: "Native"}, {ID: "MyMod"}})

	want := []string{"SandBox", "Native", "MyMod"}
	if got := c.AllIDs(); !slices.Equal(got, want) {
		t.Errorf("AllIDs() = %v, want %v", got, want)
	}
}

func TestRebuildReplacesWholesale(t *testing.T) {
	c := NewCache()
	c.Rebuild([]Record{{ID: "Old"}})
	c.Rebuild([]Record{{ID: "New"}})

	if _, ok := c.Lookup("Old"); ok {
		t.Error("Lookup(Old) found record from previous generation")
	}
	if _, ok := c.Lookup("New"); !ok {
		t.Error("Lookup(New) = not found, want found")
	}
}

func TestRebuildIdempotent(t *testing.T) {
	records := []Record{
		{ID: "Native", Dependencies: []string{}},
		{ID: "MyMod", Dependencies: []string{"Native"}},
	}

	c := NewCache()
	c.Rebuild(records)
	first := c.AllIDs()
	c.Rebuild(records)
	second := c.AllIDs()

	if !slices.Equal(first, second) {
		t.Errorf("AllIDs() after identical rebuilds = %v then %v", first, second)
	}
}

func TestRebuildDropsDuplicatesAndEmptyIDs(t *testing.T) {
	c := NewCache()
	c.Rebuild([]Record{
		{ID: "Native", Version: "v1.0.0"},
		{ID: ""},
		{ID: "Native", Version: "v2.0.0"},
	})

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	r, _ := c.Lookup("Native")
	if r.Version != "v1.0.0" {
		t.Errorf("duplicate id kept %q, want first occurrence v1.0.0", r.Version)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	c := NewCache()
	c.Rebuild([]Record{{ID: "MyMod", Dependencies: []string{"Native"}}})

	r, _ := c.Lookup("MyMod")
	r.Dependencies[0] = "mutated"

	fresh, _ := c.Lookup("MyMod")
	if fresh.Dependencies[0] != "Native" {
		t.Error("mutating a Lookup result leaked into the cache")
	}
}

func TestLookupExternal(t *testing.T) {
	c := NewCache()
	c.Rebuild([]Record{
		{ID: "Bannerlord.Harmony", ExternalID: "Harmony"},
		{ID: "Native"},
	})

	if r, ok := c.LookupExternal("Harmony"); !ok || r.ID != "Bannerlord.Harmony" {
		t.Errorf("LookupExternal(Harmony) = %v, %v; want Bannerlord.Harmony, true", r.ID, ok)
	}
	// Falls back to primary id when no external id is declared.
	if _, ok := c.LookupExternal("Native"); !ok {
		t.Error("LookupExternal(Native) = not found, want found via primary id")
	}
	if _, ok := c.LookupExternal("Unknown"); ok {
		t.Error("LookupExternal(Unknown) = found, want not found")
	}
}

func TestClear(t *testing.T) {
	c := NewCache()
	c.Rebuild([]Record{{ID: "Native"}})
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if ids := c.AllIDs(); len(ids) != 0 {
		t.Errorf("AllIDs() after Clear = %v, want empty", ids)
	}
}

func TestApplyValidationOverwrites(t *testing.T) {
	c := NewCache()
	c.Rebuild([]Record{{ID: "A"}, {ID: "B"}})

	c.ApplyValidation(map[string]Validation{
		"A": {Missing: []string{"Gone"}},
	})
	a, _ := c.Lookup("A")
	if !slices.Equal(a.Invalid.Missing, []string{"Gone"}) {
		t.Errorf("Invalid.Missing = %v, want [Gone]", a.Invalid.Missing)
	}

	// A second pass with no findings must reset, not accumulate.
	c.ApplyValidation(map[string]Validation{})
	a, _ = c.Lookup("A")
	if !a.Invalid.IsClean() {
		t.Errorf("Invalid after clean pass = %+v, want clean", a.Invalid)
	}
}

func TestIsOfficial(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"Native", true},
		{"native", true},
		{"SANDBOX", true},
		{"StoryMode", true},
		{"MyMod", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsOfficial(tt.id); got != tt.want {
			t.Errorf("IsOfficial(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestEffectiveExternalID(t *testing.T) {
	r := Record{ID: "Bannerlord.Harmony", ExternalID: "Harmony"}
	if got := r.EffectiveExternalID(); got != "Harmony" {
		t.Errorf("EffectiveExternalID() = %q, want Harmony", got)
	}
	r.ExternalID = ""
	if got := r.EffectiveExternalID(); got != "Bannerlord.Harmony" {
		t.Errorf("EffectiveExternalID() = %q, want Bannerlord.Harmony", got)
	}
}
