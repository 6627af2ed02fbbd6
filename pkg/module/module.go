// Package module defines the core data model for game modules and the
// process-wide module cache.
//
// A [Record] is one parsed submodule manifest. The [Cache] maps module id to
// record and is rebuilt wholesale on every refresh with build-then-swap
// semantics, so readers never observe a partially rebuilt state.
package module

import "slices"

// Official module ids shipped with the base game. These are always expected
// to be present in a healthy installation; a missing official module subtree
// is surfaced as a "reinstall the game" condition rather than a generic scan
// failure.
const (
	OfficialNative       = "Native"
	OfficialSandBox      = "SandBox"
	OfficialSandBoxCore  = "SandBoxCore"
	OfficialStoryMode    = "StoryMode"
	OfficialCustomBattle = "CustomBattle"
)

// OfficialModules lists the module ids shipped with the base game.
var OfficialModules = []string{
	OfficialNative,
	OfficialSandBox,
	OfficialSandBoxCore,
	OfficialStoryMode,
	OfficialCustomBattle,
}

// IsOfficial reports whether id names a module shipped with the base game.
// The comparison is case-insensitive because module directories on disk do
// not reliably match the manifest-declared casing.
func IsOfficial(id string) bool {
	for _, o := range OfficialModules {
		if equalFold(o, id) {
			return true
		}
	}
	return false
}

// equalFold is an allocation-free ASCII case-insensitive comparison.
// Module ids are ASCII by convention.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Validation records the unsatisfiable dependency edges found for a module
// during graph resolution. It is overwritten on every resolution pass, never
// accumulated. Empty slices mean the module's dependencies are satisfiable.
type Validation struct {
	// Cyclic lists the ids of all other modules participating in this
	// module's dependency cycle, if any.
	Cyclic []string `json:"cyclic"`

	// Missing lists declared dependency ids that do not correspond to any
	// module in the current cache.
	Missing []string `json:"missing"`
}

// IsClean reports whether the module has no recorded dependency problems.
func (v Validation) IsClean() bool {
	return len(v.Cyclic) == 0 && len(v.Missing) == 0
}

// clone returns a deep copy so cache readers cannot mutate shared state.
func (v Validation) clone() Validation {
	return Validation{
		Cyclic:  slices.Clone(v.Cyclic),
		Missing: slices.Clone(v.Missing),
	}
}

// Record is one parsed submodule manifest.
type Record struct {
	// ID is the manifest-declared module identifier, the primary key of
	// the cache.
	ID string `json:"id"`

	// ExternalID is the identifier the host's persisted load order uses
	// for this module (the module's directory name). Empty means it equals
	// ID.
	ExternalID string `json:"external_id,omitempty"`

	// Name is the human-readable module name, if declared.
	Name string `json:"name,omitempty"`

	// Version is the manifest-declared version string, if any.
	Version string `json:"version,omitempty"`

	// Official marks modules shipped with the base game.
	Official bool `json:"official,omitempty"`

	// Selected is the manifest-declared default-enabled flag.
	Selected bool `json:"selected,omitempty"`

	// Dependencies lists the module ids this module must load after, in
	// declaration order.
	Dependencies []string `json:"dependencies,omitempty"`

	// Path is the manifest file this record was parsed from.
	Path string `json:"path,omitempty"`

	// Invalid holds the result of the most recent resolution pass.
	Invalid Validation `json:"invalid"`
}

// EffectiveExternalID returns ExternalID if set, otherwise ID.
// The host's load order indexes modules by this value.
func (r Record) EffectiveExternalID() string {
	if r.ExternalID != "" {
		return r.ExternalID
	}
	return r.ID
}

// clone returns a deep copy of the record.
func (r Record) clone() Record {
	out := r
	out.Dependencies = slices.Clone(r.Dependencies)
	out.Invalid = r.Invalid.clone()
	return out
}
