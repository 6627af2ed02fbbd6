package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/modstack/modstack/pkg/errors"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	modDir := filepath.Join(t.TempDir(), dir)
	if err := os.MkdirAll(modDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(modDir, FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFullManifest(t *testing.T) {
	path := writeManifest(t, "MyMod", `<Module>
	<Id value="MyMod"/>
	<Name value="My Mod"/>
	<Version value="v1.2.0"/>
	<DefaultModule value="true"/>
	<DependedModules>
		<DependedModule Id="Native"/>
		<DependedModule Id="SandBox"/>
	</DependedModules>
</Module>`)

	rec, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec == nil {
		t.Fatal("Parse() = nil record, want record")
	}
	if rec.ID != "MyMod" {
		t.Errorf("ID = %q, want MyMod", rec.ID)
	}
	if rec.Name != "My Mod" {
		t.Errorf("Name = %q, want My Mod", rec.Name)
	}
	if !rec.Selected {
		t.Error("Selected = false, want true")
	}
	if rec.ExternalID != "MyMod" {
		t.Errorf("ExternalID = %q, want directory name MyMod", rec.ExternalID)
	}
	want := []string{"Native", "SandBox"}
	if !slices.Equal(rec.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", rec.Dependencies, want)
	}
}

func TestParseWhitespaceInsensitive(t *testing.T) {
	compact := writeManifest(t, "A", `<Module><Id value="Mod"/><DependedModules><DependedModule Id="Native"/></DependedModules></Module>`)
	sprawling := writeManifest(t, "B", `<Module>

		<Id   value="Mod" />

		<DependedModules>
			<DependedModule
				Id="Native" />
		</DependedModules>
</Module>`)

	a, err := Parse(compact)
	if err != nil {
		t.Fatalf("Parse(compact) error = %v", err)
	}
	b, err := Parse(sprawling)
	if err != nil {
		t.Fatalf("Parse(sprawling) error = %v", err)
	}
	if a.ID != b.ID || !slices.Equal(a.Dependencies, b.Dependencies) {
		t.Errorf("formatting changed extraction: %+v vs %+v", a, b)
	}
}

func TestParseValueAttributeDependencies(t *testing.T) {
	path := writeManifest(t, "Legacy", `<Module>
	<Id value="Legacy"/>
	<DependedModules>
		<DependedModule value="Native"/>
	</DependedModules>
</Module>`)

	rec, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !slices.Equal(rec.Dependencies, []string{"Native"}) {
		t.Errorf("Dependencies = %v, want [Native]", rec.Dependencies)
	}
}

func TestParseNoIDYieldsNoRecord(t *testing.T) {
	path := writeManifest(t, "Empty", `<Module><Name value="No id here"/></Module>`)

	rec, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if rec != nil {
		t.Errorf("Parse() = %+v, want nil record", rec)
	}
}

func TestParseMalformedIsParseInvalid(t *testing.T) {
	path := writeManifest(t, "Broken", `<Module><Id value="X"`)

	_, err := Parse(path)
	if !errors.Is(err, errors.ErrCodeParseInvalid) {
		t.Errorf("Parse() error = %v, want PARSE_INVALID", err)
	}
}

func TestParseOfficialDetection(t *testing.T) {
	path := writeManifest(t, "Native", `<Module><Id value="Native"/></Module>`)

	rec, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !rec.Official {
		t.Error("Official = false, want true for Native")
	}
}

func TestParseDropsSelfAndDuplicateDependencies(t *testing.T) {
	path := writeManifest(t, "SelfRef", `<Module>
	<Id value="SelfRef"/>
	<DependedModules>
		<DependedModule Id="SelfRef"/>
		<DependedModule Id="Native"/>
		<DependedModule Id="Native"/>
	</DependedModules>
</Module>`)

	rec, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !slices.Equal(rec.Dependencies, []string{"Native"}) {
		t.Errorf("Dependencies = %v, want [Native]", rec.Dependencies)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"SubModule.xml", true},
		{"submodule.xml", true},
		{"SUBMODULE.XML", true},
		{"SubModule.xml.bak", false},
		{"Module.xml", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.name); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
