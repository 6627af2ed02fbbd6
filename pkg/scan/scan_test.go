package scan

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modstack/modstack/pkg/errors"
)

// makeModuleTree builds Modules/<name>/SubModule.xml entries under a temp
// root and returns the root.
func makeModuleTree(t *testing.T, names map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), ModulesDir)
	for dir, fileName := range names {
		modDir := filepath.Join(root, dir)
		if err := os.MkdirAll(modDir, 0755); err != nil {
			t.Fatal(err)
		}
		if fileName == "" {
			continue
		}
		path := filepath.Join(modDir, fileName)
		if err := os.WriteFile(path, []byte(`<Module><Id value="`+dir+`"/></Module>`), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestManifestsFindsCaseInsensitive(t *testing.T) {
	root := makeModuleTree(t, map[string]string{
		"Native":  "SubModule.xml",
		"MyMod":   "submodule.xml",
		"Shouty":  "SUBMODULE.XML",
		"NoFiles": "",
		"Other":   "readme.txt",
	})

	got, err := Manifests(context.Background(), root)
	if err != nil {
		t.Fatalf("Manifests() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Manifests() found %d files %v, want 3", len(got), got)
	}
}

func TestManifestsNestedDirectories(t *testing.T) {
	root := makeModuleTree(t, map[string]string{"Native": "SubModule.xml"})
	nested := filepath.Join(root, "Native", "SubModules", "Inner")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "SubModule.xml"), []byte("<Module/>"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Manifests(context.Background(), root)
	if err != nil {
		t.Fatalf("Manifests() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Manifests() found %d files, want 2 (including nested)", len(got))
	}
}

func TestManifestsMissingRootIsDiscoveryIncomplete(t *testing.T) {
	_, err := Manifests(context.Background(), filepath.Join(t.TempDir(), "nope", ModulesDir))
	if !errors.Is(err, errors.ErrCodeDiscoveryIncomplete) {
		t.Errorf("Manifests() error = %v, want DISCOVERY_INCOMPLETE", err)
	}
}

func TestManifestsCancelledResolvesEmpty(t *testing.T) {
	root := makeModuleTree(t, map[string]string{"Native": "SubModule.xml"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Manifests(ctx, root)
	if err != nil {
		t.Fatalf("Manifests() error = %v, want nil on cancellation", err)
	}
	if len(got) != 0 {
		t.Errorf("Manifests() = %v, want empty on cancellation", got)
	}
}

func TestManifestsExpiredDeadlineResolvesEmpty(t *testing.T) {
	root := makeModuleTree(t, map[string]string{"Native": "SubModule.xml"})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	got, err := Manifests(ctx, root)
	if err != nil {
		t.Fatalf("Manifests() error = %v, want nil on expired deadline", err)
	}
	if len(got) != 0 {
		t.Errorf("Manifests() = %v, want empty on expired deadline", got)
	}
}

func TestClassifyWalkError(t *testing.T) {
	notExist := fs.ErrNotExist

	err := classifyWalkError(filepath.Join("Modules", "Native", "SubModule.xml"), notExist)
	if !errors.Is(err, errors.ErrCodeOfficialFilesMissing) {
		t.Errorf("classifyWalkError(official path) = %v, want OFFICIAL_FILES_MISSING", err)
	}

	err = classifyWalkError(filepath.Join("Modules", "SomeMod", "SubModule.xml"), notExist)
	if !errors.Is(err, errors.ErrCodeScanFailure) {
		t.Errorf("classifyWalkError(mod path) = %v, want SCAN_FAILURE", err)
	}

	err = classifyWalkError(filepath.Join("Modules", "Native"), stderrors.New("permission denied"))
	if !errors.Is(err, errors.ErrCodeScanFailure) {
		t.Errorf("classifyWalkError(non-ENOENT) = %v, want SCAN_FAILURE", err)
	}
}

func TestRoot(t *testing.T) {
	got := Root(filepath.Join("steam", "Bannerlord"))
	want := filepath.Join("steam", "Bannerlord", "Modules")
	if got != want {
		t.Errorf("Root() = %q, want %q", got, want)
	}
}
