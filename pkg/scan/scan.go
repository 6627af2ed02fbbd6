// Package scan discovers submodule manifest files under a game's module
// tree.
//
// The scanner walks the Modules directory recursively and collects every
// file whose base name matches the manifest file name, case-insensitively.
// Failure classification follows the refresh policy: a missing root is a
// discovery problem (the caller should already have validated game
// discovery), a missing official module subtree means the installation is
// damaged, and a user-cancelled walk resolves to an empty result rather than
// an error.
package scan

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/modstack/modstack/pkg/errors"
	"github.com/modstack/modstack/pkg/manifest"
	"github.com/modstack/modstack/pkg/module"
)

// ModulesDir is the fixed directory under the game installation that holds
// all modules.
const ModulesDir = "Modules"

// Root returns the module tree root for a game installation path.
func Root(gamePath string) string {
	return filepath.Join(gamePath, ModulesDir)
}

// Manifests walks root recursively and returns the paths of all manifest
// files found, in walk order.
//
// Error behavior:
//   - DISCOVERY_INCOMPLETE when root itself does not exist
//   - OFFICIAL_FILES_MISSING when a missing path names an official module
//   - SCAN_FAILURE for any other walk error
//   - cancellation via ctx resolves to (nil, nil): callers cannot
//     distinguish "no modules" from "cancelled" and must treat both the same
func Manifests(ctx context.Context, root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeDiscoveryIncomplete, err, "module directory %s does not exist", root)
		}
		return nil, errors.Wrap(errors.ErrCodeScanFailure, err, "stat %s", root)
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return errors.Wrap(errors.ErrCodeUserCancelled, cerr, "walk interrupted at %s", path)
		}
		if err != nil {
			return classifyWalkError(path, err)
		}
		if !d.IsDir() && manifest.Matches(d.Name()) {
			found = append(found, path)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, errors.ErrCodeUserCancelled) {
			// User-interrupted walk: resolve to empty, never an error.
			return nil, nil
		}
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeScanFailure, err, "walk %s", root)
	}
	return found, nil
}

// classifyWalkError distinguishes a damaged installation from a generic walk
// failure. A not-found error for a path whose missing component names an
// official module means required game files are absent.
func classifyWalkError(path string, err error) error {
	if stderrors.Is(err, fs.ErrNotExist) && hasOfficialComponent(path) {
		return errors.Wrap(errors.ErrCodeOfficialFilesMissing, err,
			"official module files missing at %s, reinstall the game", path)
	}
	return errors.Wrap(errors.ErrCodeScanFailure, err, "walk %s", path)
}

// hasOfficialComponent reports whether any path component names an official
// module directory.
func hasOfficialComponent(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if module.IsOfficial(part) {
			return true
		}
	}
	return false
}
