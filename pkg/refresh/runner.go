// Package refresh orchestrates the scan, parse, resolve, and reconcile steps
// triggered by host lifecycle events.
//
// The host invokes refreshes sequentially on event callbacks (setup, deploy
// completed, profile activated). A refresh for a profile other than the
// active one is discarded, so a stale event can never corrupt the cache of
// the profile the user switched to.
package refresh

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/modstack/modstack/pkg/cache"
	apperrors "github.com/modstack/modstack/pkg/errors"
	"github.com/modstack/modstack/pkg/launcher"
	"github.com/modstack/modstack/pkg/loadorder"
	"github.com/modstack/modstack/pkg/manifest"
	"github.com/modstack/modstack/pkg/module"
	"github.com/modstack/modstack/pkg/observability"
	"github.com/modstack/modstack/pkg/resolve"
	"github.com/modstack/modstack/pkg/scan"
)

// Event identifies which host lifecycle callback triggered a refresh.
type Event string

const (
	// EventSetup is the first refresh after the installation is configured.
	EventSetup Event = "setup"

	// EventDeploy follows a completed mod deployment.
	EventDeploy Event = "deploy"

	// EventProfileActivate follows a profile switch.
	EventProfileActivate Event = "profile-activate"
)

// Request describes one refresh trigger.
type Request struct {
	// Event is the lifecycle callback that fired.
	Event Event

	// Profile is the profile the event was raised for. Must match the
	// runner's active profile or the refresh is discarded.
	Profile loadorder.Profile

	// GamePath is the installation root containing the module tree.
	GamePath string

	// Force bypasses the scan snapshot cache.
	Force bool
}

// Result is the outcome of one refresh.
type Result struct {
	// Skipped is true when the request targeted an inactive profile and
	// was discarded without touching any state.
	Skipped bool

	// FromCache is true when the module records came from a scan snapshot
	// instead of a fresh walk.
	FromCache bool

	// Ordered is the resolved load sequence of primary module ids.
	Ordered []string

	// Validation maps module id to its cyclic/missing findings.
	Validation map[string]module.Validation
}

// Runner coordinates refreshes against a module cache and load-order store.
// Hosts invoke it sequentially; the runner itself only guards its profile
// and preferences state.
type Runner struct {
	Snapshots *cache.Snapshots
	Modules   *module.Cache
	Store     loadorder.Store
	Logger    *log.Logger

	// Template renders launch parameters from the reconciled sequence.
	Template launcher.Template

	mu     sync.Mutex
	active loadorder.Profile
	prefs  *launcher.Preferences
}

// NewRunner creates a runner.
// If c is nil, snapshot caching is disabled.
// If store is nil, an in-memory store is used.
// If logger is nil, the default logger is used.
func NewRunner(c cache.Cache, modules *module.Cache, store loadorder.Store, logger *log.Logger) *Runner {
	if modules == nil {
		modules = module.NewCache()
	}
	if store == nil {
		store = loadorder.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Snapshots: cache.NewSnapshots(c),
		Modules:   modules,
		Store:     store,
		Logger:    logger,
		Template:  launcher.DefaultTemplate(),
	}
}

// SetActiveProfile sets the profile refreshes are accepted for.
func (r *Runner) SetActiveProfile(p loadorder.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = p
}

// ActiveProfile returns the currently active profile.
func (r *Runner) ActiveProfile() loadorder.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// LoadPreferences reads the launcher preferences file under the installation
// root and keeps it for reconciliation fallback. A missing file is not an
// error; it simply leaves no fallback.
func (r *Runner) LoadPreferences(gamePath string) error {
	path := filepath.Join(gamePath, launcher.PreferencesFileName)
	prefs, err := launcher.ReadPreferences(path)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotFoundPreferences) {
			r.Logger.Debug("no launcher preferences found", "path", path)
			return nil
		}
		return err
	}

	r.mu.Lock()
	r.prefs = prefs
	r.mu.Unlock()
	return nil
}

// Refresh rebuilds the module cache and recomputes the dependency ordering
// for one lifecycle event.
//
// Policy by event:
//   - Any event for an inactive profile is a no-op.
//   - A structurally incomplete discovery (no installation path, missing
//     module tree) aborts before any cache mutation.
//   - Setup scans first and only clears the cache when the scan fails.
//   - Deploy and profile activation clear first, then repopulate
//     best-effort; a failed scan leaves the cache empty rather than stale.
//   - A cancelled walk completes with an empty result set, not an error.
func (r *Runner) Refresh(ctx context.Context, req Request) (*Result, error) {
	active := r.ActiveProfile()
	if req.Profile.ID != active.ID {
		r.Logger.Debug("discarding refresh for inactive profile",
			"event", req.Event,
			"profile", req.Profile.ID,
			"active", active.ID)
		return &Result{Skipped: true}, nil
	}

	if req.GamePath == "" {
		return nil, apperrors.New(apperrors.ErrCodeDiscoveryIncomplete,
			"no installation path configured")
	}
	root := scan.Root(req.GamePath)

	clearFirst := req.Event != EventSetup
	if clearFirst {
		// Discovery must be verified before the destructive clear so an
		// incomplete setup never wipes a healthy cache.
		if _, err := os.Stat(root); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeDiscoveryIncomplete, err,
				"module tree not found: %s", root)
		}
		r.Modules.Clear()
	}

	records, fromCache, err := r.loadRecords(ctx, root, req.Force)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeDiscoveryIncomplete) {
			return nil, err
		}
		r.Modules.Clear()
		return nil, err
	}

	r.Modules.Rebuild(records)

	hint, err := r.Store.Get(ctx, req.Profile.ID)
	if err != nil {
		r.Logger.Warn("load order unavailable, resolving without hint",
			"profile", req.Profile.ID, "err", err)
		hint = nil
	}

	start := time.Now()
	observability.Refresh().OnResolveStart(ctx, r.Modules.Len())
	res := resolve.Apply(r.Modules, hint)
	cyclic, missing := 0, 0
	for _, v := range res.Validation {
		if len(v.Cyclic) > 0 {
			cyclic++
		}
		if len(v.Missing) > 0 {
			missing++
		}
	}
	observability.Refresh().OnResolveComplete(ctx, cyclic, missing, time.Since(start))

	r.Logger.Info("refresh complete",
		"event", req.Event,
		"modules", len(res.Ordered),
		"cyclic", cyclic,
		"missing", missing,
		"cached", fromCache)

	return &Result{
		FromCache:  fromCache,
		Ordered:    res.Ordered,
		Validation: res.Validation,
	}, nil
}

// LaunchParams reconciles the persisted load order against the module cache
// and renders the final launch parameter string.
func (r *Runner) LaunchParams(ctx context.Context, profileID, gameMode string) (string, error) {
	if err := apperrors.ValidateGameMode(gameMode); err != nil {
		return "", err
	}

	order, err := r.Store.Get(ctx, profileID)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	prefs := r.prefs
	r.mu.Unlock()

	seq := loadorder.Reconcile(r.Modules, order, prefs)
	dropped := 0
	if len(order) > 0 {
		dropped = len(order.EnabledSequence()) - len(seq)
	}
	observability.Refresh().OnReconcile(ctx, len(seq), dropped)

	return r.Template.Render(gameMode, seq), nil
}

// loadRecords produces the module records for one refresh, from the scan
// snapshot cache when possible, otherwise from a fresh walk and parse.
//
// A manifest that fails to parse fails the whole pass: the error propagates
// and no snapshot is written, so a partial record set never becomes
// authoritative. Only manifests that parse but carry no module id are
// skipped.
func (r *Runner) loadRecords(ctx context.Context, root string, force bool) ([]module.Record, bool, error) {
	if !force {
		if records, hit, err := r.Snapshots.Load(ctx, root, manifest.FileName); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "scan")
			return records, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "scan")
	}

	start := time.Now()
	observability.Refresh().OnScanStart(ctx, root)
	paths, err := scan.Manifests(ctx, root)
	if err != nil {
		observability.Refresh().OnScanComplete(ctx, root, 0, time.Since(start), err)
		return nil, false, err
	}

	records := make([]module.Record, 0, len(paths))
	for _, p := range paths {
		rec, err := manifest.Parse(p)
		if err != nil {
			observability.Refresh().OnScanComplete(ctx, root, 0, time.Since(start), err)
			return nil, false, err
		}
		if rec == nil {
			r.Logger.Debug("skipping manifest without module id", "path", p)
			continue
		}
		records = append(records, *rec)
	}
	observability.Refresh().OnScanComplete(ctx, root, len(records), time.Since(start), nil)

	if size, err := r.Snapshots.Save(ctx, root, manifest.FileName, records); err == nil {
		observability.Cache().OnCacheSet(ctx, "scan", size)
	}

	return records, false, nil
}

// InvalidateSnapshot drops the cached scan snapshot for an installation.
func (r *Runner) InvalidateSnapshot(ctx context.Context, gamePath string) error {
	return r.Snapshots.Delete(ctx, scan.Root(gamePath), manifest.FileName)
}
