package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/modstack/modstack/pkg/buildinfo"
	"github.com/modstack/modstack/pkg/cache"
	apperrors "github.com/modstack/modstack/pkg/errors"
	"github.com/modstack/modstack/pkg/loadorder"
	"github.com/modstack/modstack/pkg/module"
	"github.com/modstack/modstack/pkg/refresh"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "modstack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flag values, bound in RootCommand.
	configPath string
	gamePath   string
	profile    string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "modstack",
		Short:        "Modstack resolves mod load orders from module manifests",
		Long:         `Modstack scans a game installation for module manifests, resolves the dependency graph into a deterministic load order, and produces the launch parameters the game expects.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := withLogger(cmd.Context(), c.Logger)
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/modstack/config.toml)")
	root.PersistentFlags().StringVar(&c.gamePath, "game-path", "", "game installation root (overrides config)")
	root.PersistentFlags().StringVar(&c.profile, "profile", "", "profile name (overrides config)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the scan snapshot cache")

	// Register all subcommands
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.paramsCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadEnv resolves the effective config, applying flag overrides.
func (c *CLI) loadEnv() (Config, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.gamePath != "" {
		cfg.GamePath = c.gamePath
	}
	if c.profile != "" {
		cfg.Profile = c.profile
	}
	if c.noCache {
		cfg.Cache.Backend = "none"
	}
	return cfg, nil
}

// newRunner creates a refresh runner for CLI use, wired to the configured
// cache backend and a file-backed load-order store.
func (c *CLI) newRunner(ctx context.Context, cfg Config) (*refresh.Runner, loadorder.Profile, error) {
	byteCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, loadorder.Profile{}, err
	}

	store, err := loadorder.NewFileStore("")
	if err != nil {
		c.Logger.Warn("load-order store unavailable, using memory", "err", err)
		store = nil
	}

	runner := refresh.NewRunner(byteCache, module.NewCache(), storeOrMemory(store), c.Logger)
	runner.Template = cfg.template()

	// CLI profiles are keyed by name; hosts mint ids per profile instead.
	profile := loadorder.Profile{ID: cfg.Profile, Name: cfg.Profile}
	runner.SetActiveProfile(profile)

	if cfg.GamePath != "" {
		if err := runner.LoadPreferences(cfg.GamePath); err != nil {
			c.Logger.Warn("launcher preferences unreadable", "err", err)
		}
	}

	return runner, profile, nil
}

func storeOrMemory(store *loadorder.FileStore) loadorder.Store {
	if store == nil {
		return loadorder.NewMemoryStore()
	}
	return store
}

func newCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeCacheFailure, err,
				"connect redis %s", cfg.RedisAddr)
		}
		return c, nil
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/modstack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
