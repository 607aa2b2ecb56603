package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/soundchunk/internal/config"
	"github.com/matzehuels/soundchunk/pkg/buildinfo"
	"github.com/matzehuels/soundchunk/pkg/cache"
	"github.com/matzehuels/soundchunk/pkg/layout"
	"github.com/matzehuels/soundchunk/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "soundchunk"
)

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
	Config *config.Config

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger and default config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (not logs). Used by tests.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Soundchunk edits signal graphs of audio nodes",
		Long: `Soundchunk projects signal graphs (generators, modifiers and outputs joined by
edges) onto a node canvas, lays them out with Graphviz and keeps the graph
owner in sync with every connect and remove gesture.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true, // main reports errors with PrintError
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $SOUNDCHUNK_CONFIG, ./soundchunk.toml, ~/.config/soundchunk/config.toml)")

	// Register all subcommands
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.projectCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backends
// =============================================================================

// newCache opens the layout cache selected by the config.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Kind {
	case config.CacheNull:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisURL, "")
	}
	dir, err := c.layoutCacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newSolver returns the Graphviz solver tuned by the config, wrapped in the
// layout cache. The returned cache must be closed by the caller.
func (c *CLI) newSolver(ctx context.Context, noCache bool) (layout.Solver, cache.Cache, error) {
	gv := &layout.Graphviz{NodeSep: c.Config.Layout.NodeSep, RankSep: c.Config.Layout.RankSep}
	lc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	return layout.NewCached(gv, lc,
		layout.WithKeyer(c.keyer()),
		layout.WithTTL(c.Config.Cache.TTL.Duration)), lc, nil
}

// keyer scopes cache keys by the configured prefix, so several installs can
// share one cache.
func (c *CLI) keyer() cache.Keyer {
	if c.Config.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Config.Cache.Prefix)
}

// newStore opens the graph store selected by the config.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	sc := c.Config.Store
	switch sc.Kind {
	case config.StoreRedis:
		return store.NewRedis(ctx, sc.RedisURL, sc.Prefix)
	case config.StoreMongo:
		return store.NewMongo(ctx, sc.MongoURI, sc.Database)
	default:
		return store.NewMemory(), nil
	}
}

// defaultDirection is the configured layout direction.
func (c *CLI) defaultDirection() layout.Direction {
	dir, err := layout.ParseDirection(c.Config.Layout.Direction)
	if err != nil {
		return layout.TopBottom
	}
	return dir
}

// =============================================================================
// Paths
// =============================================================================

// layoutCacheDir returns the configured cache directory, falling back to the XDG
// default.
func (c *CLI) layoutCacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/soundchunk/).
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
