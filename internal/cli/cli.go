// Package cli implements the coursemap command-line interface.
//
// The CLI reads a course catalog, lays out the curriculum graph of a
// department, and tracks the course statuses of one student at a time. Every
// status change goes through the prerequisite gate, so a course can only be
// marked in progress or passed once its prerequisites are passed.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP API
//   - layout: Print the semester grid of a department
//   - check: Dry-run a status change and list unmet prerequisites
//   - status: Set or list the statuses of a student
//   - credits: Show progress toward the graduation credit targets
//   - render: Write the curriculum graph as DOT or SVG
//   - plan: Interactive planner in the terminal
//   - cache: Manage the layout and render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coursemap/internal/config"
	"github.com/matzehuels/coursemap/pkg/buildinfo"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "coursemap"

	// envStudent names the variable holding the default student id.
	envStudent = "COURSEMAP_STUDENT"

	// defaultStudent is used when neither --student nor COURSEMAP_STUDENT is set.
	defaultStudent = "local"
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

	configPath string
	student    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Coursemap lays out a curriculum and checks prerequisites",
		Long: `Coursemap turns a course catalog into a semester-by-semester prerequisite
graph, tracks each student's course statuses, and refuses status changes whose
prerequisites have not been passed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml or .yaml; default $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringVarP(&c.student, "student", "s", "", "student id (default $"+envStudent+" or \""+defaultStudent+"\")")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.creditsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates a pipeline runner from the configuration.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	c.Logger.Debug("configuration", "backends", cfg.Describe())

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	installHooks(c.Logger)
	return pipeline.NewRunner(b.source, b.records, b.cache, nil, c.Logger, cfg.PipelineOptions()), cfg, nil
}

// loadSnapshot loads the catalog behind a spinner.
func (c *CLI) loadSnapshot(ctx context.Context, runner *pipeline.Runner) (*pipeline.Snapshot, error) {
	prog := newProgress(c.Logger)
	snap, err := spin(ctx, "Loading catalog...", func() (*pipeline.Snapshot, error) {
		return runner.LoadGraph(ctx)
	})
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d courses from %s", snap.Graph.NodeCount(), snap.Source))
	return snap, nil
}

// studentID resolves the student of the current invocation.
func (c *CLI) studentID() (string, error) {
	id := c.student
	if id == "" {
		id = os.Getenv(envStudent)
	}
	if id == "" {
		id = defaultStudent
	}
	if err := errors.ValidateStudentID(id); err != nil {
		return "", err
	}
	return id, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/coursemap/).
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
