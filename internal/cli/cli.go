package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/converge/pkg/buildinfo"
	"github.com/matzehuels/converge/pkg/cache"
	"github.com/matzehuels/converge/pkg/integrations"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "converge"

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
	Logger  *log.Logger
	verbose bool
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
		Short: "Converge checks Maven dependency trees for version convergence",
		Long: `Converge walks a resolved Maven dependency tree and reports every artifact
that appears with more than one version, with the path to each occurrence.
Include and exclude patterns (groupId:artifactId, * as wildcard) restrict
which artifacts must converge.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache
// =============================================================================

// newCache opens the POM cache: nothing with noCache, Redis for a redis://
// url, otherwise the file cache under [cacheDir].
func newCache(noCache bool, url string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return integrations.NewCache(url)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/converge/).
func cacheDir() (string, error) {
	return integrations.DefaultCacheDir()
}
