package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/cache"
	"github.com/matzehuels/converge/pkg/config"
	"github.com/matzehuels/converge/pkg/convergence"
	"github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/integrations"
	"github.com/matzehuels/converge/pkg/integrations/maven"
	cio "github.com/matzehuels/converge/pkg/io"
	"github.com/matzehuels/converge/pkg/observability"
	"github.com/matzehuels/converge/pkg/render/dot"
	"github.com/matzehuels/converge/pkg/resolve"
	"github.com/matzehuels/converge/pkg/tree"
)

// Output formats for the check command.
const (
	formatText = "text"
	formatJSON = "json"
)

// sourceOpts are the flags shared by every command that obtains a tree.
type sourceOpts struct {
	configPath string
	artifact   string
	maxDepth   int
	scopes     []string
	repository string
	refresh    bool
	noCache    bool
}

func (o *sourceOpts) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "rule file (default: .converge.toml/.yaml found upward from the working directory)")
	f.StringVar(&o.artifact, "artifact", "", "resolve a remote artifact (group:artifact:version) instead of reading a file")
	f.IntVar(&o.maxDepth, "max-depth", 0, "maximum resolution depth (default 20)")
	f.StringSliceVar(&o.scopes, "scope", nil, "dependency scopes kept at the root (default compile,runtime)")
	f.StringVar(&o.repository, "repository", "", "Maven repository URL (default Maven Central)")
	f.BoolVar(&o.refresh, "refresh", false, "bypass cached POMs and trees and refetch")
	f.BoolVar(&o.noCache, "no-cache", false, "disable the POM and tree cache")
}

// apply overrides cfg with the flags the user set explicitly.
func (o *sourceOpts) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("max-depth") {
		cfg.Resolve.MaxDepth = o.maxDepth
	}
	if f.Changed("scope") {
		cfg.Resolve.Scopes = o.scopes
	}
	if f.Changed("repository") {
		cfg.Resolve.Repository = o.repository
	}
}

// loadConfig loads the rule file and applies flag overrides.
func (o *sourceOpts) loadConfig(cmd *cobra.Command, override func(*config.Config)) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.LoadOrDefault(o.configPath, wd)
	if err != nil {
		return nil, err
	}
	o.apply(cmd, cfg)
	if override != nil {
		override(cfg)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p := cfg.Path(); p != "" {
		loggerFromContext(cmd.Context()).Debug("Loaded rules", "path", p)
	}
	return cfg, nil
}

// checkOpts holds the flags of the check command.
type checkOpts struct {
	sourceOpts
	excludes       []string
	includes       []string
	uniqueVersions bool
	warnOnly       bool
	format         string
	graph          string
	full           bool
	metricsFile    string
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check [pom.xml|tree.json|tree.txt]",
		Short: "Check a dependency tree for version convergence",
		Long: `Check reads a dependency tree and reports every artifact that appears with
more than one version.

The input is a pom.xml (resolved against the Maven repository), a JSON tree
written by "converge tree --json", or the text output of "mvn dependency:tree".
With no argument, ./pom.xml is used.

Patterns are groupId[:artifactId[:version]] with * as a wildcard.
Excluded artifacts are never checked; when includes are given, only matching
artifacts are checked.`,
		Example: `  # Check the project in the working directory
  converge check

  # Check mvn output, ignoring one group
  mvn dependency:tree -DoutputFile=tree.txt && converge check tree.txt --exclude org.slf4j

  # Write the conflict paths as a graph
  converge check --graph conflicts.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatText && opts.format != formatJSON {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want text or json)", opts.format)
			}
			return runCheck(cmd, args, &opts)
		},
	}

	opts.register(cmd)
	f := cmd.Flags()
	f.StringSliceVarP(&opts.excludes, "exclude", "e", nil, "artifact patterns exempt from the check (repeatable)")
	f.StringSliceVarP(&opts.includes, "include", "i", nil, "only check artifacts matching these patterns (repeatable)")
	f.BoolVar(&opts.uniqueVersions, "unique-versions", false, "treat any repeated artifact as a conflict")
	f.BoolVar(&opts.warnOnly, "warn-only", false, "report conflicts without failing")
	f.StringVarP(&opts.format, "format", "f", formatText, "output format: text or json")
	f.StringVarP(&opts.graph, "graph", "g", "", "write the conflict paths as a graph (.dot, .svg or .png)")
	f.BoolVar(&opts.full, "full", false, "draw the whole tree in --graph, not only conflict paths")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := opts.loadConfig(cmd, func(cfg *config.Config) {
		f := cmd.Flags()
		if f.Changed("exclude") {
			cfg.Excludes = opts.excludes
		}
		if f.Changed("include") {
			cfg.Includes = opts.includes
		}
		if f.Changed("unique-versions") {
			cfg.UniqueVersions = opts.uniqueVersions
		}
		if f.Changed("warn-only") {
			fail := !opts.warnOnly
			cfg.Fail = &fail
		}
	})
	if err != nil {
		return err
	}

	if opts.metricsFile != "" {
		hooks := observability.NewPrometheusHooks()
		observability.SetCheckHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
		defer func() {
			if werr := hooks.WriteTextfile(opts.metricsFile); werr != nil {
				logger.Error("Failed to write metrics", "path", opts.metricsFile, "error", werr)
			} else {
				logger.Debug("Wrote metrics", "path", opts.metricsFile)
			}
		}()
	}

	t, err := loadTree(ctx, args, &opts.sourceOpts, cfg)
	if err != nil {
		return err
	}

	enforcer := convergence.Enforcer{Logger: logger, Fail: cfg.FailOnViolation()}
	prog := newProgress(logger)
	res, checkErr := enforcer.Enforce(ctx, t, cfg.CheckOptions())
	if res == nil {
		return checkErr
	}
	prog.done(fmt.Sprintf("Checked %d nodes, %d conflicts", res.Nodes, len(res.Conflicts)))

	if opts.graph != "" {
		if err := writeGraph(ctx, t, res.Conflicts, opts.graph, opts.full); err != nil {
			return err
		}
	}

	switch opts.format {
	case formatJSON:
		if err := res.WriteJSON(stdout); err != nil {
			return err
		}
	default:
		printCheckResult(res, cfg.FailOnViolation())
		if opts.graph != "" {
			printFile(opts.graph)
		}
	}
	return checkErr
}

// loadTree obtains the tree to check: resolved from a POM or an --artifact
// coordinate, or imported from a JSON or dependency:tree file.
func loadTree(ctx context.Context, args []string, opts *sourceOpts, cfg *config.Config) (*tree.Tree, error) {
	logger := loggerFromContext(ctx)

	if opts.artifact != "" {
		if len(args) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "--artifact and an input file are mutually exclusive")
		}
		coord, err := artifact.Parse(opts.artifact)
		if err != nil {
			return nil, err
		}
		return resolveTree(ctx, opts, cfg, coord.String(), func(r *resolve.Resolver, ro resolve.Options) (*tree.Tree, error) {
			return r.Resolve(ctx, coord, ro)
		})
	}

	path := "pom.xml"
	if len(args) > 0 {
		path = args[0]
	}
	format, err := cio.Sniff(path)
	if err != nil {
		return nil, err
	}
	if format != cio.FormatPOM {
		t, err := cio.Import(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("Imported tree", "path", path, "format", format, "nodes", t.Len())
		return t, nil
	}
	return resolveTree(ctx, opts, cfg, filepath.Base(path), func(r *resolve.Resolver, ro resolve.Options) (*tree.Tree, error) {
		return r.ResolveFile(ctx, path, ro)
	})
}

// resolveTree wires the repository client and runs fn with a spinner when
// stderr is an interactive terminal.
func resolveTree(ctx context.Context, opts *sourceOpts, cfg *config.Config, name string, fn func(*resolve.Resolver, resolve.Options) (*tree.Tree, error)) (*tree.Tree, error) {
	logger := loggerFromContext(ctx)

	c, err := newCache(opts.noCache, cfg.Resolve.CacheURL)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	client := maven.NewClient(c, cfg.Resolve.Repository, cfg.Resolve.CacheTTL.Duration)
	client.SetRateLimit(cfg.Resolve.RequestsPerSecond)
	ro := cfg.ResolveOptions()
	ro.Refresh = opts.refresh
	ro.Logger = resolveLogger(logger)

	logger.Debug("Resolving", "root", name, "repository", client.Repository(), "max_depth", ro.MaxDepth, "scopes", strings.Join(ro.Scopes, ","))

	var spinner *Spinner
	if isTerminal(os.Stderr) && logger.GetLevel() > LogDebug {
		spinner = newSpinnerWithContext(ctx, os.Stderr, "Resolving "+name+"...")
		spinner.Start()
	}

	r := resolve.New(client)
	if !opts.noCache {
		r.WithTreeCache(cache.Prefixed(c, integrations.RepositoryHost(client.Repository())+":"), cfg.Resolve.CacheTTL.Duration)
	}

	prog := newProgress(logger)
	t, err := fn(r, ro)
	if spinner != nil {
		spinner.Stop()
		if spinner.Cancelled() {
			logger.Warn("Resolution interrupted", "root", name)
		}
	}
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Resolved %d nodes", t.Len()))
	return t, nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(f.Fd())
}

// writeGraph renders the conflict paths of t to path. The extension picks
// the format: .dot writes the DOT source, .svg and .png run Graphviz.
func writeGraph(ctx context.Context, t *tree.Tree, conflicts []convergence.Conflict, path string, full bool) error {
	src := dot.ToDOT(t, conflicts, dot.Options{Full: full})

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".gv":
		data = []byte(src)
	case ".svg", ".png":
		out, err := dot.Render(ctx, src, dot.Format(ext[1:]))
		if err != nil {
			return fmt.Errorf("render graph: %w", err)
		}
		data = out
	default:
		return errors.New(errors.ErrCodeUnsupported, "graph format %q (want .dot, .svg or .png)", ext)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	loggerFromContext(ctx).Debug("Wrote graph", "path", path)
	return nil
}
