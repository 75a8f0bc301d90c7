package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cio "github.com/matzehuels/converge/pkg/io"
)

// treeOpts holds the flags of the tree command.
type treeOpts struct {
	sourceOpts
	jsonOut string
	graph   string
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [pom.xml|tree.json|tree.txt]",
		Short: "Print or export a dependency tree",
		Long: `Tree resolves or imports a dependency tree and prints it. Use --json to
save it in the JSON format that check reads back without network access.`,
		Example: `  # Resolve and print the project in the working directory
  converge tree

  # Resolve a published artifact and save it
  converge tree --artifact org.apache.commons:commons-text:1.12.0 --json tree.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			t, err := loadTree(ctx, args, &opts.sourceOpts, cfg)
			if err != nil {
				return err
			}

			if opts.graph != "" {
				if err := writeGraph(ctx, t, nil, opts.graph, true); err != nil {
					return err
				}
			}

			if opts.jsonOut == "-" {
				return cio.WriteJSON(t, stdout)
			}
			if opts.jsonOut != "" {
				if err := cio.ExportJSON(t, opts.jsonOut); err != nil {
					return err
				}
				printSuccess("Exported %d nodes", t.Len())
				printFile(opts.jsonOut)
				return nil
			}

			fmt.Fprintln(stdout, renderTree(t, nil))
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.jsonOut, "json", "", "write the tree as JSON to this file (- for stdout)")
	cmd.Flags().StringVarP(&opts.graph, "graph", "g", "", "write the tree as a graph (.dot, .svg or .png)")

	return cmd
}
