package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orchestree/orchestree/pkg/pipeline"
	"github.com/orchestree/orchestree/pkg/render/nodelink"
)

// dotCommand prints the graph description handed to the layout engine.
// No engine is run.
func (c *CLI) dotCommand() *cobra.Command {
	var output, name string

	cmd := &cobra.Command{
		Use:   "dot FILE",
		Short: "Print the DOT graph for an architecture description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), runnerOpts{noCache: true})
			if err != nil {
				return err
			}
			defer runner.Close()

			d, _, err := runner.Build(cmd.Context(), pipeline.Options{Description: data, Name: name})
			if err != nil {
				return err
			}
			g, err := nodelink.Assemble(d, nodelink.Options{Logger: c.Logger})
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(os.Stdout, g.DOT)
				return nil
			}
			if err := writeOutput(output, []byte(g.DOT)); err != nil {
				return err
			}
			printSuccess("Wrote %s", output)
			printDetail("%d nodes, %d clusters, %d edges", g.Nodes, g.Clusters, g.Edges)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&name, "name", "", "override the diagram name")
	return cmd
}
