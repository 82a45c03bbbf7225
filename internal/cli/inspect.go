package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/orchestree/orchestree/pkg/diagram"
	"github.com/orchestree/orchestree/pkg/pipeline"
)

// inspectCommand browses the built resource tree of a description.
func (c *CLI) inspectCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Browse the resource tree and relations of a description",
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

			d, fallbacks, err := runner.Build(cmd.Context(), pipeline.Options{Description: data})
			if err != nil {
				return err
			}

			if interactive && args[0] != "-" {
				p := tea.NewProgram(NewTreeModel(d), tea.WithContext(cmd.Context()))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("run browser: %w", err)
				}
			} else {
				printTree(d)
			}

			counts := d.Count()
			printDetail("%d leaves, %d groups, %d clusters, %d relations",
				counts[diagram.KindLeaf], counts[diagram.KindGroup], counts[diagram.KindCluster], len(d.Relations))
			if fallbacks > 0 {
				printWarning("%d resource(s) use the fallback icon", fallbacks)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the tree interactively")
	return cmd
}

// printTree writes the resource tree and relations.
func printTree(d *diagram.Diagram) {
	if d.Name != "" {
		fmt.Println(StyleTitle.Render(d.Name))
	}
	d.Walk(func(n *diagram.Node, depth int) bool {
		fmt.Println(treeLine(treeRow{node: n, depth: depth}, false, false))
		return true
	})
	for _, r := range d.Relations {
		fmt.Printf("  %s %s %s\n", r.From, StyleDim.Render(arrowFor(r.Direction)), r.To)
	}
}
