package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orchestree/orchestree/pkg/render/inline"
)

// inlineCommand runs the vector inliner over an existing SVG, for
// documents laid out outside orchestree.
func (c *CLI) inlineCommand() *cobra.Command {
	var output, baseDir string
	var sanitizeOnly bool

	cmd := &cobra.Command{
		Use:   "inline FILE",
		Short: "Replace <image> placeholders in an SVG with the referenced icons",
		Example: `  orchestree inline layout.svg -o diagram.svg
  dot -Tsvg graph.dot | orchestree inline - --base-dir icons`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}

			var out []byte
			if sanitizeOnly {
				out, err = inline.Sanitize(data)
				if err != nil {
					return err
				}
			} else {
				if baseDir == "" && args[0] != "-" {
					baseDir = filepath.Dir(args[0])
				}
				var report *inline.Report
				out, report, err = inline.Inline(data, inline.WithLogger(c.Logger), inline.WithBaseDir(baseDir))
				if err != nil {
					return err
				}
				defer printReport(report)
			}

			if output == "" {
				_, err := os.Stdout.Write(out)
				return err
			}
			if err := writeOutput(output, out); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "directory relative icon paths resolve against (default: the input's directory)")
	cmd.Flags().BoolVar(&sanitizeOnly, "sanitize", false, "only repair the markup, do not inline")
	return cmd
}

// printReport writes the inliner summary to stderr so that stdout stays
// a clean document.
func printReport(r *inline.Report) {
	fmt.Fprintln(os.Stderr, StyleDim.Render(fmt.Sprintf("  %d of %d images inlined", r.Inlined, r.Images)))
	for _, s := range r.Skipped {
		fmt.Fprintln(os.Stderr, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf("skipped %q (%s)", s.Href, s.Reason)))
	}
}
