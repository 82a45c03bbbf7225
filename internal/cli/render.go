package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/orchestree/orchestree/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single input and format) or base path
	formats []string // svg, png, pdf, dot
	name    string   // overrides the diagram name
	scale   float64  // PNG scale factor
	engine  string   // layout engine kind override
	noCache bool     // bypass the cache entirely
	refresh bool     // recompute even when cached
	jobs    int      // concurrent renders
	watch   bool     // re-render on change
}

// renderCommand creates the render command. Each input is an architecture
// description in YAML or JSON; "-" reads stdin.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: pipeline.DefaultScale, jobs: runtime.NumCPU()}
	var formatsStr string

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render architecture descriptions to diagrams",
		Long: `Render architecture descriptions into diagrams with inlined icons.

Outputs are written next to each input unless --output is given. With several
inputs or formats, --output is used as a base path.`,
		Example: `  orchestree render infra.yaml
  orchestree render infra.yaml -f svg,png -o out/infra
  orchestree render stacks/*.yaml -j 4 --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			if opts.output != "" && len(args) > 1 {
				return fmt.Errorf("--output cannot be used with %d inputs", len(args))
			}
			if opts.watch && containsStdin(args) {
				return fmt.Errorf("--watch cannot read from stdin")
			}

			runner, err := c.newRunner(cmd.Context(), runnerOpts{noCache: opts.noCache, engine: opts.engine})
			if err != nil {
				return err
			}
			defer runner.Close()

			if err := c.renderAll(cmd.Context(), runner, args, &opts); err != nil && !opts.watch {
				return err
			}
			if opts.watch {
				return c.watch(cmd.Context(), args, func(ctx context.Context, changed []string) error {
					return c.renderAll(ctx, runner, changed, &opts)
				})
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.name, "name", "", "override the diagram name")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "layout engine: exec (default) or embedded")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached results")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "number of inputs rendered concurrently")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when an input changes")

	return cmd
}

// renderAll renders every input, at most opts.jobs at a time. All inputs
// are attempted; the first error is returned.
func (c *CLI) renderAll(ctx context.Context, runner *pipeline.Runner, inputs []string, opts *renderOpts) error {
	prog := newProgress(c.Logger)

	var g errgroup.Group
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	spin := len(inputs) == 1 && inputs[0] != "-"
	for _, input := range inputs {
		g.Go(func() error {
			if err := c.renderOne(ctx, runner, input, opts, spin); err != nil {
				printError("%s: %v", input, err)
				return fmt.Errorf("%s: %w", input, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(inputs) > 1 {
		prog.done(fmt.Sprintf("Rendered %d diagrams", len(inputs)))
	}
	return nil
}

func (c *CLI) renderOne(ctx context.Context, runner *pipeline.Runner, input string, opts *renderOpts, spin bool) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	var s *Spinner
	if spin {
		s = newSpinner(ctx, "Rendering "+filepath.Base(input)).Start()
	}
	result, err := runner.Execute(ctx, pipeline.Options{
		Description: data,
		Name:        opts.name,
		Formats:     opts.formats,
		Scale:       opts.scale,
		Refresh:     opts.refresh,
	})
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	base := basePath(opts.output, input, result.Diagram.Name)
	paths := outputPaths(opts.output, base, opts.formats)

	for _, format := range opts.formats {
		path := paths[format]
		if err := writeOutput(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(result.Stats, result.CacheHit)
	if result.Stats.Dropped > 0 {
		printWarning("%d relation(s) reference unknown resources", result.Stats.Dropped)
	}
	return nil
}

// basePath derives the base output path. Without an explicit output the
// input's extension is stripped; stdin uses the diagram name. A known
// format extension on output is stripped.
func basePath(output, input, name string) string {
	if output == "" {
		if input == "-" {
			if name == "" {
				return "diagram"
			}
			return name
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its file. An explicit output with a
// single format is used verbatim.
func outputPaths(output, base string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func containsStdin(args []string) bool {
	for _, a := range args {
		if a == "-" {
			return true
		}
	}
	return false
}
