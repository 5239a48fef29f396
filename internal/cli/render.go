package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/pipeline"
	"github.com/matzehuels/coursemap/pkg/status"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	deptID    int      // department to draw
	output    string   // output file, base path for several formats, or "-" for stdout
	formats   []string // output formats: "dot", "svg"
	highlight int      // course whose unmet prerequisites are highlighted (0 for none)
	detailed  bool     // add credits and level to node labels
	title     string   // graph label
	plain     bool     // ignore the student's statuses
	noCache   bool     // disable caching
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the curriculum graph of a department",
		Long: `Render the curriculum graph of a department as Graphviz DOT or SVG.

Courses are pinned at their layout positions and filled by the current
student's statuses. --highlight <course> draws the prerequisite edges that
still block passing that course in red.

Several formats may be given at once (-f dot,svg); each is written next to
the output base path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "cannot write %d formats to stdout", len(opts.formats))
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.deptID, "dept", "d", 0, "department id")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or base path (\"-\" for stdout; default curriculum-<dept>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output formats: svg (default), dot, or dot,svg")
	cmd.Flags().IntVar(&opts.highlight, "highlight", 0, "highlight the unmet prerequisites of this course")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show credits and level in node labels")
	cmd.Flags().StringVar(&opts.title, "title", "", "graph title (default: department name)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "do not color by the student's statuses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if err := pipeline.ValidateFormat(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "render")
		}
	}
	return nil
}

// basePath derives the base output path. A known format extension on output
// is stripped so that each format gets its own extension.
func basePath(output string, deptID int) string {
	if output == "" {
		return fmt.Sprintf("curriculum-%d", deptID)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	runner, _, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	snap, err := c.loadSnapshot(ctx, runner)
	if err != nil {
		return err
	}

	req := pipeline.RenderRequest{DeptID: opts.deptID, Detailed: opts.detailed, Title: opts.title}
	if req.Title == "" {
		if d, ok := snap.Department(opts.deptID); ok {
			req.Title = d.Name
		}
	}

	if !opts.plain || opts.highlight > 0 {
		student, err := c.studentID()
		if err != nil {
			return err
		}
		if !opts.plain {
			session, err := runner.Session(ctx, student)
			if err != nil {
				return err
			}
			req.Statuses = session.Snapshot()
		}
		if opts.highlight > 0 {
			d, err := runner.DryRun(ctx, student, opts.highlight, status.Passed)
			if err != nil {
				return err
			}
			req.Highlight = d.Edges()
			logger.Debug("highlight", "course", opts.highlight, "unmet", len(d.Violations))
		}
	}

	base := basePath(opts.output, opts.deptID)
	for _, format := range opts.formats {
		req.Format = format
		data, err := runner.Render(ctx, req)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}

		if opts.output == "-" {
			_, err := w.Write(data)
			return err
		}

		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printSuccess("Rendered %s", format)
		printFile(path)
	}
	return nil
}
