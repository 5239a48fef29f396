package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/layout"
	"github.com/matzehuels/coursemap/pkg/status"
)

// cellsPerLine bounds how many course cells share one terminal line.
const cellsPerLine = 4

var bandColors = map[layout.BandKind]lipgloss.Color{
	layout.BandSchool:     colorBlue,
	layout.BandCollege:    lipgloss.Color("141"),
	layout.BandDepartment: colorGreen,
	layout.BandOther:      colorGray,
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		deptID  int
		output  string
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the semester grid of a department",
		Long: `Print the curriculum of a department as a semester grid.

Rows are semesters, from 一年級上 to 四年級下, followed by courses without a
valid level. Within a row, school-mandated courses come first, then college
and department courses, then everything else. Universal courses (department 0)
appear in every department.

Cells are colored by the current student's statuses. Use --json or -o to write
the computed layout instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), deptID, output, asJSON, noCache)
		},
	}

	cmd.Flags().IntVarP(&deptID, "dept", "d", 0, "department id (0 shows universal courses only)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout as JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout computes the layout of a department and prints or writes it.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, deptID int, output string, asJSON, noCache bool) error {
	student, err := c.studentID()
	if err != nil {
		return err
	}
	runner, _, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	snap, err := c.loadSnapshot(ctx, runner)
	if err != nil {
		return err
	}

	res, cached, err := runner.LayoutWithCacheInfo(ctx, deptID)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	if asJSON || output != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		if output == "" {
			_, err = fmt.Fprintln(w, string(data))
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printSuccess("Layout complete")
		printFile(output)
		printStats(len(res.Nodes), placedEdges(res, snap.Graph), cached)
		printNewline()
		printNextStep("Render", fmt.Sprintf("%s render --dept %d", appName, deptID))
		return nil
	}

	session, err := runner.Session(ctx, student)
	if err != nil {
		return err
	}

	title := "Universal courses"
	if d, ok := snap.Department(deptID); ok {
		title = d.Name
	} else if deptID != catalog.UniversalDeptID {
		title = fmt.Sprintf("Department %d", deptID)
	}
	fmt.Fprint(w, formatGrid(res, snap.Graph, session, title))
	printStats(len(res.Nodes), placedEdges(res, snap.Graph), cached)
	return nil
}

// formatGrid renders a layout as one block of cells per semester row.
func formatGrid(res layout.Result, g *catalog.Graph, statuses status.Reader, title string) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(title) + "\n")
	if len(res.Nodes) == 0 {
		b.WriteString(StyleDim.Render("no courses") + "\n")
		return b.String()
	}

	for _, row := range res.Rows {
		b.WriteString("\n" + StyleHighlight.Render(row.Level.Text()) + " " + StyleDim.Render(fmt.Sprintf("(%d)", row.Count)) + "\n")

		nodes := res.RowNodes(row.Rank)
		for start := 0; start < len(nodes); start += cellsPerLine {
			end := min(start+cellsPerLine, len(nodes))
			cells := make([]string, 0, end-start)
			for _, n := range nodes[start:end] {
				cells = append(cells, formatCell(n, g, statuses))
			}
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")
		}
	}
	return b.String()
}

func formatCell(n layout.Node, g *catalog.Graph, statuses status.Reader) string {
	c, _ := g.Course(n.CourseID)
	st := statuses.Get(n.CourseID)
	body := fmt.Sprintf("#%d %s\n%d cr · %s", c.ID, c.Name, c.Credits, renderStatus(st))
	return lipgloss.NewStyle().
		Width(24).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(bandColors[n.Band]).
		Render(body)
}

// placedEdges counts the prerequisite edges between placed courses.
func placedEdges(res layout.Result, g *catalog.Graph) int {
	count := 0
	for _, e := range g.Edges() {
		_, fromOK := res.Position(e.From)
		_, toOK := res.Position(e.To)
		if fromOK && toOK {
			count++
		}
	}
	return count
}
