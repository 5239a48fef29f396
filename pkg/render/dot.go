package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/layout"
	"github.com/matzehuels/coursemap/pkg/status"
)

// pointsPerInch converts layout units to the inches neato expects in pos.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Highlight lists prerequisite edges to emphasize.
	Highlight []catalog.Edge
	// Detailed adds credits and the semester to node labels.
	Detailed bool
	// Title is drawn above the graph when set.
	Title string
}

var statusFill = map[status.Status]string{
	status.Unset:      "#ffffff",
	status.InProgress: "#ffe0b2",
	status.Passed:     "#c8e6c9",
	status.Failed:     "#ffcdd2",
}

var bandColor = [...]string{
	layout.BandSchool:     "#1565c0",
	layout.BandCollege:    "#6a1b9a",
	layout.BandDepartment: "#2e7d32",
	layout.BandOther:      "#757575",
}

const highlightColor = "#d32f2f"

// ToDOT converts a layout to Graphviz DOT. Only edges between placed
// courses are drawn. A nil statuses reader draws every course as unset.
func ToDOT(res layout.Result, g *catalog.Graph, statuses status.Reader, opts Options) string {
	if statuses == nil {
		statuses = status.Map{}
	}
	highlight := make(map[catalog.Edge]bool, len(opts.Highlight))
	for _, e := range opts.Highlight {
		highlight[e] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph curriculum {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=28;\n", opts.Title)
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, width=3, height=1.2, fixedsize=true, penwidth=2];\n")
	buf.WriteString("  edge [color=\"#9e9e9e\", arrowsize=0.8];\n")
	buf.WriteString("\n")

	placed := make(map[int]bool, len(res.Nodes))
	for _, n := range res.Nodes {
		placed[n.CourseID] = true
		c, _ := g.Course(n.CourseID)
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(c, opts.Detailed)),
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", inches(n.X), inches(-n.Y)),
			fmt.Sprintf("fillcolor=%q", statusFill[statuses.Get(n.CourseID)]),
			fmt.Sprintf("color=%q", bandColor[n.Band]),
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", n.CourseID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if !placed[e.From] || !placed[e.To] {
			continue
		}
		if highlight[e] {
			fmt.Fprintf(&buf, "  %d -> %d [color=%q, penwidth=3];\n", e.From, e.To, highlightColor)
			continue
		}
		fmt.Fprintf(&buf, "  %d -> %d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// inches converts layout units to inches, normalizing negative zero.
func inches(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v / pointsPerInch
}

func nodeLabel(c catalog.Course, detailed bool) string {
	label := fmt.Sprintf("%s\n#%d", c.Name, c.ID)
	if detailed {
		label += fmt.Sprintf("\n%d credits, %s", c.Credits, c.Level.Text())
	}
	return label
}
