package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/layout"
	"github.com/matzehuels/coursemap/pkg/status"
)

func fixture(t *testing.T) (*catalog.Graph, layout.Result) {
	t.Helper()
	g, err := catalog.Normalize(catalog.ConvertCourses([]catalog.RawCourse{
		{ID: 1, Name: "Calculus", Credits: 3, Level: 1, Categories: []string{"校定必修"}},
		{ID: 2, Name: "Programming", Credits: 3, Level: 1, DeptID: 5, Categories: []string{"系定必修"}},
		{ID: 3, Name: "Data Structures", Credits: 3, Level: 3, DeptID: 5, Categories: []string{"系定必修"}},
		{ID: 4, Name: "Circuits", Credits: 3, Level: 3, DeptID: 6},
	}), []catalog.Pair{{CourseID: 3, PrereqID: 2}, {CourseID: 4, PrereqID: 1}})
	if err != nil {
		t.Fatal(err)
	}
	return g, layout.Compute(g, 5, layout.Options{ColumnWidth: 144, RowHeight: 72})
}

func TestToDOT(t *testing.T) {
	g, res := fixture(t)
	dot := ToDOT(res, g, status.Map{2: status.Passed, 3: status.InProgress}, Options{Title: "CS"})

	for _, want := range []string{
		"digraph curriculum {",
		`label="CS";`,
		`1 [label="Calculus\n#1", pos="0.00,0.00!", fillcolor="#ffffff", color="#1565c0"];`,
		`2 [label="Programming\n#2", pos="2.00,0.00!", fillcolor="#c8e6c9", color="#2e7d32"];`,
		`3 [label="Data Structures\n#3", pos="2.00,-1.00!", fillcolor="#ffe0b2"`,
		"  2 -> 3;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Course 4 belongs to another department, so neither it nor its edge
	// is drawn.
	if strings.Contains(dot, "Circuits") || strings.Contains(dot, "1 -> 4") {
		t.Errorf("DOT contains filtered course:\n%s", dot)
	}
}

func TestToDOT_Highlight(t *testing.T) {
	g, res := fixture(t)
	dot := ToDOT(res, g, nil, Options{Highlight: []catalog.Edge{{From: 2, To: 3}}})

	if !strings.Contains(dot, `2 -> 3 [color="#d32f2f", penwidth=3];`) {
		t.Errorf("highlighted edge not drawn:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g, res := fixture(t)
	dot := ToDOT(res, g, nil, Options{Detailed: true})
	if !strings.Contains(dot, `3 credits, 二年級上`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	g, res := fixture(t)
	svg, err := RenderSVG(context.Background(), ToDOT(res, g, nil, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "Programming") {
		t.Errorf("unexpected SVG output: %.200s", s)
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("invalid DOT accepted")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox should pass through, got %s", got)
	}
}
