// Package render draws a computed curriculum layout as a Graphviz graph.
//
// [ToDOT] emits DOT with every node pinned at its grid position, so
// Graphviz draws the edges but never moves a course. [RenderSVG] runs the
// neato engine, which honors pinned positions, through goccy/go-graphviz.
//
//	res := layout.Compute(g, deptID, layout.DefaultOptions())
//	dot := render.ToDOT(res, g, store, render.Options{Highlight: decision.Edges()})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Node fill shows the completion status and the outline shows the column
// band. Highlighted edges, typically the unmet prerequisites of a rejected
// transition, are drawn thick and red.
package render
