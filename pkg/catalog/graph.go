package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCourseID is returned by [Normalize] when a course has a
	// non-positive identifier.
	ErrInvalidCourseID = errors.New("course ID must be positive")

	// ErrDuplicateCourseID is returned by [Normalize] when two courses share
	// an identifier.
	ErrDuplicateCourseID = errors.New("duplicate course ID")

	// ErrGraphHasCycle is wrapped by [*CycleError] when [Graph.Validate]
	// finds a prerequisite cycle.
	ErrGraphHasCycle = errors.New("prerequisite graph contains a cycle")
)

// WarningKind classifies a dropped prerequisite pair.
type WarningKind int

const (
	// WarnDanglingEdge: the pair references a course that is not in the catalog.
	WarnDanglingEdge WarningKind = iota
	// WarnSelfLoop: the pair makes a course its own prerequisite.
	WarnSelfLoop
	// WarnDuplicateEdge: the pair repeats an earlier pair.
	WarnDuplicateEdge
)

func (k WarningKind) String() string {
	switch k {
	case WarnDanglingEdge:
		return "unknown course"
	case WarnSelfLoop:
		return "self loop"
	case WarnDuplicateEdge:
		return "duplicate"
	}
	return "unknown"
}

// Warning is a non-fatal data-quality problem found by [Normalize].
type Warning struct {
	Kind WarningKind
	Pair Pair
}

func (w Warning) String() string {
	return fmt.Sprintf("prerequisite %d -> %d: %s", w.Pair.PrereqID, w.Pair.CourseID, w.Kind)
}

// CycleError reports a prerequisite cycle. Path starts and ends with the same
// course id.
type CycleError struct {
	Path []int
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("%v: %s", ErrGraphHasCycle, strings.Join(parts, " -> "))
}

// Unwrap lets errors.Is match [ErrGraphHasCycle].
func (e *CycleError) Unwrap() error { return ErrGraphHasCycle }

// Graph is the normalized curriculum: courses keyed by id plus prerequisite
// adjacency in both directions.
//
// The zero value is an empty graph. Use [Normalize] to build a populated one.
type Graph struct {
	nodes    map[int]Course
	outgoing map[int][]int // prerequisite id -> dependent course ids
	incoming map[int][]int // course id -> prerequisite ids
	edges    []Edge
	warnings []Warning
}

// Normalize builds a [Graph] from course records and prerequisite pairs.
//
// Pairs referencing unknown courses, self loops and repeated pairs are dropped
// and reported through [Graph.Warnings]. A course with ID <= 0 yields
// [ErrInvalidCourseID] and a repeated course ID yields [ErrDuplicateCourseID].
// Adjacency lists are sorted, so the result is a pure function of the input
// regardless of input order.
func Normalize(courses []Course, pairs []Pair) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[int]Course, len(courses)),
		outgoing: make(map[int][]int),
		incoming: make(map[int][]int),
	}

	for _, c := range courses {
		if c.ID <= 0 {
			return nil, fmt.Errorf("course %q: %w", c.Name, ErrInvalidCourseID)
		}
		if _, exists := g.nodes[c.ID]; exists {
			return nil, fmt.Errorf("course %d: %w", c.ID, ErrDuplicateCourseID)
		}
		c.Categories = slices.Clone(c.Categories)
		g.nodes[c.ID] = c
	}

	seen := make(map[Pair]bool, len(pairs))
	for _, p := range pairs {
		switch {
		case p.CourseID == p.PrereqID:
			g.warn(WarnSelfLoop, p)
			continue
		case !g.has(p.CourseID) || !g.has(p.PrereqID):
			g.warn(WarnDanglingEdge, p)
			continue
		case seen[p]:
			g.warn(WarnDuplicateEdge, p)
			continue
		}
		seen[p] = true
		g.outgoing[p.PrereqID] = append(g.outgoing[p.PrereqID], p.CourseID)
		g.incoming[p.CourseID] = append(g.incoming[p.CourseID], p.PrereqID)
		g.edges = append(g.edges, Edge{From: p.PrereqID, To: p.CourseID})
	}

	for _, ids := range g.outgoing {
		slices.Sort(ids)
	}
	for _, ids := range g.incoming {
		slices.Sort(ids)
	}
	slices.SortFunc(g.edges, func(a, b Edge) int {
		if a.To != b.To {
			return a.To - b.To
		}
		return a.From - b.From
	})
	return g, nil
}

func (g *Graph) warn(kind WarningKind, p Pair) {
	g.warnings = append(g.warnings, Warning{Kind: kind, Pair: p})
}

func (g *Graph) has(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// Course returns the course with the given id.
func (g *Graph) Course(id int) (Course, bool) {
	c, ok := g.nodes[id]
	return c, ok
}

// Courses returns all courses sorted by id.
func (g *Graph) Courses() []Course {
	out := make([]Course, 0, len(g.nodes))
	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		out = append(out, g.nodes[id])
	}
	return out
}

// Prerequisites returns the direct prerequisite ids of a course in ascending
// order. The returned slice must not be modified.
func (g *Graph) Prerequisites(id int) []int { return g.incoming[id] }

// Dependents returns the ids of courses that directly require id, ascending.
// The returned slice must not be modified.
func (g *Graph) Dependents(id int) []int { return g.outgoing[id] }

// Edges returns a copy of all edges sorted by (To, From).
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of courses.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of kept prerequisite edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Warnings returns the data-quality warnings collected by [Normalize], in
// input order.
func (g *Graph) Warnings() []Warning { return slices.Clone(g.warnings) }

// Filter returns the ids of courses visible under the department filter
// (the department's own courses plus universal ones), ascending.
func (g *Graph) Filter(deptID int) []int {
	var ids []int
	for id, c := range g.nodes {
		if c.VisibleIn(deptID) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Validate checks that the prerequisite edges are acyclic. It returns a
// [*CycleError] describing the first cycle found when walking courses in id
// order, or nil.
//
// Cycle detection is a three-color depth-first search in O(N+E).
func (g *Graph) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[int]int, len(g.nodes))
	var stack []int
	var cycle []int

	var dfs func(id int) bool
	dfs = func(id int) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, next := range g.outgoing[id] {
			switch color[next] {
			case white:
				if dfs(next) {
					return true
				}
			case gray:
				start := slices.Index(stack, next)
				cycle = append(slices.Clone(stack[start:]), next)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		if color[id] == white && dfs(id) {
			return &CycleError{Path: cycle}
		}
	}
	return nil
}
