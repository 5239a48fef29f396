package gate

import (
	"slices"
	"testing"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/status"
)

func testGraph(t *testing.T) *catalog.Graph {
	t.Helper()
	courses := []catalog.Course{
		{ID: 1, Name: "Calculus I", Level: 1},
		{ID: 2, Name: "Programming", Level: 1},
		{ID: 3, Name: "Data Structures", Level: 3},
		{ID: 4, Name: "Algorithms", Level: 4},
	}
	pairs := []catalog.Pair{
		{CourseID: 3, PrereqID: 2},
		{CourseID: 4, PrereqID: 3},
		{CourseID: 4, PrereqID: 1},
	}
	g, err := catalog.Normalize(courses, pairs)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestCheck(t *testing.T) {
	g := testGraph(t)
	tests := []struct {
		name     string
		course   int
		statuses status.Map
		want     []int
	}{
		{"NoPrereqs", 1, nil, nil},
		{"UnknownCourse", 42, nil, nil},
		{"InProgressBlocks", 3, status.Map{2: status.InProgress}, []int{2}},
		{"PassedAllows", 3, status.Map{2: status.Passed}, nil},
		{"FailedBlocks", 3, status.Map{2: status.Failed}, []int{2}},
		{"MissingBlocks", 3, status.Map{}, []int{2}},
		{"SortedByID", 4, nil, []int{1, 3}},
		{"PartiallyMet", 4, status.Map{1: status.Passed}, []int{3}},
		{"DirectOnly", 4, status.Map{1: status.Passed, 3: status.Passed}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			for _, v := range Check(tt.course, g, tt.statuses) {
				got = append(got, v.PrereqID)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Check(%d) = %v, want %v", tt.course, got, tt.want)
			}
		})
	}
}

func TestCheck_ViolationDetail(t *testing.T) {
	vs := Check(3, testGraph(t), status.Map{2: status.InProgress})
	if len(vs) != 1 {
		t.Fatalf("got %d violations, want 1", len(vs))
	}
	want := Violation{PrereqID: 2, PrereqName: "Programming", Status: status.InProgress}
	if vs[0] != want {
		t.Errorf("violation = %+v, want %+v", vs[0], want)
	}
}

func TestCheck_Monotonic(t *testing.T) {
	g := testGraph(t)
	statuses := status.Map{}
	prev := len(Check(4, g, statuses))
	for _, pid := range []int{1, 3} {
		statuses[pid] = status.Passed
		n := len(Check(4, g, statuses))
		if n > prev {
			t.Fatalf("passing %d grew violations from %d to %d", pid, prev, n)
		}
		prev = n
	}
	if prev != 0 {
		t.Errorf("violations = %d after passing everything", prev)
	}
}

func TestEvaluate(t *testing.T) {
	g := testGraph(t)
	blocked := status.Map{3: status.InProgress}
	tests := []struct {
		name    string
		target  status.Status
		allowed bool
	}{
		{"Passed", status.Passed, false},
		{"InProgress", status.InProgress, false},
		{"Failed", status.Failed, true},
		{"Unset", status.Unset, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(3, tt.target, g, blocked)
			if d.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", d.Allowed, tt.allowed)
			}
			if d.From != status.InProgress || d.To != tt.target || d.Course != 3 {
				t.Errorf("decision = %+v", d)
			}
			if !tt.allowed && !slices.Equal(d.PrereqIDs(), []int{2}) {
				t.Errorf("PrereqIDs() = %v, want [2]", d.PrereqIDs())
			}
			if tt.allowed && len(d.Violations) != 0 {
				t.Errorf("ungated transition has violations: %+v", d.Violations)
			}
		})
	}
}

// countingGraph records whether prerequisites were consulted.
type countingGraph struct {
	*catalog.Graph
	calls int
}

func (c *countingGraph) Prerequisites(id int) []int {
	c.calls++
	return c.Graph.Prerequisites(id)
}

func TestEvaluate_UngatedSkipsCheck(t *testing.T) {
	g := &countingGraph{Graph: testGraph(t)}
	Evaluate(4, status.Failed, g, status.Map{})
	Evaluate(4, status.Unset, g, status.Map{})
	if g.calls != 0 {
		t.Errorf("prerequisites consulted %d times for ungated targets", g.calls)
	}

	Evaluate(4, status.Passed, g, status.Map{})
	if g.calls != 1 {
		t.Errorf("prerequisites consulted %d times for gated target, want 1", g.calls)
	}
}

func TestDecision_Edges(t *testing.T) {
	d := Evaluate(4, status.Passed, testGraph(t), status.Map{})
	want := []catalog.Edge{{From: 1, To: 4}, {From: 3, To: 4}}
	if got := d.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}

	ok := Evaluate(1, status.Passed, testGraph(t), status.Map{})
	if !ok.Allowed || ok.Edges() != nil {
		t.Errorf("allowed decision = %+v, edges %v", ok, ok.Edges())
	}
}

func TestEvaluate_DoesNotWrite(t *testing.T) {
	store := status.NewStore(status.Map{2: status.Passed})
	before := store.Version()
	d := Evaluate(3, status.Passed, testGraph(t), store)
	if !d.Allowed {
		t.Fatalf("decision = %+v, want allowed", d)
	}
	if store.Version() != before || store.Get(3) != status.Unset {
		t.Error("Evaluate mutated the store")
	}
}
