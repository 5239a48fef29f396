// Package gate decides whether a course status transition is allowed.
//
// Only direct prerequisites are checked. A prerequisite is satisfied when its
// status is exactly [status.Passed]; in-progress, failed and unset all count as
// unmet. Moving a course to in-progress or passed is gated, while moving it
// back to unset or to failed is always allowed.
//
// The gate never writes. Callers apply an accepted [Decision] to their status
// store themselves, so the same call doubles as a dry run.
package gate

import (
	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/status"
)

// Prerequisites is the part of the catalog graph the gate reads.
// [*catalog.Graph] satisfies it.
type Prerequisites interface {
	// Prerequisites returns the direct prerequisite ids of a course in
	// ascending order.
	Prerequisites(courseID int) []int
	// Course looks a course up by id.
	Course(id int) (catalog.Course, bool)
}

var _ Prerequisites = (*catalog.Graph)(nil)

// Violation is one unmet prerequisite.
type Violation struct {
	PrereqID   int           `json:"prereq_id"`
	PrereqName string        `json:"prereq_name"`
	Status     status.Status `json:"status"`
}

// Check returns the unmet direct prerequisites of courseID in ascending id
// order. An empty result means the course may proceed. Unknown courses have no
// prerequisites.
func Check(courseID int, g Prerequisites, statuses status.Reader) []Violation {
	var out []Violation
	for _, pid := range g.Prerequisites(courseID) {
		st := statuses.Get(pid)
		if st == status.Passed {
			continue
		}
		v := Violation{PrereqID: pid, Status: st}
		if c, ok := g.Course(pid); ok {
			v.PrereqName = c.Name
		}
		out = append(out, v)
	}
	return out
}

// Gated reports whether moving a course to target requires its prerequisites
// to be passed.
func Gated(target status.Status) bool {
	return target == status.InProgress || target == status.Passed
}

// Decision is the outcome of evaluating one transition.
type Decision struct {
	Course     int           `json:"course_id"`
	From       status.Status `json:"from"`
	To         status.Status `json:"to"`
	Allowed    bool          `json:"allowed"`
	Violations []Violation   `json:"violations,omitempty"`
}

// Evaluate decides the transition of courseID from its current status to
// target. Ungated targets are allowed without consulting prerequisites.
func Evaluate(courseID int, target status.Status, g Prerequisites, statuses status.Reader) Decision {
	d := Decision{Course: courseID, From: statuses.Get(courseID), To: target, Allowed: true}
	if !Gated(target) {
		return d
	}
	d.Violations = Check(courseID, g, statuses)
	d.Allowed = len(d.Violations) == 0
	return d
}

// Edges returns the prerequisite edges that blocked the transition, for
// highlighting.
func (d Decision) Edges() []catalog.Edge {
	if len(d.Violations) == 0 {
		return nil
	}
	edges := make([]catalog.Edge, len(d.Violations))
	for i, v := range d.Violations {
		edges[i] = catalog.Edge{From: v.PrereqID, To: d.Course}
	}
	return edges
}

// PrereqIDs returns the ids of the unmet prerequisites.
func (d Decision) PrereqIDs() []int {
	ids := make([]int, len(d.Violations))
	for i, v := range d.Violations {
		ids[i] = v.PrereqID
	}
	return ids
}
