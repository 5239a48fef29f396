package layout

import (
	"fmt"
	"slices"

	"github.com/matzehuels/coursemap/pkg/catalog"
)

// BandKind identifies one of the four column bands.
type BandKind int

const (
	BandSchool BandKind = iota
	BandCollege
	BandDepartment
	BandOther
)

var bandNames = [...]string{"school", "college", "department", "other"}

func (b BandKind) String() string {
	if b < BandSchool || b > BandOther {
		return "unknown"
	}
	return bandNames[b]
}

// MarshalText encodes the band by name.
func (b BandKind) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText decodes a band name.
func (b *BandKind) UnmarshalText(text []byte) error {
	i := slices.Index(bandNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown band %q", text)
	}
	*b = BandKind(i)
	return nil
}

// Band is a contiguous column region. Columns is the fixed width for bands 1
// to 3 and the widest row for band 4.
type Band struct {
	Kind    BandKind `json:"kind"`
	Start   float64  `json:"start"`
	Columns int      `json:"columns"`
}

// Node is the placement of one course.
type Node struct {
	CourseID int              `json:"course_id"`
	Level    catalog.Level    `json:"level"`
	Row      int              `json:"row"`
	Column   int              `json:"column"`
	Priority catalog.Priority `json:"priority"`
	Band     BandKind         `json:"band"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
}

// Row summarizes one present level.
type Row struct {
	Level catalog.Level `json:"level"`
	Rank  int           `json:"rank"`
	Y     float64       `json:"y"`
	Count int           `json:"count"`
}

// Result is a computed layout. Nodes are ordered row by row, and left to
// right within a row.
type Result struct {
	Nodes   []Node  `json:"nodes"`
	Bands   [4]Band `json:"bands"`
	Rows    []Row   `json:"rows"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Options Options `json:"options"`

	index map[int]int
}

// Position returns the node of a course.
func (r Result) Position(courseID int) (Node, bool) {
	if r.index != nil {
		if i, ok := r.index[courseID]; ok {
			return r.Nodes[i], true
		}
		return Node{}, false
	}
	// Results decoded from a cache carry no index.
	i := slices.IndexFunc(r.Nodes, func(n Node) bool { return n.CourseID == courseID })
	if i < 0 {
		return Node{}, false
	}
	return r.Nodes[i], true
}

// Row returns the row of a level. Invalid levels map to the unspecified row.
func (r Result) Row(level catalog.Level) (Row, bool) {
	key := level.RowKey()
	for _, row := range r.Rows {
		if row.Level == key {
			return row, true
		}
	}
	return Row{}, false
}

// RowNodes returns the nodes of the row with the given rank.
func (r Result) RowNodes(rank int) []Node {
	var out []Node
	for _, n := range r.Nodes {
		if n.Row == rank {
			out = append(out, n)
		}
	}
	return out
}

// CourseIDs returns the ids of every placed course in node order.
func (r Result) CourseIDs() []int {
	ids := make([]int, len(r.Nodes))
	for i, n := range r.Nodes {
		ids[i] = n.CourseID
	}
	return ids
}
