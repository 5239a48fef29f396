package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/coursemap/pkg/catalog"
)

// Default grid geometry in user units (pixels in the rendered graph).
const (
	DefaultColumnWidth = 260.0
	DefaultRowHeight   = 180.0
)

// Options configures the grid geometry. Zero fields fall back to the defaults.
type Options struct {
	ColumnWidth float64 `json:"column_width"`
	RowHeight   float64 `json:"row_height"`
}

// DefaultOptions returns the default grid geometry.
func DefaultOptions() Options {
	return Options{ColumnWidth: DefaultColumnWidth, RowHeight: DefaultRowHeight}
}

func (o Options) withDefaults() Options {
	if o.ColumnWidth <= 0 {
		o.ColumnWidth = DefaultColumnWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	return o
}

// Compute lays out the courses of g visible under deptID.
//
// A nil graph yields an empty result.
func Compute(g *catalog.Graph, deptID int, opts Options) Result {
	opts = opts.withDefaults()
	res := Result{Options: opts}
	if g == nil {
		return res
	}

	rows := groupRows(g, deptID)
	if len(rows) == 0 {
		return res
	}

	// Pre-pass: fixed widths for the three mandated bands.
	var widths [3]int
	for _, r := range rows {
		var counts [3]int
		for _, e := range r.entries {
			if b := bandOf(e.priority); b < BandOther {
				counts[b]++
			}
		}
		for b := range counts {
			widths[b] = max(widths[b], counts[b])
		}
	}

	var start [4]int
	for b := BandSchool; b < BandOther; b++ {
		start[b+1] = start[b] + widths[b]
		res.Bands[b] = Band{Kind: b, Start: float64(start[b]) * opts.ColumnWidth, Columns: widths[b]}
	}
	res.Bands[BandOther] = Band{Kind: BandOther, Start: float64(start[BandOther]) * opts.ColumnWidth}

	res.index = make(map[int]int)
	maxColumns := start[BandOther]
	for rank, r := range rows {
		slices.SortFunc(r.entries, compareEntries)

		var running [4]int
		for _, e := range r.entries {
			b := bandOf(e.priority)
			col := start[b] + running[b]
			running[b]++

			res.index[e.course.ID] = len(res.Nodes)
			res.Nodes = append(res.Nodes, Node{
				CourseID: e.course.ID,
				Level:    r.key,
				Row:      rank,
				Column:   col,
				Priority: e.priority,
				Band:     b,
				X:        float64(col) * opts.ColumnWidth,
				Y:        float64(rank) * opts.RowHeight,
			})
		}

		other := running[BandOther]
		res.Bands[BandOther].Columns = max(res.Bands[BandOther].Columns, other)
		maxColumns = max(maxColumns, start[BandOther]+other)
		res.Rows = append(res.Rows, Row{
			Level: r.key,
			Rank:  rank,
			Y:     float64(rank) * opts.RowHeight,
			Count: len(r.entries),
		})
	}

	res.Width = float64(maxColumns) * opts.ColumnWidth
	res.Height = float64(len(rows)) * opts.RowHeight
	return res
}

type entry struct {
	course   catalog.Course
	priority catalog.Priority
}

type row struct {
	key     catalog.Level
	entries []entry
}

// groupRows filters the graph to deptID and buckets courses by row key, in
// ascending key order.
func groupRows(g *catalog.Graph, deptID int) []row {
	byKey := make(map[catalog.Level][]entry)
	for _, c := range g.Courses() {
		if !c.VisibleIn(deptID) {
			continue
		}
		key := c.Level.RowKey()
		prio := c.Priority()
		if key == catalog.LevelUnspecified {
			prio = catalog.PriorityNone
		}
		byKey[key] = append(byKey[key], entry{course: c, priority: prio})
	}

	keys := make([]catalog.Level, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	rows := make([]row, len(keys))
	for i, k := range keys {
		rows[i] = row{key: k, entries: byKey[k]}
	}
	return rows
}

func compareEntries(a, b entry) int {
	return cmp.Or(
		cmp.Compare(a.priority, b.priority),
		cmp.Compare(a.course.DeptID, b.course.DeptID),
		cmp.Compare(a.course.ID, b.course.ID),
	)
}

func bandOf(p catalog.Priority) BandKind {
	switch p {
	case catalog.PrioritySchool:
		return BandSchool
	case catalog.PriorityCollege:
		return BandCollege
	case catalog.PriorityDepartment:
		return BandDepartment
	}
	return BandOther
}
