// Package pipeline wires the catalog, layout, gate and credit packages to
// storage and caching.
//
// The CLI and the HTTP server both drive the same [Runner], so catalog
// loading, layout caching and status transitions behave identically on every
// entry point.
//
// # Stages
//
//  1. Load: read the catalog from a [storage.CatalogSource], normalize it and
//     reject prerequisite cycles
//  2. Layout: place the courses of one department on the semester grid
//  3. Render: draw a layout as DOT or SVG
//
// Student state lives next to the stages: [Runner.Session] loads a student's
// records into a [status.Store], and [Runner.SetStatus] routes every change
// through the prerequisite gate before it is persisted.
//
// # Usage
//
//	runner := pipeline.NewRunner(source, records, c, nil, logger, pipeline.DefaultOptions())
//	res, err := runner.Layout(ctx, deptID)
//
//	d, err := runner.SetStatus(ctx, "s1234", 201, status.InProgress)
//	if errors.Is(err, errors.ErrCodePrerequisitesUnmet) {
//	    // d.Violations lists the unmet prerequisites
//	}
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/credits"
	"github.com/matzehuels/coursemap/pkg/layout"
	"github.com/matzehuels/coursemap/pkg/storage"
)

// =============================================================================
// Default Values
// =============================================================================

// AllDepartments disables the department filter of [Runner.Credits].
const AllDepartments = -1

// DefaultCacheTTL is how long computed layouts and renders stay cached.
const DefaultCacheTTL = time.Hour

// DefaultSessionTTL is how long an idle student session is kept in memory.
const DefaultSessionTTL = 30 * time.Minute

// Format constants for rendered outputs.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a [Runner].
type Options struct {
	Layout   layout.Options       `json:"layout"`
	Credits  credits.Requirements `json:"credits"`
	CacheTTL time.Duration        `json:"cache_ttl"`

	// SessionTTL is how long an unused student session stays in memory.
	// Zero selects DefaultSessionTTL in NewRunner.
	SessionTTL time.Duration `json:"session_ttl"`
}

// DefaultOptions returns the standard grid and graduation targets.
func DefaultOptions() Options {
	return Options{
		Layout:     layout.DefaultOptions(),
		Credits:    credits.DefaultRequirements(),
		CacheTTL:   DefaultCacheTTL,
		SessionTTL: DefaultSessionTTL,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Layout.ColumnWidth < 0 || o.Layout.RowHeight < 0 {
		return fmt.Errorf("layout dimensions must be non-negative")
	}
	if o.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must be non-negative")
	}
	if o.SessionTTL < 0 {
		return fmt.Errorf("session ttl must be non-negative")
	}
	return o.Credits.Validate()
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Snapshot is a loaded and validated catalog.
type Snapshot struct {
	// Graph is the normalized prerequisite graph.
	Graph *catalog.Graph

	// Departments lists the departments of the catalog, sorted by id.
	Departments []storage.Department

	// Hash is the content hash of the raw catalog. Layout cache keys derive
	// from it, so a changed catalog never serves a stale layout.
	Hash string

	// Source names the catalog source.
	Source string

	// LoadedAt is when the snapshot was built.
	LoadedAt time.Time
}

// Department returns the department with the given id.
func (s *Snapshot) Department(id int) (storage.Department, bool) {
	for _, d := range s.Departments {
		if d.ID == id {
			return d, true
		}
	}
	return storage.Department{}, false
}

// Courses returns the courses visible under the department filter.
func (s *Snapshot) Courses(deptID int) []catalog.Course {
	ids := s.Graph.Filter(deptID)
	out := make([]catalog.Course, 0, len(ids))
	for _, id := range ids {
		c, _ := s.Graph.Course(id)
		out = append(out, c)
	}
	return out
}
