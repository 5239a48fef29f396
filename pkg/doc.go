// Package pkg provides the core libraries for coursemap curriculum planning.
//
// # Overview
//
// Coursemap turns a course catalog into a semester-by-semester prerequisite
// graph and guards every change to a student's course statuses with the
// prerequisite rule: a course may only be taken or passed once each of its
// direct prerequisites is passed. The pkg directory is organized into three
// areas:
//
//  1. Domain logic: [catalog], [status], [gate], [layout], [credits], [render]
//  2. Infrastructure: [storage], [cache], [observability], [errors]
//  3. Orchestration: [pipeline]
//
// # Architecture
//
// The typical data flow:
//
//	Catalog source (file, Postgres, MongoDB)
//	         ↓
//	    [catalog] package (normalize courses and prerequisite pairs)
//	         ↓
//	    [layout] package (semester rows, category bands, positions)
//	         ↓
//	    [render] package (DOT, SVG via Graphviz)
//
// Status changes take a separate path:
//
//	request → [gate] (check prerequisites) → [storage] record store → [status] session
//
// # Quick Start
//
//	src, _ := storage.NewFileCatalog("catalog.json")
//	runner := pipeline.NewRunner(src, nil, nil, nil, nil, pipeline.DefaultOptions())
//	defer runner.Close()
//
//	res, _ := runner.Layout(ctx, 1)
//	d, err := runner.SetStatus(ctx, "410812345", 201, status.Passed)
//	if errors.Is(err, errors.ErrCodePrerequisitesUnmet) {
//	    for _, v := range d.Violations {
//	        fmt.Printf("needs %d (%s)\n", v.PrereqID, v.Status.Code())
//	    }
//	}
//
// # Main Packages
//
// [catalog] - Courses, categories, levels and the normalized prerequisite
// graph. Dangling and duplicate pairs are dropped with warnings; cycles are
// rejected.
//
// [status] - The four course states, their wire codes and the per-student
// session store.
//
// [gate] - The prerequisite rule. Evaluate decides a transition and lists
// the unmet prerequisites.
//
// [layout] - Deterministic grid placement: one row per semester, columns in
// four category bands.
//
// [credits] - Passed credits per graduation bucket.
//
// [render] - Graphviz DOT with pinned positions and SVG output.
//
// [storage] - Catalog sources and record stores for files, Postgres,
// MongoDB, Redis and memory.
//
// [cache] - Layout and render cache backends (file, Redis, null) and key
// derivation.
//
// [pipeline] - The runner used by the CLI and the HTTP server. Ensures
// consistent behavior across entry points.
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/catalog
// [status]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/status
// [gate]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/gate
// [layout]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/layout
// [credits]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/credits
// [render]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/render
// [storage]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/storage
// [cache]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/coursemap/pkg/pipeline
package pkg
