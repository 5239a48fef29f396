// Package catalog turns raw course records and prerequisite pairs into a typed,
// immutable curriculum graph.
//
// # Overview
//
// A department's curriculum is a set of [Course] values connected by directed
// prerequisite edges: an [Edge] runs from the prerequisite to the course that
// requires it. [Normalize] builds a [Graph] from the flat records delivered by
// the catalog service:
//
//	g, err := catalog.Normalize(courses, []catalog.Pair{{CourseID: 3, PrereqID: 2}})
//	if err != nil {
//	    return err // malformed course records
//	}
//	for _, w := range g.Warnings() {
//	    logger.Warn("dropped prerequisite", "reason", w)
//	}
//
// # Categories
//
// Category labels arrive as free text (校定必修, 系定選修, ...). They are mapped
// to the closed [CategoryKind] enum exactly once, by [ParseCategory], when a
// [RawCourse] is converted. Every later decision (layout priority, credit
// buckets) switches on the enum and never inspects the label again.
//
// # Data Quality
//
// Prerequisite pairs that reference unknown courses, point a course at itself,
// or repeat an earlier pair are dropped and reported as [Warning] values. They
// never fail normalization. Course records without a usable identifier are a
// contract violation and make [Normalize] return an error.
//
// # Cycles
//
// The catalog is expected to be acyclic. [Normalize] does not check this;
// [Graph.Validate] does, and returns a [*CycleError] naming one offending path.
//
// # Concurrency
//
// A [Graph] is never mutated after [Normalize] returns and is safe for
// concurrent readers.
package catalog
