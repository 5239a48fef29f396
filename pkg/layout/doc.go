// Package layout places the courses of one department on a deterministic
// grid.
//
// # Grid
//
// Rows are study levels (1 = first-year fall ... 8 = fourth-year spring), in
// ascending level order. Courses without a valid level share a final row with
// key [catalog.LevelUnspecified]. Row Y coordinates use the rank of the row
// among present rows, so sparse levels leave no vertical gaps.
//
// Columns are split into four bands by category priority:
//
//	band 1  school-mandated       width fixed across rows
//	band 2  college-mandated      width fixed across rows
//	band 3  department-mandated   width fixed across rows
//	band 4  everything else       row-local width
//
// The widths of bands 1 to 3 come from a pre-pass that takes, for each
// priority, the largest number of such courses in any single row. The fixed
// widths keep each category vertically aligned across semesters: a
// department-mandated course in year one sits in the same column band as one in
// year four.
//
// Within a row, courses are ordered by (priority, department id, course id).
//
// # Determinism
//
// [Compute] is a pure function: every ordering decision uses an explicit sort,
// so identical inputs produce bit-identical coordinates.
package layout
