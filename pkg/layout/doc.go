// Package layout converts chart records into positioned layout objects.
//
// A layout pass produces one [Generation]: an ordered slice of [RowLayout]
// values with absolute y-offsets, the [TaskLayout] values inside each row
// with their lane and in-row offset, and the [DependencyLayout] arcs that
// link tasks across rows.
//
// # Pipeline
//
// [Build] runs the pass in four steps:
//
//  1. [Flatten] turns the row tree and the expanded-key set into a flat,
//     pre-ordered row sequence annotated with depth and parent index.
//  2. Each task record is mapped to a TaskLayout: actual span, baseline span,
//     envelope, and the heights derived by [SizeTask].
//  3. [ResolveRow] assigns lanes and offsets under the row's overlap
//     behavior and derives the row height; [TagMilestoneBaselines] links
//     each task to its nearest baseline milestones.
//  4. Rows are stacked vertically and dependency objects are linked and
//     sorted for the viewport package.
//
// # Overlap Behaviors
//
//   - stack: first-fit lanes, tasks in the same lane never overlap
//   - stagger: overlapping neighbours alternate between two offsets
//   - overlay: every task shares lane 0 and is drawn on top
//   - auto: stagger when the row height is free, stack when it is fixed
//
// # Incremental Updates
//
// [Patch] expands or collapses a single row in place, splicing the affected
// subtree into the generation and re-deriving offsets below the mutation
// point only. A patched generation is identical to a full [Build] with the
// same expanded-key set.
//
// # Ownership
//
// Back-references (task to row, adjacent tasks, dependency chain, old
// objects) are plain pointers; the generation owns every object through its
// Rows and Dependencies slices. Row parents are integer indices, rewritten
// by Patch. None of the types are safe for concurrent mutation.
package layout
