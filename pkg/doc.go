// Package pkg holds the libraries behind timelane, a layout and incremental
// render engine for schedule (Gantt) charts.
//
// # Overview
//
// A chart is a tree of rows. Each row carries tasks (time spans with an
// optional baseline and progress) and the chart carries dependencies between
// tasks. The engine turns the visible part of that tree into pixel geometry
// and, on every change, tells a renderer which objects to add, keep, move or
// remove.
//
// # Data Flow
//
//	chart document (JSON, TOML, YAML)
//	         ↓
//	    [chart] package (decode, validate, lazy children)
//	         ↓
//	    [layout] package (flatten rows, resolve overlaps, size rows)
//	         ↓
//	    [diff] package (classify against the previous generation)
//	         ↓
//	    [viewport] package (rows and arcs in the scrolled window)
//	         ↓
//	    renderer, [view] snapshots, [depgraph] DOT/SVG
//
// [engine] ties these together and retains the current generation, so
// viewport queries and expand/collapse patches run against it without a
// rebuild.
//
// # Quick Start
//
//	c, _ := chart.ReadFile("roadmap.yaml")
//	e := engine.New(layout.DefaultOptions())
//
//	res, _ := e.Update(c)                  // build, diff, reconcile
//	win := viewport.Window{Height: 600}
//	r := win.Rows(e.Current())             // rows on screen
//	deps := e.FindVisibleDependencies(r)   // arcs crossing the screen
//
//	res, _ = e.PatchExpandCollapse("epic-1", layout.Expand)
//	for _, in := range res.Instructions {
//	    // add, exist, migrate or delete in.New / in.Old
//	}
//
// # Main Packages
//
// ## Engine
//
// [chart] - Input model and codecs. Rows nest; a lazy row's children come
// from a ChildSource the first time it is expanded.
//
// [layout] - Row flattener, overlap resolver and layout builder. Produces a
// Generation: positioned rows, tasks with lanes, and dependencies sorted by
// their bottom row. Also applies expand/collapse patches in place.
//
// [diff] - Generation differ and reconciliation. Tags every object add,
// exist, migrate or delete and moves display handles to their successors.
//
// [viewport] - Row range lookup by binary search and the dependency walk
// bounded by the longest arc.
//
// [engine] - The stateful API: ComputeLayout, DiffAgainstPrevious,
// FindRowRange, FindVisibleDependencies, PatchExpandCollapse and
// EnsureMaterialized.
//
// [timeaxis] - Instant-to-pixel mapping with zoom and pan.
//
// ## Output
//
// [view] - Pointer-free snapshots and diff summaries for JSON and BSON.
//
// [depgraph] - Dependency graph export to Graphviz DOT and SVG.
//
// ## Infrastructure
//
// [cache] - Byte cache with file, Redis and null backends, and the keys for
// layout snapshots and rendered graphs.
//
// [store] - Chart documents on disk or in MongoDB.
//
// [server] - HTTP inspector holding one engine per session.
//
// [observability] - Hooks for engine, cache and server events.
//
// [errors] - Error codes shared by every package and mapped to HTTP status
// by the server.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [chart]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/chart
// [layout]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/layout
// [diff]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/diff
// [viewport]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/viewport
// [engine]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/engine
// [timeaxis]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/timeaxis
// [view]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/view
// [depgraph]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/depgraph
// [cache]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/timelane/pkg/errors
package pkg
