// Package chart defines the input records of a schedule chart.
//
// A [Chart] is a tree of [Row] records, each holding time-spanned [Task]
// records, plus a flat list of [Dependency] arcs that link tasks by id. The
// records are plain data: nothing in this package computes geometry. The
// layout package turns a Chart into positioned layout objects.
//
// # Time Values
//
// Task and baseline bounds are [Time] values, stored as Unix epoch
// milliseconds. In JSON, TOML and YAML documents they may be written as a
// number of milliseconds, an RFC 3339 timestamp, or a plain date:
//
//	start = 1700000000000
//	start = "2024-03-01T09:00:00Z"
//	start = 2024-03-01
//
// # Hierarchy
//
// Rows may carry child rows inline (Row.Rows). A row marked Lazy has no
// inline children; its children come from a [ChildSource] once loaded.
// [LazySource] is an in-memory source that releases children on demand.
//
// # Files
//
// [ReadFile] and [WriteFile] pick the encoding from the file extension
// (.json, .toml, .yaml or .yml).
package chart
