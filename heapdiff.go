// ABOUTME: Main heapdiff package providing version information and package documentation
// ABOUTME: This is the root package for the heap snapshot diff engine

// Package heapdiff provides heap snapshot capture management and differential
// analysis for managed heaps. It builds an object graph from a raw capture,
// computes per-object retained sizes via dominator trees, groups objects into
// per-class sets, and diffs two snapshots into created/deleted/delta statistics
// per class. A live-instance resolver correlates snapshot objects back to
// instances alive in the running process.
package heapdiff

// Version is the semantic version of the heapdiff engine
const Version = "0.1.0-dev"
