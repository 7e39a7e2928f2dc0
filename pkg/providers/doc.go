// Package providers holds the static knowledge about each supported target
// ecosystem: which item types it accepts, where each item lands on disk at
// project and global scope, and how source content is reformatted for it.
//
// Everything here is a pure table lookup or a pure byte transformation; the
// package performs no I/O, which keeps the planner deterministic.
package providers
