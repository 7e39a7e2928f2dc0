// Package filesystem provides implementations of the types.FS interface:
// a thin OS-backed implementation for production and an in-memory
// implementation for tests that must not touch the real disk.
package filesystem
