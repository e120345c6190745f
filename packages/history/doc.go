// Package history keeps a local SQLite log of executed requests and
// computes latency statistics over it.
package history
