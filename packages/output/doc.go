// Package output renders apix results on the terminal.
//
// It provides:
//   - Console: colored status and error messages
//   - Printer: syntax-highlighted bodies and request/response heads
//   - Progress: transfer progress bars for uploads and downloads
//   - JSON: machine-readable output for listings
package output
