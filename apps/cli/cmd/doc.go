// Package cmd implements the apix CLI commands using Cobra.
//
// Available commands:
//   - exec: Execute a request manifest
//   - get, post, put, patch, delete, head: Send an ad-hoc request
//   - config: Read and change the user configuration
//   - ctl: Inspect, edit, create, validate and import manifests
//   - history: Browse executed requests and their latency statistics
//   - init: Prepare the current directory for apix manifests
//   - completion, version
//
// The configuration is loaded once before any command runs and handed to
// the commands through the app value.
package cmd
