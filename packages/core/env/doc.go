// Package env loads .env files and snapshots the process environment for
// templates, where it is exposed under the env key.
package env
