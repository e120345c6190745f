// Package config handles the per-user apix configuration.
//
// The configuration is a Configuration manifest stored in ~/.apix/config.yml
// (the directory can be moved with APIX_HOME). Values are layered with viper:
// built-in defaults, then the file, then APIX_* environment variables.
// Keys are case-insensitive.
package config
