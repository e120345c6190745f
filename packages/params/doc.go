// Package params resolves the parameters of a request manifest.
//
// Values supplied on the command line are taken verbatim. Required
// parameters without a value are asked for interactively, validated against
// their JSON schema (draft 7) and re-asked until valid.
package params
