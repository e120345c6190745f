// Package runner turns request manifests into executed HTTP requests.
//
// A run resolves the manifest parameters, renders the request template in
// a fixed order (annotations, local context, url, method, headers,
// queries, body), sends the request and records it in the history.
package runner
