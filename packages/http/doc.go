// Package http sends apix requests.
//
// It wraps the standard library's http package with:
//   - Proxy support with basic credentials
//   - Configurable timeouts, TLS verification and custom CA certificates
//   - Redirect handling
//   - Default headers merged under caller headers
//   - Ordered query parameters
//   - Streaming file uploads and binary downloads with progress
//   - Content-type classification to pick how a body is displayed
package http
