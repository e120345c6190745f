// Package builtin provides the functions and value helpers available to
// apix templates.
//
// Functions are called inside template expressions:
//   - uuid(): random UUID v4
//   - now(): current UTC time in RFC 3339
//   - timestamp(), timestamp_ms(): current Unix time
//   - date(layout): current UTC date formatted with a Go layout
//   - random(min, max): random integer in [min, max]
//   - random_string(length), random_email()
//
// The string helpers back the template filters b64encode, b64decode, md5,
// sha256, urlencode, urldecode and json_path.
package builtin
