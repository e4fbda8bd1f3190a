// Package urlcheck decides whether published package URLs are reachable.
//
// A URL is valid only when an HTTP GET answers 200 OK (after redirects).
// Any other status is Invalid; transport failures (DNS, refused connections,
// timeouts) are reported as CheckFailed and callers treat them as invalid.
package urlcheck
