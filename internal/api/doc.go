// Package api handles incoming HTTP requests, request validation and response
// formatting for the package catalog. Handlers translate HTTP concerns into
// PackageService calls and map service errors to status codes through
// HandleAPIError; internal error details are logged, never returned.
//
// Subpackage middleware provides trace IDs, request-scoped loggers and JWT
// bearer authentication. Subpackage shared holds the response helpers and
// context keys used by both.
package api
