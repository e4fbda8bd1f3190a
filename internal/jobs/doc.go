// Package jobs contains scheduled background jobs that run independently of
// HTTP request handling.
//
// URLCheckScheduler periodically asks the package service to queue a URL
// check for every package. The checks themselves run in the task runner.
// Jobs log their errors and keep running; a failed sweep is retried on the
// next tick.
package jobs
