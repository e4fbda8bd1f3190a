// Package events decouples the code that asks for background work from the
// code that performs it.
//
// The package service emits a TaskRequestEvent whenever a package's URLs need
// checking; the task package registers a handler that turns the event into a
// persisted task. Neither side imports the other.
package events
