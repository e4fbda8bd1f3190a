// Package mocks provides in-memory implementations of the store and
// notification interfaces for use in tests. Each mock keeps its data in
// maps guarded by a mutex and exposes function fields to override behaviour.
package mocks
