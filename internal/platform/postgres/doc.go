// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package and for the task
// store. It also embeds the SQL schema migrations applied with goose.
package postgres
