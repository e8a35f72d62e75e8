// Package postgres provides PostgreSQL implementations of the store
// interfaces. All implementations accept a store.DBTX so they can run
// against either a connection pool or an open transaction, and map
// driver errors to store sentinel errors via MapError.
package postgres
