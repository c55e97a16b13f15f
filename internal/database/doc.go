// Package database provides PostgreSQL connection pool management for
// recorded channel events.
package database
