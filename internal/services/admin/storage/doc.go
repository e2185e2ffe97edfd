// Package storage defines persistence contracts for the dashboard's own state:
// staff sessions and sign-in attempt counters.
//
// Admin code uses these interfaces to keep the session manager testable and
// avoid depending on a concrete SQLite schema.
package storage
