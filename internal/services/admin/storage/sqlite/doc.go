// Package sqlite provides SQLite-backed admin persistence.
//
// It stores dashboard-local state only. Marketplace records live in the
// backend and are never written here.
package sqlite
