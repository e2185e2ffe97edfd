// Package backend is the REST client for the marketplace API the dashboard
// reads from and proxies mutations to.
//
// Responses are kept as raw JSON and read through Item, a null-safe path
// accessor, because the backend owns every shape and embedded references may
// be null when the referenced record was deleted.
package backend
