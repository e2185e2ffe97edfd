// Package listview turns a fetched collection snapshot into one rendered page.
//
// Every list screen runs the same pipeline over its snapshot: search filter,
// then sort, then a 1-indexed page slice. The pipeline never mutates its input
// so a cached snapshot can be shared across concurrent requests.
package listview
