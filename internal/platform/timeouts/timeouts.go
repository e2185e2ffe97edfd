// Package timeouts defines shared timeout constants for the dashboard process.
package timeouts

import "time"

// BackendRequest caps a single call from the dashboard to the marketplace API.
const BackendRequest = 10 * time.Second

// CacheRefresh caps a background collection refresh after invalidation.
const CacheRefresh = 15 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SessionSweep is the interval between expired-session cleanups.
const SessionSweep = 10 * time.Minute
