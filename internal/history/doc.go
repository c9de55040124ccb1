// Package history persists the traffic handled by simulated
// instruments.
//
// Every query/response exchange is appended to the traffic_log table
// in SQLite, keyed by resource name and session handle. The store is
// append-only with an optional per-resource cap: when configured, the
// oldest rows for a resource are pruned as new traffic arrives.
//
// A Recorder decouples the write path from the database: exchanges are
// queued on a buffered channel and flushed by a background goroutine,
// so a slow disk never stalls the instrument session. When the queue
// is full the exchange is dropped with a warning - history is
// diagnostics, not a system of record.
package history
