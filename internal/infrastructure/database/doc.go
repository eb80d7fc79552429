// Package database manages Hearth's SQLite connection for the state
// history audit trail.
//
// The authoritative device state lives in the JSON device store; this
// database only records when states changed, so a failure to open it
// degrades the service to running without history rather than refusing
// to start.
//
// Open applies the schema idempotently, enables WAL mode and a busy
// timeout, and restricts the file to the owning user. The connection
// pool is pinned to a single connection because SQLite supports one
// writer.
package database
