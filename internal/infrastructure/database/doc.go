// Package database manages the gateway's SQLite message store connection.
//
// It wraps database/sql with:
//   - Connection setup (WAL mode, busy timeout, foreign keys)
//   - Embedded SQL migrations applied at startup
//   - Health checks for the status endpoint
//
// SQLite is configured for a single writer and multiple readers, which
// matches the gateway's workload: one inbound message writer plus many
// concurrent inbox readers.
package database
