// Package store persists event logs.
//
// Two implementations share the Log interface: Memory, for tests and
// one-shot CLI runs, and SQLite, an append-only table on disk.
//
// # Guarantees
//
//   - Append order is the log order. Events are read back ordered by an
//     insertion sequence number, never by timestamp, so replays see the
//     exact order the projections were computed from.
//   - Appends are idempotent on event id. Re-appending an id is a no-op
//     that reports false, even when the second copy differs.
//   - Payloads are stored as written, whitespace aside, so a log read
//     back projects byte-for-byte like the file it came from. The digest
//     column holds the canonical event digest.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One open connection: SQLite has a single writer
package store
