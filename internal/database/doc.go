// Package database provides SQLite-based storage for crawl sessions.
//
// This package implements the CrawlDB, which stores:
//   - Session records with settings and result counts
//   - Per-page records with text hashes for change detection
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Storing text hashes rather than full page text keeps the database
// small; the corpus file is the canonical text artifact, the database
// exists for history and comparison between runs.
package database
