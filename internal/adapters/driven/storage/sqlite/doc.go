// Package sqlite provides a durable SQLite-backed implementation of the
// driven.VectorStore port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Embedding records live in
// a single embeddings table with a uniqueness constraint on (path, kind).
// Vectors are stored as little-endian float32 blobs and similarity is scored
// in process, so the database needs no vector extension; a dim column lets
// similarity scans filter candidates of the wrong dimension in SQL.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in a schema_migrations table.
//
// # Data Location
//
// By default, the database is stored at ~/.canopy/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
