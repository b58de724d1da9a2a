// Package sqlite persists documents and chunks in a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Chunk
// embeddings are stored alongside the text as little-endian float32
// blobs, so the in-memory indexes can be rebuilt at startup without
// calling the embedding provider again.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Tables: documents, chunks (one row per chunk,
// cascade-deleted with the document), and app_state (small key-value
// pairs such as the embedding model the collection was built with).
//
// # Data Location
//
// By default, the database is stored at ~/.winnow/winnow.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on database-level
// locking provided by SQLite in WAL mode.
package sqlite
