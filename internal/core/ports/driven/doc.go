// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - LexicalIndex: BM25 inverted index over chunk text
//   - VectorIndex: cosine-similarity index over chunk embeddings
//   - DocumentStore: document and chunk persistence
//   - Embedder: maps text to fixed-length vectors
//   - PostProcessorPipeline: turns documents into chunks
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the engine degrades explicitly, never silently:
//
//   - LLMService: query expansion. Without it, queries run unexpanded.
//   - Connector: bulk document sources (filesystem, GitHub).
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
