// Package domain defines the core business entities for Winnow.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document and its raw text
//   - Chunk: A bounded span of a document, the unit of retrieval
//   - ContextWindow: The cited passages handed to a generation step
//   - Config: The validated retrieval configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
