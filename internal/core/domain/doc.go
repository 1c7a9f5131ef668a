// Package domain defines the core business entities for Canopy.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - EmbeddingItem: A stored embedding addressed by (path, kind)
//   - Kind: The embedding space a record belongs to
//   - PathStatus: Where a path stands in the vectorisation lifecycle
//   - ExclusionList: Glob patterns that keep paths out of the index
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
