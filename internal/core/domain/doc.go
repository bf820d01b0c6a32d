// Package domain defines the core data-binding and batch types for GAM.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - QName: namespace URI plus local name, the dispatch key for all schema resolution
//   - Element: the generic XML element tree exchanged with parsers and writers
//   - Descriptor: immutable description of how a type maps to an element
//   - Object: a typed instance of a Descriptor, with extension capture
//   - EnumTable: URI vocabulary to symbolic value mapping
//   - BatchFeed, BatchEntry: the batch request/response envelope
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
