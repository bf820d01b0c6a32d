// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ElementReader: Parses XML documents into element trees
//   - ElementWriter: Serialises element trees with namespace prefixes
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - JournalStore: Batch request persistence. Without it, batches cannot be recorded, replayed or sent.
//   - FeedTransport: Posts batch feeds. Without it, responses must be supplied as files.
//   - SchemaSource: Declarative schema packs. Without it, only the built-in declarations are registered.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or schema package
package driven
