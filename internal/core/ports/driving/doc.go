// Package driving defines interfaces that external actors (CLI, embedding
// applications) use to interact with the data-binding core. These are the
// "driving" ports in hexagonal architecture terminology.
//
// Implementations of these interfaces live in internal/core/services.
package driving
