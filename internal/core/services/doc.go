// Package services implements the driving port interfaces.
// Services contain the binding engine (registry, decoder, encoder) and
// orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no CGO or external dependencies beyond uuid.
package services
