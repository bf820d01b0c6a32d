// Package schemas collects the built-in element declarations.
//
// Each sub-package declares its descriptors as package variables and exposes
// a Register function that installs them into a registry at start-up:
//
//   - atom: the Atom syndication format (RFC 4287) core elements
//   - gdata: GData batch metadata and common gd: kinds
//
// Declarative schema packs loaded from YAML (see adapters/driven/schemafile)
// register after these and may replace them.
package schemas

import (
	"github.com/GAM-team/gam/internal/core/ports/driven"
	"github.com/GAM-team/gam/internal/schemas/atom"
	"github.com/GAM-team/gam/internal/schemas/gdata"
)

// RegisterBuiltins installs every built-in declaration.
func RegisterBuiltins(reg driven.SchemaRegistrar) error {
	if err := atom.Register(reg); err != nil {
		return err
	}
	return gdata.Register(reg)
}

// Prefixes returns the conventional prefix for each built-in namespace,
// keyed by namespace URI.
func Prefixes() map[string]string {
	return map[string]string{
		atom.Namespace:            atom.Prefix,
		gdata.Namespace:           gdata.Prefix,
		gdata.BatchNamespace:      gdata.BatchPrefix,
		gdata.OpenSearchNamespace: gdata.OpenSearchPrefix,
	}
}
