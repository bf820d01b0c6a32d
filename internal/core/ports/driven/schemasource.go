package driven

import "github.com/GAM-team/gam/internal/core/domain"

// SchemaRegistrar is the registration half of the descriptor registry,
// as seen by schema declaration sources.
type SchemaRegistrar interface {
	// Register installs a descriptor under its element name.
	Register(d *domain.Descriptor) error

	// Resolve looks up the descriptor registered for an element name.
	Resolve(name domain.QName) (*domain.Descriptor, bool)
}

// SchemaSource installs descriptors declared outside Go code.
type SchemaSource interface {
	// Load reads the declarations at path and registers them.
	// Returns the descriptors registered, in declaration order.
	Load(path string, reg SchemaRegistrar) ([]*domain.Descriptor, error)
}
