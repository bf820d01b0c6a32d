package driving

import "github.com/GAM-team/gam/internal/core/domain"

// SchemaRegistry indexes descriptors by element name.
//
// Registration is last-registration-wins: re-registering a name replaces the
// mapping, which is how a specific type takes over a generic element name.
// All registration should complete during start-up, before Freeze.
type SchemaRegistry interface {
	// Register installs a descriptor under its element name.
	Register(d *domain.Descriptor) error

	// Resolve looks up the descriptor registered for an element name.
	// A miss is not exceptional.
	Resolve(name domain.QName) (*domain.Descriptor, bool)

	// New constructs an empty object of the type registered for name.
	New(name domain.QName) (*domain.Object, bool)

	// Descriptors returns all registered descriptors ordered by name.
	Descriptors() []*domain.Descriptor

	// Freeze ends registration; later Register calls fail.
	Freeze()
}
