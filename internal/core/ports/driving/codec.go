package driving

import (
	"io"

	"github.com/GAM-team/gam/internal/core/domain"
)

// Codec converts between XML documents, generic element trees and typed objects.
type Codec interface {
	// Decode binds an element tree to the expected descriptor.
	Decode(el *domain.Element, desc *domain.Descriptor) (*domain.Object, error)

	// DecodeWithWarnings is Decode that also returns field-scoped problems
	// which were demoted to extensions rather than failing the decode.
	DecodeWithWarnings(el *domain.Element, desc *domain.Descriptor) (*domain.Object, []error, error)

	// Encode turns an object back into an element tree.
	Encode(obj *domain.Object) (*domain.Element, error)

	// Parse reads an XML document and decodes its root against desc.
	// A nil desc resolves the root's type through the registry.
	Parse(r io.Reader, desc *domain.Descriptor) (*domain.Object, error)

	// Render encodes obj and writes it as an XML document.
	Render(w io.Writer, obj *domain.Object) error

	// ReadElement parses an XML document without binding it to a type.
	ReadElement(r io.Reader) (*domain.Element, error)

	// WriteElement writes a generic element tree as an XML document.
	WriteElement(w io.Writer, el *domain.Element) error
}
