package driven

import (
	"io"

	"github.com/GAM-team/gam/internal/core/domain"
)

// ElementReader parses a well-formed XML document into a generic element tree.
// Implementations return errors wrapping domain.ErrMalformedDocument.
type ElementReader interface {
	// Read parses the document's root element.
	Read(r io.Reader) (*domain.Element, error)
}

// ElementWriter serialises a generic element tree as an XML document.
type ElementWriter interface {
	// Write emits the element and its descendants.
	Write(w io.Writer, root *domain.Element) error
}
