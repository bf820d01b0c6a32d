package services

import (
	"fmt"
	"io"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
	"github.com/GAM-team/gam/internal/core/ports/driving"
	"github.com/GAM-team/gam/internal/logger"
)

// Ensure CodecService implements the interface.
var _ driving.Codec = (*CodecService)(nil)

// CodecService glues the XML reader and writer to the decoder and encoder.
type CodecService struct {
	registry Resolver
	reader   driven.ElementReader
	writer   driven.ElementWriter
	decoder  *Decoder
	encoder  *Encoder
}

// NewCodecService creates a codec service.
func NewCodecService(registry Resolver, reader driven.ElementReader, writer driven.ElementWriter) *CodecService {
	return &CodecService{
		registry: registry,
		reader:   reader,
		writer:   writer,
		decoder:  NewDecoder(registry),
		encoder:  NewEncoder(),
	}
}

// Decode binds an element tree to desc.
func (s *CodecService) Decode(el *domain.Element, desc *domain.Descriptor) (*domain.Object, error) {
	return s.decoder.Decode(el, desc)
}

// DecodeWithWarnings binds an element tree to desc and reports demoted fields.
func (s *CodecService) DecodeWithWarnings(
	el *domain.Element,
	desc *domain.Descriptor,
) (*domain.Object, []error, error) {
	return s.decoder.DecodeWithWarnings(el, desc)
}

// Encode turns an object into an element tree.
func (s *CodecService) Encode(obj *domain.Object) (*domain.Element, error) {
	return s.encoder.Encode(obj)
}

// Parse reads a document and decodes its root. With a nil desc the root's
// type is resolved through the registry.
func (s *CodecService) Parse(r io.Reader, desc *domain.Descriptor) (*domain.Object, error) {
	logger.Section("Decode")

	root, err := s.reader.Read(r)
	if err != nil {
		return nil, err
	}
	logger.Debug("Root element: %s", root.Name)

	if desc == nil {
		resolved, ok := s.resolve(root.Name)
		if !ok {
			return nil, fmt.Errorf("%w: no type registered for %s", domain.ErrSchemaMismatch, root.Name)
		}
		desc = resolved
	}
	logger.Debug("Decoding as %s", desc.TypeName())

	obj, warnings, err := s.decoder.DecodeWithWarnings(root, desc)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn("%v", w)
	}
	return obj, nil
}

// Render encodes obj and writes it as a document.
func (s *CodecService) Render(w io.Writer, obj *domain.Object) error {
	el, err := s.encoder.Encode(obj)
	if err != nil {
		return err
	}
	return s.writer.Write(w, el)
}

// ReadElement parses a document without binding it.
func (s *CodecService) ReadElement(r io.Reader) (*domain.Element, error) {
	return s.reader.Read(r)
}

// WriteElement writes an element tree as a document.
func (s *CodecService) WriteElement(w io.Writer, el *domain.Element) error {
	return s.writer.Write(w, el)
}

func (s *CodecService) resolve(name domain.QName) (*domain.Descriptor, bool) {
	if s.registry == nil {
		return nil, false
	}
	return s.registry.Resolve(name)
}
