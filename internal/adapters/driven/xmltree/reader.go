package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.ElementReader = (*Reader)(nil)

// xmlnsSpace is how encoding/xml reports prefixed namespace declarations.
const xmlnsSpace = "xmlns"

// Reader parses documents into element trees.
type Reader struct{}

// NewReader creates a reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses the document's root element. Text of an element that has
// child elements is dropped when it is only whitespace; all other text is
// kept verbatim.
func (r *Reader) Read(in io.Reader) (*domain.Element, error) {
	decoder := xml.NewDecoder(in)

	var stack []*domain.Element
	var root *domain.Element
	rootClosed := false

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("%w: element %s after document end", domain.ErrMalformedDocument, t.Name.Local)
			}
			el := &domain.Element{
				Name:  domain.Name(t.Name.Space, t.Name.Local),
				Attrs: convertAttrs(t.Attr),
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else {
				root = el
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			el := stack[len(stack)-1]
			if len(el.Children) > 0 && isBlank(el.Text) {
				el.Text = ""
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				rootClosed = true
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isBlank(string(t)) {
					return nil, fmt.Errorf("%w: character data outside root element", domain.ErrMalformedDocument)
				}
				continue
			}
			stack[len(stack)-1].Text += string(t)
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root element", domain.ErrMalformedDocument)
	}
	if !rootClosed {
		return nil, fmt.Errorf("%w: unclosed element %s", domain.ErrMalformedDocument, stack[len(stack)-1].Name)
	}
	return root, nil
}

// convertAttrs drops namespace declarations; they are recreated on write.
func convertAttrs(in []xml.Attr) []domain.Attr {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Attr, 0, len(in))
	for _, a := range in {
		if a.Name.Space == xmlnsSpace || (a.Name.Space == "" && a.Name.Local == xmlnsSpace) {
			continue
		}
		out = append(out, domain.Attr{Name: domain.Name(a.Name.Space, a.Name.Local), Value: a.Value})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return r != '\uFEFF' && !unicode.IsSpace(r)
	}) < 0
}
