package services

import (
	"fmt"

	"github.com/GAM-team/gam/internal/core/domain"
)

// Encoder turns typed objects into generic element trees.
//
// Output order is fixed: declared attributes, then extension attributes;
// declared children in declaration order, then extension children in their
// original order. Source interleaving of declared and extension children is
// not reconstructed.
type Encoder struct{}

// NewEncoder creates an encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode emits the element for obj and its descendants.
func (e *Encoder) Encode(obj *domain.Object) (*domain.Element, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: encode needs an object", domain.ErrInvalidInput)
	}
	desc := obj.Descriptor()
	el := domain.NewElement(desc.Name())

	for _, rule := range desc.Attrs() {
		value, ok := obj.Attr(rule.Field)
		if !ok {
			continue
		}
		if rule.Enum != nil {
			uri, err := rule.Enum.ToURI(value)
			if err != nil {
				return nil, &domain.FieldError{Type: desc.Name(), Field: rule.Field, Value: value, Err: err}
			}
			value = uri
		}
		el.Attrs = append(el.Attrs, domain.Attr{Name: rule.Name, Value: value})
	}

	for _, rule := range desc.Children() {
		var items []*domain.Object
		if rule.Cardinality == domain.Many {
			items = obj.Children(rule.Field)
		} else if c := obj.Child(rule.Field); c != nil {
			items = []*domain.Object{c}
		}
		for _, item := range items {
			child, err := e.Encode(item)
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		}
	}

	for _, ext := range obj.Extensions {
		el.Children = append(el.Children, ext.Clone())
	}
	for _, attr := range obj.ExtensionAttrs {
		// a declared value set after decode shadows the demoted original
		if _, dup := el.Attr(attr.Name); dup {
			continue
		}
		el.Attrs = append(el.Attrs, attr)
	}
	el.Text = obj.Text
	return el, nil
}
