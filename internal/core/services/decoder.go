package services

import (
	"fmt"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/logger"
)

// Resolver finds the descriptor registered for an element name.
type Resolver interface {
	Resolve(name domain.QName) (*domain.Descriptor, bool)
}

// Decoder turns generic element trees into typed objects.
// Unknown children and attributes are preserved as extensions, never dropped.
type Decoder struct {
	resolver Resolver
}

// NewDecoder creates a decoder. A nil resolver disables polymorphic
// lookup and uses only the static child targets.
func NewDecoder(resolver Resolver) *Decoder {
	return &Decoder{resolver: resolver}
}

// Decode binds el to desc.
func (d *Decoder) Decode(el *domain.Element, desc *domain.Descriptor) (*domain.Object, error) {
	obj, _, err := d.DecodeWithWarnings(el, desc)
	return obj, err
}

// DecodeWithWarnings binds el to desc and returns the field-scoped problems
// that were demoted to extension attributes along the way.
func (d *Decoder) DecodeWithWarnings(el *domain.Element, desc *domain.Descriptor) (*domain.Object, []error, error) {
	if el == nil || desc == nil {
		return nil, nil, fmt.Errorf("%w: decode needs an element and a descriptor", domain.ErrInvalidInput)
	}
	if el.Name != desc.Name() {
		return nil, nil, fmt.Errorf("%w: expected %s, got %s", domain.ErrSchemaMismatch, desc.Name(), el.Name)
	}

	var warnings []error
	obj, err := d.decode(el, desc, &warnings)
	if err != nil {
		return nil, nil, err
	}
	return obj, warnings, nil
}

func (d *Decoder) decode(el *domain.Element, desc *domain.Descriptor, warnings *[]error) (*domain.Object, error) {
	obj := domain.NewObject(desc)

	for _, attr := range el.Attrs {
		rule, ok := desc.AttrRule(attr.Name)
		if !ok {
			obj.ExtensionAttrs = append(obj.ExtensionAttrs, attr)
			continue
		}
		value := attr.Value
		if rule.Enum != nil {
			symbol, err := rule.Enum.ToSymbol(attr.Value)
			if err != nil {
				ferr := &domain.FieldError{Type: desc.Name(), Field: rule.Field, Value: attr.Value, Err: err}
				logger.Debug("Decode: demoting %v", ferr)
				*warnings = append(*warnings, ferr)
				obj.ExtensionAttrs = append(obj.ExtensionAttrs, attr)
				continue
			}
			value = symbol
		}
		if err := obj.SetAttr(rule.Field, value); err != nil {
			return nil, err
		}
	}

	for _, child := range el.Children {
		rule, ok := desc.ChildRule(child.Name)
		if !ok {
			obj.Extensions = append(obj.Extensions, child.Clone())
			continue
		}

		target := d.target(child.Name, rule)
		if target.Name() != child.Name {
			return nil, fmt.Errorf("%w: %s.%s targets %s, got %s",
				domain.ErrSchemaMismatch, desc.Name(), rule.Field, target.Name(), child.Name)
		}
		value, err := d.decode(child, target, warnings)
		if err != nil {
			return nil, err
		}

		if rule.Cardinality == domain.Many {
			err = obj.AppendChild(rule.Field, value)
		} else {
			if obj.Child(rule.Field) != nil {
				logger.Debug("Decode: %s.%s repeated, keeping last occurrence", desc.Name(), rule.Field)
			}
			err = obj.SetChild(rule.Field, value)
		}
		if err != nil {
			return nil, err
		}
	}

	obj.Text = el.Text
	return obj, nil
}

// target picks the child's type: registry first, so a more specific type
// registered under the same name wins; then the static rule; then a bare leaf.
func (d *Decoder) target(name domain.QName, rule domain.ChildRule) *domain.Descriptor {
	if d.resolver != nil {
		if desc, ok := d.resolver.Resolve(name); ok {
			return desc
		}
	}
	if rule.Target != nil {
		return rule.Target
	}
	return domain.Leaf(name)
}
