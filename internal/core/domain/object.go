package domain

import "fmt"

// Object is an instance conforming to a Descriptor: declared attribute
// values, declared children, inline text and whatever structure the
// descriptor did not recognise.
//
// A child Object belongs to exactly one parent. Objects are not safe for
// concurrent mutation.
type Object struct {
	desc *Descriptor

	attrs map[string]string
	one   map[string]*Object
	many  map[string][]*Object

	// Text is the element's inline character content.
	Text string
	// Extensions holds child elements with no matching rule, in source order.
	Extensions []*Element
	// ExtensionAttrs holds attributes with no matching rule, in source order.
	ExtensionAttrs []Attr
}

// NewObject allocates an empty object of the described type.
func NewObject(d *Descriptor) *Object {
	return &Object{
		desc:  d,
		attrs: make(map[string]string),
		one:   make(map[string]*Object),
		many:  make(map[string][]*Object),
	}
}

// Descriptor returns the object's type.
func (o *Object) Descriptor() *Descriptor { return o.desc }

// Name returns the element name the object encodes to.
func (o *Object) Name() QName { return o.desc.Name() }

// Attr returns a declared attribute field. Enum-backed fields hold the symbol.
func (o *Object) Attr(field string) (string, bool) {
	v, ok := o.attrs[field]
	return v, ok
}

// SetAttr sets a declared attribute field.
func (o *Object) SetAttr(field, value string) error {
	if _, ok := o.desc.AttrField(field); !ok {
		return &FieldError{Type: o.desc.Name(), Field: field, Err: ErrUnknownField}
	}
	o.attrs[field] = value
	return nil
}

// ClearAttr unsets a declared attribute field.
func (o *Object) ClearAttr(field string) {
	delete(o.attrs, field)
}

// Child returns a single-valued child field, or nil when unset.
func (o *Object) Child(field string) *Object {
	return o.one[field]
}

// SetChild sets a single-valued child field. A nil child clears it.
func (o *Object) SetChild(field string, child *Object) error {
	rule, err := o.rule(field, One)
	if err != nil {
		return err
	}
	if child == nil {
		delete(o.one, field)
		return nil
	}
	if err := checkChild(rule, child); err != nil {
		return err
	}
	o.one[field] = child
	return nil
}

// Children returns a sequence-valued child field. The slice is a copy.
func (o *Object) Children(field string) []*Object {
	return append([]*Object(nil), o.many[field]...)
}

// AppendChild appends to a sequence-valued child field.
func (o *Object) AppendChild(field string, child *Object) error {
	rule, err := o.rule(field, Many)
	if err != nil {
		return err
	}
	if child == nil {
		return &FieldError{Type: o.desc.Name(), Field: field, Err: ErrInvalidInput}
	}
	if err := checkChild(rule, child); err != nil {
		return err
	}
	o.many[field] = append(o.many[field], child)
	return nil
}

// SetChildren replaces a sequence-valued child field.
func (o *Object) SetChildren(field string, children []*Object) error {
	rule, err := o.rule(field, Many)
	if err != nil {
		return err
	}
	for _, c := range children {
		if c == nil {
			return &FieldError{Type: o.desc.Name(), Field: field, Err: ErrInvalidInput}
		}
		if err := checkChild(rule, c); err != nil {
			return err
		}
	}
	if len(children) == 0 {
		delete(o.many, field)
		return nil
	}
	o.many[field] = append([]*Object(nil), children...)
	return nil
}

// ChildText is a convenience for leaf children: the text of a
// single-valued child, or "" when unset.
func (o *Object) ChildText(field string) string {
	if c := o.one[field]; c != nil {
		return c.Text
	}
	return ""
}

// SetChildText sets a single-valued child to a new leaf holding text.
func (o *Object) SetChildText(field, text string) error {
	rule, err := o.rule(field, One)
	if err != nil {
		return err
	}
	target := rule.Target
	if target == nil {
		target = Leaf(rule.Name)
	}
	child := NewObject(target)
	child.Text = text
	o.one[field] = child
	return nil
}

// IsEmpty reports whether nothing is set on the object.
func (o *Object) IsEmpty() bool {
	return len(o.attrs) == 0 && len(o.one) == 0 && len(o.many) == 0 &&
		o.Text == "" && len(o.Extensions) == 0 && len(o.ExtensionAttrs) == 0
}

// Clone returns a deep copy of the object graph.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := NewObject(o.desc)
	for k, v := range o.attrs {
		out.attrs[k] = v
	}
	for k, v := range o.one {
		out.one[k] = v.Clone()
	}
	for k, vs := range o.many {
		cp := make([]*Object, len(vs))
		for i, v := range vs {
			cp[i] = v.Clone()
		}
		out.many[k] = cp
	}
	out.Text = o.Text
	for _, e := range o.Extensions {
		out.Extensions = append(out.Extensions, e.Clone())
	}
	out.ExtensionAttrs = append([]Attr(nil), o.ExtensionAttrs...)
	return out
}

// Equal compares two objects field for field. Types compare by element
// name and type name; extension attributes compare as a set.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.desc.Name() != other.desc.Name() || o.desc.TypeName() != other.desc.TypeName() {
		return false
	}
	if o.Text != other.Text || len(o.attrs) != len(other.attrs) {
		return false
	}
	for k, v := range o.attrs {
		if ov, ok := other.attrs[k]; !ok || ov != v {
			return false
		}
	}
	if len(o.one) != len(other.one) {
		return false
	}
	for k, v := range o.one {
		if !v.Equal(other.one[k]) {
			return false
		}
	}
	if len(o.many) != len(other.many) {
		return false
	}
	for k, vs := range o.many {
		ovs := other.many[k]
		if len(vs) != len(ovs) {
			return false
		}
		for i := range vs {
			if !vs[i].Equal(ovs[i]) {
				return false
			}
		}
	}
	if len(o.Extensions) != len(other.Extensions) {
		return false
	}
	for i := range o.Extensions {
		if !o.Extensions[i].Equal(other.Extensions[i]) {
			return false
		}
	}
	return sameAttrSet(o.ExtensionAttrs, other.ExtensionAttrs)
}

func (o *Object) rule(field string, want Cardinality) (ChildRule, error) {
	rule, ok := o.desc.ChildField(field)
	if !ok {
		return ChildRule{}, &FieldError{Type: o.desc.Name(), Field: field, Err: ErrUnknownField}
	}
	if rule.Cardinality != want {
		return ChildRule{}, &FieldError{
			Type:  o.desc.Name(),
			Field: field,
			Err:   fmt.Errorf("%w: field holds %s value", ErrInvalidInput, rule.Cardinality),
		}
	}
	return rule, nil
}

func checkChild(rule ChildRule, child *Object) error {
	if child.Name() != rule.Name {
		return &FieldError{
			Type:  rule.Name,
			Field: rule.Field,
			Value: child.Name().String(),
			Err:   ErrSchemaMismatch,
		}
	}
	return nil
}
