package domain

import "fmt"

// Cardinality says whether a child field holds one value or a sequence.
type Cardinality int

const (
	// One fields hold at most one value. A repeated source element overwrites
	// the earlier one (last occurrence wins).
	One Cardinality = iota
	// Many fields hold an ordered sequence.
	Many
)

// String returns the string representation.
func (c Cardinality) String() string {
	if c == Many {
		return "many"
	}
	return "one"
}

// ChildRule binds a child element name to a field.
type ChildRule struct {
	// Name is the child element's qualified name.
	Name QName
	// Field is the object field the decoded child is stored under.
	Field string
	// Cardinality is One or Many.
	Cardinality Cardinality
	// Target describes the child. A nil target decodes the child as a bare
	// element holding only text and extensions unless the registry knows
	// a more specific type.
	Target *Descriptor
}

// AttrRule binds an XML attribute to a field.
type AttrRule struct {
	Name  QName
	Field string
	// Enum, when set, exposes the attribute's URI value as a symbol.
	Enum *EnumTable
}

// Descriptor is the immutable description of how a type maps to an XML element.
// Build descriptors with NewDescriptor.
type Descriptor struct {
	name     QName
	typeName string
	parent   *Descriptor

	children     []ChildRule
	childByName  map[QName]int
	childByField map[string]int

	attrs       []AttrRule
	attrByName  map[QName]int
	attrByField map[string]int
}

// Name returns the element name this type maps to.
func (d *Descriptor) Name() QName { return d.name }

// TypeName returns a human label for diagnostics, defaulting to the element name.
func (d *Descriptor) TypeName() string {
	if d.typeName != "" {
		return d.typeName
	}
	return d.name.String()
}

// Parent returns the descriptor this one was composed from, if any.
func (d *Descriptor) Parent() *Descriptor { return d.parent }

// Children returns the child rules in declaration order.
func (d *Descriptor) Children() []ChildRule {
	return append([]ChildRule(nil), d.children...)
}

// Attrs returns the attribute rules in declaration order.
func (d *Descriptor) Attrs() []AttrRule {
	return append([]AttrRule(nil), d.attrs...)
}

// ChildRule looks up the rule for a child element name.
func (d *Descriptor) ChildRule(name QName) (ChildRule, bool) {
	i, ok := d.childByName[name]
	if !ok {
		return ChildRule{}, false
	}
	return d.children[i], true
}

// ChildField looks up the rule for a child field name.
func (d *Descriptor) ChildField(field string) (ChildRule, bool) {
	i, ok := d.childByField[field]
	if !ok {
		return ChildRule{}, false
	}
	return d.children[i], true
}

// AttrRule looks up the rule for an attribute name.
func (d *Descriptor) AttrRule(name QName) (AttrRule, bool) {
	i, ok := d.attrByName[name]
	if !ok {
		return AttrRule{}, false
	}
	return d.attrs[i], true
}

// AttrField looks up the rule for an attribute field name.
func (d *Descriptor) AttrField(field string) (AttrRule, bool) {
	i, ok := d.attrByField[field]
	if !ok {
		return AttrRule{}, false
	}
	return d.attrs[i], true
}

// IsA reports whether d is other or was composed from it.
func (d *Descriptor) IsA(other *Descriptor) bool {
	for cur := d; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Leaf returns a descriptor with no rules: the element's text, attributes
// and children all land in the text slot and the extension slots.
func Leaf(name QName) *Descriptor {
	return NewDescriptor(name, "").MustBuild()
}

// DescriptorBuilder composes a Descriptor. Rules are a pure additive union
// by key: a key repeated by a subtype replaces the parent's rule in place.
type DescriptorBuilder struct {
	d   *Descriptor
	err error
}

// NewDescriptor starts a descriptor for the given element name.
func NewDescriptor(name QName, typeName string) *DescriptorBuilder {
	return &DescriptorBuilder{d: &Descriptor{
		name:         name,
		typeName:     typeName,
		childByName:  make(map[QName]int),
		childByField: make(map[string]int),
		attrByName:   make(map[QName]int),
		attrByField:  make(map[string]int),
	}}
}

// Extends copies the parent's rules into the descriptor being built.
// Call it before adding the subtype's own rules.
func (b *DescriptorBuilder) Extends(parent *Descriptor) *DescriptorBuilder {
	if parent == nil {
		return b
	}
	b.d.parent = parent
	for _, r := range parent.children {
		b.child(r)
	}
	for _, r := range parent.attrs {
		b.attr(r)
	}
	return b
}

// One declares a single-valued child.
func (b *DescriptorBuilder) One(field string, name QName, target *Descriptor) *DescriptorBuilder {
	return b.child(ChildRule{Name: name, Field: field, Cardinality: One, Target: target})
}

// Many declares a sequence-valued child.
func (b *DescriptorBuilder) Many(field string, name QName, target *Descriptor) *DescriptorBuilder {
	return b.child(ChildRule{Name: name, Field: field, Cardinality: Many, Target: target})
}

// Child declares a child from a complete rule.
func (b *DescriptorBuilder) Child(rule ChildRule) *DescriptorBuilder {
	return b.child(rule)
}

// Attr declares a raw string attribute.
func (b *DescriptorBuilder) Attr(field string, name QName) *DescriptorBuilder {
	return b.attr(AttrRule{Name: name, Field: field})
}

// Enum declares an attribute whose URI value is exposed as a symbol.
func (b *DescriptorBuilder) Enum(field string, name QName, table *EnumTable) *DescriptorBuilder {
	if table == nil {
		b.fail(fmt.Errorf("%w: enum attribute %s has no table", ErrInvalidInput, name))
		return b
	}
	return b.attr(AttrRule{Name: name, Field: field, Enum: table})
}

// Build returns the immutable descriptor.
func (b *DescriptorBuilder) Build() (*Descriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.d.name.Local == "" {
		return nil, fmt.Errorf("%w: descriptor has no element name", ErrInvalidInput)
	}
	d := b.d
	b.d = nil
	return d, nil
}

// MustBuild is Build for package-level schema declarations; it panics on error.
func (b *DescriptorBuilder) MustBuild() *Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

func (b *DescriptorBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *DescriptorBuilder) child(r ChildRule) *DescriptorBuilder {
	if r.Field == "" || r.Name.Local == "" {
		b.fail(fmt.Errorf("%w: child rule needs a field and a name", ErrInvalidInput))
		return b
	}
	if r.Target != nil && r.Target.Name() != r.Name {
		b.fail(fmt.Errorf("%w: child %s targets %s", ErrInvalidInput, r.Name, r.Target.Name()))
		return b
	}
	d := b.d
	if i, ok := d.childByName[r.Name]; ok {
		if j, taken := d.childByField[r.Field]; taken && j != i {
			b.fail(fmt.Errorf("%w: field %q bound to two child names", ErrInvalidInput, r.Field))
			return b
		}
		delete(d.childByField, d.children[i].Field)
		d.children[i] = r
		d.childByField[r.Field] = i
		return b
	}
	if _, ok := d.childByField[r.Field]; ok {
		b.fail(fmt.Errorf("%w: field %q bound to two child names", ErrInvalidInput, r.Field))
		return b
	}
	if _, ok := d.attrByField[r.Field]; ok {
		b.fail(fmt.Errorf("%w: field %q is already an attribute", ErrInvalidInput, r.Field))
		return b
	}
	d.childByName[r.Name] = len(d.children)
	d.childByField[r.Field] = len(d.children)
	d.children = append(d.children, r)
	return b
}

func (b *DescriptorBuilder) attr(r AttrRule) *DescriptorBuilder {
	if r.Field == "" || r.Name.Local == "" {
		b.fail(fmt.Errorf("%w: attribute rule needs a field and a name", ErrInvalidInput))
		return b
	}
	d := b.d
	if i, ok := d.attrByName[r.Name]; ok {
		if j, taken := d.attrByField[r.Field]; taken && j != i {
			b.fail(fmt.Errorf("%w: field %q bound to two attributes", ErrInvalidInput, r.Field))
			return b
		}
		delete(d.attrByField, d.attrs[i].Field)
		d.attrs[i] = r
		d.attrByField[r.Field] = i
		return b
	}
	if _, ok := d.attrByField[r.Field]; ok {
		b.fail(fmt.Errorf("%w: field %q bound to two attributes", ErrInvalidInput, r.Field))
		return b
	}
	if _, ok := d.childByField[r.Field]; ok {
		b.fail(fmt.Errorf("%w: field %q is already a child", ErrInvalidInput, r.Field))
		return b
	}
	d.attrByName[r.Name] = len(d.attrs)
	d.attrByField[r.Field] = len(d.attrs)
	d.attrs = append(d.attrs, r)
	return b
}
