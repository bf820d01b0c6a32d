package domain

// Attr is a single XML attribute.
type Attr struct {
	Name  QName
	Value string
}

// Element is the parser-level view of an XML element: the contract at the
// transport boundary before and after typed conversion.
type Element struct {
	Name     QName
	Attrs    []Attr
	Children []*Element
	Text     string
}

// NewElement creates an empty element with the given name.
func NewElement(name QName) *Element {
	return &Element{Name: name}
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name QName) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces the named attribute or appends it when absent.
func (e *Element) SetAttr(name QName, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// AddChild appends a child element and returns it.
func (e *Element) AddChild(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// Child returns the first child with the given name.
func (e *Element) Child(name QName) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of the element tree.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{Name: e.Name, Text: e.Text}
	if len(e.Attrs) > 0 {
		out.Attrs = append([]Attr(nil), e.Attrs...)
	}
	if len(e.Children) > 0 {
		out.Children = make([]*Element, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Equal reports observational equality: same name, text and children in
// order, and the same attribute set regardless of attribute order.
func (e *Element) Equal(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Name != other.Name || e.Text != other.Text {
		return false
	}
	if !sameAttrSet(e.Attrs, other.Attrs) {
		return false
	}
	if len(e.Children) != len(other.Children) {
		return false
	}
	for i := range e.Children {
		if !e.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

func sameAttrSet(a, b []Attr) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[QName]string, len(a))
	for _, attr := range a {
		seen[attr.Name] = attr.Value
	}
	for _, attr := range b {
		v, ok := seen[attr.Name]
		if !ok || v != attr.Value {
			return false
		}
	}
	return true
}
