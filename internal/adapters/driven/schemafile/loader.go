package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
	"github.com/GAM-team/gam/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.SchemaSource = (*Loader)(nil)

// Pack is the YAML document layout.
type Pack struct {
	Namespace  string            `yaml:"namespace,omitempty"`
	Namespaces map[string]string `yaml:"namespaces,omitempty"`
	Enums      map[string]Enum   `yaml:"enums,omitempty"`
	Types      []Type            `yaml:"types"`
}

// Enum is a controlled vocabulary. URIs are appended to Prefix.
type Enum struct {
	Prefix string      `yaml:"prefix,omitempty"`
	Values []EnumValue `yaml:"values"`
}

// EnumValue is one URI/symbol pair.
type EnumValue struct {
	URI    string `yaml:"uri"`
	Symbol string `yaml:"symbol"`
}

// Type declares one element type.
type Type struct {
	Element    string      `yaml:"element"`
	Name       string      `yaml:"name,omitempty"`
	Extends    string      `yaml:"extends,omitempty"`
	Attributes []Attribute `yaml:"attributes,omitempty"`
	Children   []Child     `yaml:"children,omitempty"`
}

// Attribute declares an attribute field.
type Attribute struct {
	Field string `yaml:"field"`
	Name  string `yaml:"name"`
	Enum  string `yaml:"enum,omitempty"`
}

// Child declares a child element field. Type names the target element;
// empty means the registry decides at decode time.
type Child struct {
	Field string `yaml:"field"`
	Name  string `yaml:"name"`
	Many  bool   `yaml:"many,omitempty"`
	Type  string `yaml:"type,omitempty"`
}

// Loader reads schema packs from files.
type Loader struct{}

// NewLoader creates a loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the pack at path and registers its types.
func (l *Loader) Load(path string, reg driven.SchemaRegistrar) ([]*domain.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema pack: %w", err)
	}
	logger.Debug("Schema pack: loading %s", path)
	descs, err := Install(data, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return descs, nil
}

// Parse decodes a pack, rejecting unknown keys.
func Parse(data []byte) (*Pack, error) {
	var pack Pack
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pack); err != nil {
		if errors.Is(err, io.EOF) {
			return &pack, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return &pack, nil
}

// Install parses a pack and registers its types in order.
func Install(data []byte, reg driven.SchemaRegistrar) ([]*domain.Descriptor, error) {
	pack, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return pack.Install(reg)
}

// Install builds and registers the pack's types in order.
func (p *Pack) Install(reg driven.SchemaRegistrar) ([]*domain.Descriptor, error) {
	enums := make(map[string]*domain.EnumTable, len(p.Enums))
	for name, e := range p.Enums {
		if len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: enum %q has no values", domain.ErrInvalidInput, name)
		}
		pairs := make([]domain.EnumPair, 0, len(e.Values))
		for _, v := range e.Values {
			if v.URI == "" || v.Symbol == "" {
				return nil, fmt.Errorf("%w: enum %q needs uri and symbol on every value", domain.ErrInvalidInput, name)
			}
			pairs = append(pairs, domain.EnumPair{URI: e.Prefix + v.URI, Symbol: v.Symbol})
		}
		enums[name] = domain.NewEnumTable(pairs...)
	}

	var out []*domain.Descriptor
	for i, t := range p.Types {
		d, err := p.build(t, enums, reg)
		if err != nil {
			return out, fmt.Errorf("type %d (%s): %w", i, t.Element, err)
		}
		if err := reg.Register(d); err != nil {
			return out, err
		}
		logger.Debug("Schema pack: registered %s as %s", d.Name(), d.TypeName())
		out = append(out, d)
	}
	return out, nil
}

func (p *Pack) build(t Type, enums map[string]*domain.EnumTable, reg driven.SchemaRegistrar) (*domain.Descriptor, error) {
	name, err := p.qname(t.Element, p.Namespace)
	if err != nil {
		return nil, err
	}
	b := domain.NewDescriptor(name, t.Name)

	if t.Extends != "" {
		parent, err := p.lookup(t.Extends, reg)
		if err != nil {
			return nil, fmt.Errorf("extends: %w", err)
		}
		b.Extends(parent)
	}

	for _, attr := range t.Attributes {
		// bare attribute names are unqualified
		an, err := p.qname(attr.Name, "")
		if err != nil {
			return nil, err
		}
		if attr.Enum == "" {
			b.Attr(attr.Field, an)
			continue
		}
		table, ok := enums[attr.Enum]
		if !ok {
			return nil, fmt.Errorf("%w: attribute %s uses undeclared enum %q", domain.ErrInvalidInput, attr.Field, attr.Enum)
		}
		b.Enum(attr.Field, an, table)
	}

	for _, c := range t.Children {
		cn, err := p.qname(c.Name, p.Namespace)
		if err != nil {
			return nil, err
		}
		var target *domain.Descriptor
		if c.Type != "" {
			if target, err = p.lookup(c.Type, reg); err != nil {
				return nil, fmt.Errorf("child %s: %w", c.Field, err)
			}
		}
		card := domain.One
		if c.Many {
			card = domain.Many
		}
		b.Child(domain.ChildRule{Name: cn, Field: c.Field, Cardinality: card, Target: target})
	}

	return b.Build()
}

func (p *Pack) lookup(ref string, reg driven.SchemaRegistrar) (*domain.Descriptor, error) {
	name, err := p.qname(ref, p.Namespace)
	if err != nil {
		return nil, err
	}
	d, ok := reg.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: no type registered for %s", domain.ErrNotFound, name)
	}
	return d, nil
}

// qname expands "prefix:local", "{uri}local" or "local".
func (p *Pack) qname(s, defaultNS string) (domain.QName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.QName{}, fmt.Errorf("%w: empty name", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(s, "{") {
		return domain.ParseQName(s)
	}
	if prefix, local, ok := strings.Cut(s, ":"); ok {
		uri, known := p.Namespaces[prefix]
		if !known {
			return domain.QName{}, fmt.Errorf("%w: undeclared prefix %q in %q", domain.ErrInvalidInput, prefix, s)
		}
		return domain.Name(uri, local), nil
	}
	return domain.Name(defaultNS, s), nil
}
