package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.ElementWriter = (*Writer)(nil)

// XMLNamespace is bound to the reserved xml prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Writer serialises element trees.
type Writer struct {
	indent string
	hints  map[string]string
}

// NewWriter creates a writer. indent is the per-level indentation; empty
// writes compact output. hints maps namespace URIs to preferred prefixes.
func NewWriter(indent string, hints map[string]string) *Writer {
	h := make(map[string]string, len(hints))
	for uri, prefix := range hints {
		h[uri] = prefix
	}
	return &Writer{indent: indent, hints: h}
}

// Write emits an XML declaration followed by root. All namespace
// declarations go on the root element. Elements holding both text and
// children are written compact, with everything inside them, so indentation
// never leaks into their text.
func (w *Writer) Write(out io.Writer, root *domain.Element) error {
	if root == nil {
		return fmt.Errorf("%w: nothing to write", domain.ErrInvalidInput)
	}
	if _, err := io.WriteString(out, xml.Header); err != nil {
		return err
	}

	p := &printer{
		out:    out,
		enc:    xml.NewEncoder(out),
		indent: w.indent,
		ns:     w.bind(root),
	}
	if err := p.encode(root, 0, w.indent != ""); err != nil {
		return err
	}
	if err := p.enc.Flush(); err != nil {
		return err
	}
	if w.indent != "" {
		_, err := io.WriteString(out, "\n")
		return err
	}
	return nil
}

// bindings is the prefix assignment for one document.
type bindings struct {
	defaultNS string
	prefixes  map[string]string // uri -> prefix
	order     []string          // uris in first-use order
}

// bind walks the tree once and assigns a prefix to every namespace.
func (w *Writer) bind(root *domain.Element) *bindings {
	var elementNS, attrNS []string
	seen := map[string]bool{}
	seenAttr := map[string]bool{}
	unqualified := false

	var walk func(el *domain.Element)
	walk = func(el *domain.Element) {
		if el.Name.Space == "" {
			unqualified = true
		} else if !seen[el.Name.Space] {
			seen[el.Name.Space] = true
			elementNS = append(elementNS, el.Name.Space)
		}
		for _, a := range el.Attrs {
			if a.Name.Space == "" || a.Name.Space == XMLNamespace || seenAttr[a.Name.Space] {
				continue
			}
			seenAttr[a.Name.Space] = true
			attrNS = append(attrNS, a.Name.Space)
		}
		for _, c := range el.Children {
			walk(c)
		}
	}
	walk(root)

	b := &bindings{prefixes: map[string]string{}}
	// an unqualified element anywhere rules out a default namespace
	if !unqualified {
		b.defaultNS = root.Name.Space
	}

	taken := map[string]bool{"xml": true, "xmlns": true}
	var need []string
	for _, uri := range elementNS {
		if uri != b.defaultNS {
			need = append(need, uri)
		}
	}
	for _, uri := range attrNS {
		// attributes never take the default namespace
		if !seen[uri] || uri == b.defaultNS {
			need = append(need, uri)
		}
		seen[uri] = true
	}

	for _, uri := range need {
		if _, done := b.prefixes[uri]; done {
			continue
		}
		prefix, ok := w.hints[uri]
		if !ok || !isNCName(prefix) || taken[prefix] {
			prefix = ""
		}
		for n := 1; prefix == ""; n++ {
			candidate := "ns" + strconv.Itoa(n)
			if !taken[candidate] && !w.hintedElsewhere(candidate, uri) {
				prefix = candidate
			}
		}
		taken[prefix] = true
		b.prefixes[uri] = prefix
		b.order = append(b.order, uri)
	}
	return b
}

// hintedElsewhere keeps generated prefixes from stealing a configured one.
func (w *Writer) hintedElsewhere(prefix, uri string) bool {
	for u, p := range w.hints {
		if p == prefix && u != uri {
			return true
		}
	}
	return false
}

func (b *bindings) elementName(n domain.QName) string {
	if n.Space == "" || n.Space == b.defaultNS {
		return n.Local
	}
	return b.prefixes[n.Space] + ":" + n.Local
}

func (b *bindings) attrName(n domain.QName) string {
	switch n.Space {
	case "":
		return n.Local
	case XMLNamespace:
		return "xml:" + n.Local
	default:
		return b.prefixes[n.Space] + ":" + n.Local
	}
}

// printer writes one document. Indentation goes straight to out, between
// encoder flushes, so it is never escaped.
type printer struct {
	out    io.Writer
	enc    *xml.Encoder
	indent string
	ns     *bindings
}

func (p *printer) newline(depth int) error {
	if err := p.enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(p.out, "\n"+strings.Repeat(p.indent, depth))
	return err
}

func (p *printer) encode(el *domain.Element, depth int, pretty bool) error {
	b := p.ns
	start := xml.StartElement{Name: xml.Name{Local: b.elementName(el.Name)}}
	if depth == 0 {
		if b.defaultNS != "" {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: b.defaultNS})
		}
		for _, uri := range b.order {
			start.Attr = append(start.Attr, xml.Attr{
				Name:  xml.Name{Local: "xmlns:" + b.prefixes[uri]},
				Value: uri,
			})
		}
	}
	for _, a := range el.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: b.attrName(a.Name)}, Value: a.Value})
	}

	if err := p.enc.EncodeToken(start); err != nil {
		return fmt.Errorf("writing %s: %w", el.Name, err)
	}

	hasChildren := len(el.Children) > 0
	if hasChildren && !isBlank(el.Text) {
		pretty = false
	}
	for _, c := range el.Children {
		if pretty {
			if err := p.newline(depth + 1); err != nil {
				return err
			}
		}
		if err := p.encode(c, depth+1, pretty); err != nil {
			return err
		}
	}
	// blank text beside children is dropped on read anyway
	if el.Text != "" && !(pretty && hasChildren) {
		if err := p.enc.EncodeToken(xml.CharData(el.Text)); err != nil {
			return fmt.Errorf("writing %s: %w", el.Name, err)
		}
	}
	if pretty && hasChildren {
		if err := p.newline(depth); err != nil {
			return err
		}
	}
	return p.enc.EncodeToken(start.End())
}

func isNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || r == '.' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}
