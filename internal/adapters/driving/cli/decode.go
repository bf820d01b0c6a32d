package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/GAM-team/gam/internal/core/domain"
)

var (
	decodeType     string
	decodeJSON     bool
	decodeReencode bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode FILE",
	Short: "Decode an XML document into its typed fields",
	Long: `Decode an XML document and print the typed object it binds to.

The root element's type is looked up in the registry unless --type names
one in {namespace}local form. Use "-" to read standard input.

Output is a field summary on a terminal and JSON otherwise; --json forces
either. --reencode writes the decoded object back as XML instead, which
reproduces unknown elements and attributes verbatim.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeType, "type", "t", "", "Decode as this type ({namespace}local)")
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "Print JSON (default when output is not a terminal)")
	decodeCmd.Flags().BoolVar(&decodeReencode, "reencode", false, "Write the decoded object back as XML")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	if codecService == nil {
		return errCodecUnavailable
	}

	var desc *domain.Descriptor
	if decodeType != "" {
		if schemaRegistry == nil {
			return errRegistryUnavailable
		}
		d, err := resolveType(decodeType)
		if err != nil {
			return err
		}
		desc = d
	}

	in, closeIn, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeIn()

	obj, err := codecService.Parse(in, desc)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if decodeReencode {
		return codecService.Render(out, obj)
	}

	asJSON := decodeJSON
	if !cmd.Flags().Changed("json") {
		asJSON = !isTerminal(out)
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(newObjectView(obj))
	}
	printObject(cmd, "", newObjectView(obj))
	return nil
}

// objectView is the printable shape of a decoded object.
type objectView struct {
	Type           string                   `json:"type"`
	Element        string                   `json:"element"`
	Attrs          map[string]string        `json:"attrs,omitempty"`
	Fields         map[string]*objectView   `json:"fields,omitempty"`
	Lists          map[string][]*objectView `json:"lists,omitempty"`
	Text           string                   `json:"text,omitempty"`
	Extensions     []string                 `json:"extensions,omitempty"`
	ExtensionAttrs map[string]string        `json:"extension_attrs,omitempty"`

	// field order for the text summary
	order []string
}

func newObjectView(obj *domain.Object) *objectView {
	desc := obj.Descriptor()
	v := &objectView{
		Type:    desc.TypeName(),
		Element: desc.Name().String(),
		Text:    strings.TrimSpace(obj.Text),
	}

	for _, rule := range desc.Attrs() {
		value, ok := obj.Attr(rule.Field)
		if !ok {
			continue
		}
		if v.Attrs == nil {
			v.Attrs = make(map[string]string)
		}
		v.Attrs[rule.Field] = value
	}

	for _, rule := range desc.Children() {
		if rule.Cardinality == domain.Many {
			items := obj.Children(rule.Field)
			if len(items) == 0 {
				continue
			}
			if v.Lists == nil {
				v.Lists = make(map[string][]*objectView)
			}
			for _, item := range items {
				v.Lists[rule.Field] = append(v.Lists[rule.Field], newObjectView(item))
			}
			v.order = append(v.order, rule.Field)
			continue
		}
		child := obj.Child(rule.Field)
		if child == nil {
			continue
		}
		if v.Fields == nil {
			v.Fields = make(map[string]*objectView)
		}
		v.Fields[rule.Field] = newObjectView(child)
		v.order = append(v.order, rule.Field)
	}

	for _, ext := range obj.Extensions {
		v.Extensions = append(v.Extensions, ext.Name.String())
	}
	for _, attr := range obj.ExtensionAttrs {
		if v.ExtensionAttrs == nil {
			v.ExtensionAttrs = make(map[string]string)
		}
		v.ExtensionAttrs[attr.Name.String()] = attr.Value
	}
	return v
}

func printObject(cmd *cobra.Command, indent string, v *objectView) {
	cmd.Printf("%s%s (%s)\n", indent, v.Type, v.Element)
	inner := indent + "  "
	for _, key := range sortedKeys(v.Attrs) {
		cmd.Printf("%s@%s: %s\n", inner, key, v.Attrs[key])
	}
	if v.Text != "" {
		cmd.Printf("%stext: %s\n", inner, v.Text)
	}
	for _, field := range v.order {
		if child, ok := v.Fields[field]; ok {
			if isTextOnly(child) {
				cmd.Printf("%s%s: %s\n", inner, field, child.Text)
				continue
			}
			cmd.Printf("%s%s:\n", inner, field)
			printObject(cmd, inner+"  ", child)
			continue
		}
		items := v.Lists[field]
		cmd.Printf("%s%s: %d item(s)\n", inner, field, len(items))
		for _, item := range items {
			printObject(cmd, inner+"  ", item)
		}
	}
	for _, key := range sortedKeys(v.ExtensionAttrs) {
		cmd.Printf("%s@%s (unknown): %s\n", inner, key, v.ExtensionAttrs[key])
	}
	for _, name := range v.Extensions {
		cmd.Printf("%s%s (unknown)\n", inner, name)
	}
}

func isTextOnly(v *objectView) bool {
	return len(v.Attrs) == 0 && len(v.Fields) == 0 && len(v.Lists) == 0 &&
		len(v.Extensions) == 0 && len(v.ExtensionAttrs) == 0
}

// openInput opens path for reading, "-" meaning the command's input.
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
