package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GAM-team/gam/internal/core/domain"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "Inspect registered element descriptors",
}

var schemasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered descriptors",
	Long: `List every registered descriptor by element name, with its type name and
rule counts. Descriptors from schema packs appear alongside the built-ins;
a pack that re-declares an element replaces the built-in.`,
	Args: cobra.NoArgs,
	RunE: runSchemasList,
}

var schemasShowCmd = &cobra.Command{
	Use:   "show {NAMESPACE}LOCAL",
	Short: "Show the rules of one descriptor",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemasShow,
}

func init() {
	schemasCmd.AddCommand(schemasListCmd)
	schemasCmd.AddCommand(schemasShowCmd)
	rootCmd.AddCommand(schemasCmd)
}

func runSchemasList(cmd *cobra.Command, _ []string) error {
	if schemaRegistry == nil {
		return errRegistryUnavailable
	}

	descriptors := schemaRegistry.Descriptors()
	if len(descriptors) == 0 {
		cmd.Println("No descriptors registered.")
		return nil
	}

	cmd.Printf("Registered descriptors (%d):\n\n", len(descriptors))
	for _, d := range descriptors {
		cmd.Printf("  %s\n", d.Name())
		cmd.Printf("    Type: %s  Children: %d  Attributes: %d\n",
			d.TypeName(), len(d.Children()), len(d.Attrs()))
	}
	return nil
}

func runSchemasShow(cmd *cobra.Command, args []string) error {
	if schemaRegistry == nil {
		return errRegistryUnavailable
	}
	desc, err := resolveType(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("%s (%s)\n", desc.Name(), desc.TypeName())
	if parent := desc.Parent(); parent != nil {
		cmd.Printf("  Extends: %s\n", parent.TypeName())
	}
	for _, a := range desc.Attrs() {
		if a.Enum != nil {
			cmd.Printf("  @%s -> %s (enum, %d values)\n", a.Name, a.Field, a.Enum.Len())
			continue
		}
		cmd.Printf("  @%s -> %s\n", a.Name, a.Field)
	}
	for _, c := range desc.Children() {
		target := "element"
		if c.Target != nil {
			target = c.Target.TypeName()
		}
		cmd.Printf("  %s -> %s [%s] %s\n", c.Name, c.Field, c.Cardinality, target)
	}
	return nil
}

// resolveType parses a "{namespace}local" name and looks it up.
func resolveType(s string) (*domain.Descriptor, error) {
	name, err := domain.ParseQName(s)
	if err != nil {
		return nil, err
	}
	desc, ok := schemaRegistry.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: no descriptor registered for %s", domain.ErrNotFound, name)
	}
	return desc, nil
}
