package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GAM-team/gam/internal/core/domain"
)

//nolint:gosec // G101: config key names, not credentials.
const (
	accessTokenKey  = "auth.access_token"
	namespaceKeyPfx = "namespaces."
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change output, schema, batch, journal and transport settings.

Settings live in config.toml under the config directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Long: `Change one setting by its dotted key.

Keys:
  output.indent                  indentation per level ("\t" for a tab, "" for compact)
  schemas.paths                  comma-separated YAML schema packs
  batch.max_entries              entry cap per batch feed
  journal.backend                sqlite or memory
  journal.dir                    data directory for the sqlite journal
  transport.requests_per_second  sustained request rate
  transport.burst                maximum burst
  auth.access_token              static bearer token
  namespaces.PREFIX              namespace URI written with PREFIX (empty removes)`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsUnavailable
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Output]")
	if settings.Output.Indent == "" {
		cmd.Printf("  Indent: (compact)\n")
	} else {
		cmd.Printf("  Indent: %q\n", settings.Output.Indent)
	}
	cmd.Println()

	cmd.Println("[Schemas]")
	if len(settings.Schemas.Paths) == 0 {
		cmd.Printf("  Paths: (none)\n")
	}
	for _, p := range settings.Schemas.Paths {
		cmd.Printf("  Path: %s\n", p)
	}
	cmd.Println()

	cmd.Println("[Batch]")
	cmd.Printf("  Max entries: %d\n", settings.Batch.MaxEntries)
	cmd.Println()

	cmd.Println("[Journal]")
	cmd.Printf("  Backend: %s\n", settings.Journal.Backend.Description())
	if settings.Journal.Backend == domain.JournalSQLite {
		dir := settings.Journal.Dir
		if dir == "" {
			dir = "~/.gam/data"
		}
		cmd.Printf("  Directory: %s\n", dir)
	}
	cmd.Println()

	cmd.Println("[Transport]")
	cmd.Printf("  Requests per second: %g\n", settings.Transport.RequestsPerSecond)
	cmd.Printf("  Burst: %d\n", settings.Transport.Burst)
	if settings.Transport.AccessToken != "" {
		cmd.Printf("  Access token: %s\n", maskAPIKey(settings.Transport.AccessToken))
	} else {
		cmd.Printf("  Access token: (not set)\n")
	}
	cmd.Println()

	if len(settings.Output.Prefixes) > 0 {
		cmd.Println("[Namespaces]")
		uris := make([]string, 0, len(settings.Output.Prefixes))
		for uri := range settings.Output.Prefixes {
			uris = append(uris, uri)
		}
		sort.Slice(uris, func(i, j int) bool {
			return settings.Output.Prefixes[uris[i]] < settings.Output.Prefixes[uris[j]]
		})
		for _, uri := range uris {
			cmd.Printf("  %s: %s\n", settings.Output.Prefixes[uri], uri)
		}
		cmd.Println()
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsUnavailable
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if key == accessTokenKey {
		shown = maskAPIKey(value)
	}
	if strings.HasPrefix(key, namespaceKeyPfx) && value == "" {
		cmd.Printf("Removed %s\n", key)
		return nil
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
