package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/GAM-team/gam/internal/core/ports/driving"
	"github.com/GAM-team/gam/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services bundles the core services the commands drive.
type Services struct {
	Codec    driving.Codec
	Registry driving.SchemaRegistry
	Batch    driving.BatchService
	Settings driving.SettingsService
}

// BootstrapFunc builds the services once flags are parsed. The returned
// cleanup runs after the command finishes.
type BootstrapFunc func(configDir string) (*Services, func(), error)

var (
	codecService    driving.Codec
	schemaRegistry  driving.SchemaRegistry
	batchService    driving.BatchService
	settingsService driving.SettingsService

	bootstrap BootstrapFunc
	cleanup   func()
)

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "gam",
	Short: "Bind GData XML feeds to typed objects",
	Long: `gam decodes and encodes GData and Atom XML documents through declarative
element descriptors, and builds, records and interprets GData batch feeds.

Built-in descriptors cover Atom, GData batch metadata and common gd: kinds.
More can be declared in YAML schema packs listed under schemas.paths.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Config directory (default ~/.gam)")
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	codecService = s.Codec
	schemaRegistry = s.Registry
	batchService = s.Batch
	settingsService = s.Settings
}

// SetBootstrap defers service construction until the root flags are known.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.Execute()
}

func setup(_ *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}
	if bootstrap == nil {
		return nil
	}
	services, done, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

var (
	errCodecUnavailable    = errors.New("codec not configured")
	errRegistryUnavailable = errors.New("schema registry not configured")
	errBatchUnavailable    = errors.New("batch service not configured")
	errSettingsUnavailable = errors.New("settings service not configured")
)
