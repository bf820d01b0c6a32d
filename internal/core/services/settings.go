package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
	"github.com/GAM-team/gam/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyOutputIndent    = "output.indent"
	keySchemaPaths     = "schemas.paths"
	keyBatchMaxEntries = "batch.max_entries"
	keyJournalBackend  = "journal.backend"
	keyJournalDir      = "journal.dir"
	keyTransportRate   = "transport.requests_per_second"
	keyTransportBurst  = "transport.burst"
	keyAccessToken     = "auth.access_token"

	// namespacePrefix keys map a preferred prefix to a namespace URI,
	// e.g. namespaces.gd = "http://schemas.google.com/g/2005".
	namespacePrefix = "namespaces."
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Output: domain.OutputSettings{
			Indent:   s.getIndent(defaults.Output.Indent),
			Prefixes: s.getPrefixes(),
		},
		Schemas: domain.SchemaSettings{
			Paths: s.configStore.GetStringSlice(keySchemaPaths),
		},
		Batch: domain.BatchSettings{
			MaxEntries: s.getInt(keyBatchMaxEntries, defaults.Batch.MaxEntries),
		},
		Journal: domain.JournalSettings{
			Backend: s.getJournalBackend(defaults.Journal.Backend),
			Dir:     s.configStore.GetString(keyJournalDir),
		},
		Transport: domain.TransportSettings{
			RequestsPerSecond: s.getFloat(keyTransportRate, defaults.Transport.RequestsPerSecond),
			Burst:             s.getInt(keyTransportBurst, defaults.Transport.Burst),
			AccessToken:       s.configStore.GetString(keyAccessToken),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if !settings.Journal.Backend.IsValid() {
		return fmt.Errorf("%w: journal backend %q", domain.ErrInvalidInput, settings.Journal.Backend)
	}

	if err := s.configStore.Set(keyOutputIndent, settings.Output.Indent); err != nil {
		return fmt.Errorf("save output indent: %w", err)
	}
	for uri, prefix := range settings.Output.Prefixes {
		if err := s.configStore.Set(namespacePrefix+prefix, uri); err != nil {
			return fmt.Errorf("save namespace %s: %w", prefix, err)
		}
	}

	if err := s.configStore.Set(keySchemaPaths, settings.Schemas.Paths); err != nil {
		return fmt.Errorf("save schema paths: %w", err)
	}
	if err := s.configStore.Set(keyBatchMaxEntries, settings.Batch.MaxEntries); err != nil {
		return fmt.Errorf("save batch max_entries: %w", err)
	}

	if err := s.configStore.Set(keyJournalBackend, settings.Journal.Backend.String()); err != nil {
		return fmt.Errorf("save journal backend: %w", err)
	}
	if err := s.configStore.Set(keyJournalDir, settings.Journal.Dir); err != nil {
		return fmt.Errorf("save journal dir: %w", err)
	}

	if err := s.configStore.Set(keyTransportRate, settings.Transport.RequestsPerSecond); err != nil {
		return fmt.Errorf("save transport rate: %w", err)
	}
	if err := s.configStore.Set(keyTransportBurst, settings.Transport.Burst); err != nil {
		return fmt.Errorf("save transport burst: %w", err)
	}
	if settings.Transport.AccessToken != "" {
		if err := s.configStore.Set(keyAccessToken, settings.Transport.AccessToken); err != nil {
			return fmt.Errorf("save access token: %w", err)
		}
	}

	return nil
}

// Set updates one setting from its string form. Values are validated
// before anything is written. An empty namespace value removes the prefix.
func (s *SettingsService) Set(key, value string) error {
	switch key {
	case keyOutputIndent:
		return s.configStore.Set(key, unescapeIndent(value))

	case keySchemaPaths:
		var paths []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		return s.configStore.Set(key, paths)

	case keyBatchMaxEntries, keyTransportBurst:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, n)

	case keyTransportRate:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, f)

	case keyJournalBackend:
		backend := domain.JournalBackend(value)
		if !backend.IsValid() {
			return fmt.Errorf("%w: unknown journal backend %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, backend.String())

	case keyJournalDir, keyAccessToken:
		return s.configStore.Set(key, value)
	}

	if prefix, ok := strings.CutPrefix(key, namespacePrefix); ok && prefix != "" {
		if strings.ContainsAny(prefix, ".: ") {
			return fmt.Errorf("%w: invalid namespace prefix %q", domain.ErrInvalidInput, prefix)
		}
		if value == "" {
			return s.configStore.Delete(key)
		}
		return s.configStore.Set(key, value)
	}

	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getIndent(defaultVal string) string {
	// an explicitly empty indent means compact output
	if _, exists := s.configStore.Get(keyOutputIndent); !exists {
		return defaultVal
	}
	return s.configStore.GetString(keyOutputIndent)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getJournalBackend(defaultVal domain.JournalBackend) domain.JournalBackend {
	val := s.configStore.GetString(keyJournalBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.JournalBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// getPrefixes inverts namespaces.<prefix> = uri into uri -> prefix.
func (s *SettingsService) getPrefixes() map[string]string {
	prefixes := make(map[string]string)
	for _, key := range s.configStore.Keys(namespacePrefix) {
		uri := s.configStore.GetString(key)
		if uri == "" {
			continue
		}
		if _, taken := prefixes[uri]; taken {
			continue
		}
		prefixes[uri] = strings.TrimPrefix(key, namespacePrefix)
	}
	return prefixes
}

// unescapeIndent lets the shell pass "\t" for a tab.
func unescapeIndent(v string) string {
	return strings.ReplaceAll(v, `\t`, "\t")
}
