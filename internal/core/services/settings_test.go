package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAM-team/gam/internal/adapters/driven/storage/memory"
	"github.com/GAM-team/gam/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Output.Indent, settings.Output.Indent)
	assert.Empty(t, settings.Output.Prefixes)
	assert.Equal(t, defaults.Batch.MaxEntries, settings.Batch.MaxEntries)
	assert.Equal(t, domain.JournalSQLite, settings.Journal.Backend)
	assert.InDelta(t, defaults.Transport.RequestsPerSecond, settings.Transport.RequestsPerSecond, 0.0001)
	assert.Equal(t, defaults.Transport.Burst, settings.Transport.Burst)
	assert.Empty(t, settings.Transport.AccessToken)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("output.indent", "\t")
	_ = store.Set("schemas.paths", []string{"contacts.yaml"})
	_ = store.Set("batch.max_entries", 50)
	_ = store.Set("journal.backend", "memory")
	_ = store.Set("transport.requests_per_second", 1.5)
	_ = store.Set("namespaces.gd", "http://schemas.google.com/g/2005")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, "\t", settings.Output.Indent)
	assert.Equal(t, []string{"contacts.yaml"}, settings.Schemas.Paths)
	assert.Equal(t, 50, settings.Batch.MaxEntries)
	assert.Equal(t, domain.JournalMemory, settings.Journal.Backend)
	assert.InDelta(t, 1.5, settings.Transport.RequestsPerSecond, 0.0001)
	assert.Equal(t, "gd", settings.Output.Prefixes["http://schemas.google.com/g/2005"])
}

func TestSettingsService_Get_EmptyIndentMeansCompact(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("output.indent", "")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, "", settings.Output.Indent)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("journal.backend", "postgres")
	_ = store.Set("batch.max_entries", -4)
	_ = store.Set("transport.burst", "lots")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Journal.Backend, settings.Journal.Backend)
	assert.Equal(t, defaults.Batch.MaxEntries, settings.Batch.MaxEntries)
	assert.Equal(t, defaults.Transport.Burst, settings.Transport.Burst)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := &domain.AppSettings{
		Output: domain.OutputSettings{
			Indent:   "    ",
			Prefixes: map[string]string{"http://schemas.google.com/gdata/batch": "b"},
		},
		Schemas:   domain.SchemaSettings{Paths: []string{"a.yaml", "b.yaml"}},
		Batch:     domain.BatchSettings{MaxEntries: 100},
		Journal:   domain.JournalSettings{Backend: domain.JournalMemory, Dir: "/tmp/gam"},
		Transport: domain.TransportSettings{RequestsPerSecond: 2, Burst: 3, AccessToken: "ya29.token"},
	}

	require.NoError(t, service.Save(settings))

	retrieved, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings.Output, retrieved.Output)
	assert.Equal(t, settings.Schemas, retrieved.Schemas)
	assert.Equal(t, settings.Batch, retrieved.Batch)
	assert.Equal(t, settings.Journal, retrieved.Journal)
	assert.Equal(t, settings.Transport, retrieved.Transport)
}

func TestSettingsService_Save_InvalidBackend(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	settings := service.GetDefaults()
	settings.Journal.Backend = "postgres"

	err := service.Save(&settings)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, s *domain.AppSettings)
	}{
		{
			name: "indent with escaped tab", key: "output.indent", value: `\t`,
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, "\t", s.Output.Indent) },
		},
		{
			name: "schema paths", key: "schemas.paths", value: "a.yaml, b.yaml,,",
			check: func(t *testing.T, s *domain.AppSettings) {
				assert.Equal(t, []string{"a.yaml", "b.yaml"}, s.Schemas.Paths)
			},
		},
		{
			name: "max entries", key: "batch.max_entries", value: "25",
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, 25, s.Batch.MaxEntries) },
		},
		{
			name: "journal backend", key: "journal.backend", value: "memory",
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, domain.JournalMemory, s.Journal.Backend) },
		},
		{
			name: "rate", key: "transport.requests_per_second", value: "0.5",
			check: func(t *testing.T, s *domain.AppSettings) {
				assert.InDelta(t, 0.5, s.Transport.RequestsPerSecond, 0.0001)
			},
		},
		{
			name: "token", key: "auth.access_token", value: "ya29.abc",
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, "ya29.abc", s.Transport.AccessToken) },
		},
		{
			name: "namespace", key: "namespaces.atom", value: "http://www.w3.org/2005/Atom",
			check: func(t *testing.T, s *domain.AppSettings) {
				assert.Equal(t, "atom", s.Output.Prefixes["http://www.w3.org/2005/Atom"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())

			require.NoError(t, service.Set(tt.key, tt.value))

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"bad int", "batch.max_entries", "many"},
		{"zero int", "transport.burst", "0"},
		{"bad float", "transport.requests_per_second", "fast"},
		{"negative float", "transport.requests_per_second", "-1"},
		{"bad backend", "journal.backend", "redis"},
		{"bad prefix", "namespaces.a:b", "urn:x"},
		{"empty prefix", "namespaces.", "urn:x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			err := NewSettingsService(store).Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys(""))
		})
	}
}

func TestSettingsService_Set_EmptyNamespaceRemoves(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.Set("namespaces.gd", "http://schemas.google.com/g/2005"))

	require.NoError(t, service.Set("namespaces.gd", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Empty(t, settings.Output.Prefixes)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
