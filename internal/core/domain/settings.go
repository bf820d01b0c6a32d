package domain

const unknownDescription = "Unknown"

// JournalBackend selects where batch request feeds are remembered between
// building a batch and interpreting its response.
type JournalBackend string

// Available journal backends.
const (
	// JournalSQLite persists journals in a local SQLite database.
	JournalSQLite JournalBackend = "sqlite"

	// JournalMemory keeps journals for the lifetime of the process only.
	JournalMemory JournalBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b JournalBackend) IsValid() bool {
	switch b {
	case JournalSQLite, JournalMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b JournalBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b JournalBackend) Description() string {
	switch b {
	case JournalSQLite:
		return "SQLite (persistent)"
	case JournalMemory:
		return "Memory (process lifetime)"
	default:
		return unknownDescription
	}
}

// OutputSettings controls how XML is written.
type OutputSettings struct {
	// Indent is the per-level indentation. Empty writes compact XML.
	Indent string

	// Prefixes maps namespace URIs to preferred prefixes.
	Prefixes map[string]string
}

// SchemaSettings lists declarative schema packs loaded at start-up.
type SchemaSettings struct {
	// Paths are YAML schema pack files, loaded in order.
	Paths []string
}

// BatchSettings holds batch construction limits.
type BatchSettings struct {
	// MaxEntries caps the number of entries in one feed.
	MaxEntries int
}

// JournalSettings holds batch journal configuration.
type JournalSettings struct {
	// Backend selects the journal implementation.
	Backend JournalBackend

	// Dir is the data directory for persistent backends.
	// Empty means ~/.gam/data.
	Dir string
}

// TransportSettings holds feed transport configuration.
type TransportSettings struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// Burst is the maximum burst size.
	Burst int

	// AccessToken is a static bearer token. Empty sends unauthenticated requests.
	AccessToken string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Output    OutputSettings
	Schemas   SchemaSettings
	Batch     BatchSettings
	Journal   JournalSettings
	Transport TransportSettings
}

// DefaultMaxBatchEntries is the entry cap GData services commonly enforce.
const DefaultMaxBatchEntries = 1000

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Output: OutputSettings{
			Indent:   "  ",
			Prefixes: map[string]string{},
		},
		Batch: BatchSettings{
			MaxEntries: DefaultMaxBatchEntries,
		},
		Journal: JournalSettings{
			Backend: JournalSQLite,
		},
		Transport: TransportSettings{
			RequestsPerSecond: 5.0,
			Burst:             10,
		},
	}
}

// AllJournalBackends returns all available journal backends.
func AllJournalBackends() []JournalBackend {
	return []JournalBackend{
		JournalSQLite,
		JournalMemory,
	}
}
