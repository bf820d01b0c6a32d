// Command gam decodes, encodes and batches GData XML feeds.
package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/GAM-team/gam/internal/adapters/driven/config/file"
	"github.com/GAM-team/gam/internal/adapters/driven/schemafile"
	"github.com/GAM-team/gam/internal/adapters/driven/storage/memory"
	"github.com/GAM-team/gam/internal/adapters/driven/storage/sqlite"
	transport "github.com/GAM-team/gam/internal/adapters/driven/transport/gdata"
	"github.com/GAM-team/gam/internal/adapters/driven/xmltree"
	"github.com/GAM-team/gam/internal/adapters/driving/cli"
	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
	"github.com/GAM-team/gam/internal/core/services"
	"github.com/GAM-team/gam/internal/logger"
	"github.com/GAM-team/gam/internal/schemas"
	"github.com/GAM-team/gam/internal/schemas/gdata"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(wire)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// wire builds the services from the config directory.
func wire(configDir string) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("settings: %w", err)
	}
	logger.Debug("Config: %s", configStore.Path())

	registry := services.NewRegistry()
	if err := schemas.RegisterBuiltins(registry); err != nil {
		return nil, nil, fmt.Errorf("built-in schemas: %w", err)
	}
	if err := gdata.RegisterEventKind(registry); err != nil {
		return nil, nil, fmt.Errorf("built-in schemas: %w", err)
	}
	loader := schemafile.NewLoader()
	for _, path := range settings.Schemas.Paths {
		loaded, err := loader.Load(path, registry)
		if err != nil {
			return nil, nil, fmt.Errorf("schema pack %s: %w", path, err)
		}
		logger.Debug("Schema pack %s: %d descriptors", path, len(loaded))
	}
	registry.Freeze()

	hints := schemas.Prefixes()
	maps.Copy(hints, settings.Output.Prefixes)
	codec := services.NewCodecService(registry, xmltree.NewReader(), xmltree.NewWriter(settings.Output.Indent, hints))

	cleanup := func() {}
	var journal driven.JournalStore
	switch settings.Journal.Backend {
	case domain.JournalMemory:
		journal = memory.NewJournalStore()
	default:
		dir := settings.Journal.Dir
		if dir == "" && configDir != "" {
			dir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dir)
		if err != nil {
			// decode and settings still work without a journal
			logger.Warn("Batch journal unavailable: %v", err)
			break
		}
		journal = store.JournalStore()
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Closing journal: %v", err)
			}
		}
	}

	feedTransport := transport.NewTransport(settings.Transport, transport.WithUserAgent("gam/"+version))

	batchService, err := services.NewBatchService(
		gdata.BatchSchema(), registry, codec, journal, feedTransport, settings.Batch.MaxEntries)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &cli.Services{
		Codec:    codec,
		Registry: registry,
		Batch:    batchService,
		Settings: settingsService,
	}, cleanup, nil
}
