// Command lexisync syncs a Notion vocabulary database into a flashcard course.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/lexisync/internal/adapters/driven/auth"
	"github.com/custodia-labs/lexisync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexisync/internal/adapters/driven/course/memrise"
	"github.com/custodia-labs/lexisync/internal/adapters/driven/results"
	"github.com/custodia-labs/lexisync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexisync/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexisync/internal/connectors/notion"
	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
	"github.com/custodia-labs/lexisync/internal/core/services"
	"github.com/custodia-labs/lexisync/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap wires the adapters into the core services.
func bootstrap(opts cli.Options) (*cli.Dependencies, error) {
	// 1. Configuration
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	configDir := filepath.Dir(configStore.Path())
	settingsService := services.NewSettingsService(configStore)

	// 2. Environment and logging
	dirs := []string{configDir}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append([]string{cwd}, dirs...)
	}
	auth.LoadEnvFiles(dirs...)

	if settings, err := settingsService.Get(); err == nil && settings.Log.File != "" {
		if err := logger.SetFile(settings.Log.File, settings.Log.MaxSizeMB); err != nil {
			logger.Warn("log file %s: %v", settings.Log.File, err)
		}
	}

	// 3. Local state
	dataDir := ""
	if opts.ConfigDir != "" {
		dataDir = filepath.Join(opts.ConfigDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &cli.Dependencies{
		Settings:  settingsService,
		History:   services.NewHistoryService(store.RunStore()),
		Schedules: store.SchedulerStore(),
		NewSync: func(settings *domain.Settings) (driving.SyncService, func() error, error) {
			return newSyncService(settings, store)
		},
		CheckSource: checkSource,
		ImportCourse: func(ctx context.Context, settings *domain.Settings, exportDir string) ([]domain.TargetEntry, error) {
			return importCourse(ctx, settings, exportDir, store)
		},
		Reload: configStore.Load,
		Close: func() error {
			return errors.Join(store.Close(), logger.Close())
		},
	}, nil
}

// newSyncService builds the reader, the course and the report sinks for one
// configuration.
func newSyncService(settings *domain.Settings, store *sqlite.Store) (driving.SyncService, func() error, error) {
	reader, err := newReader(settings)
	if err != nil {
		return nil, nil, err
	}

	var course driven.CourseOpener
	switch settings.Course.Driver {
	case domain.CourseDriverMemriseExport:
		course = memrise.New(memrise.NewConfig(*settings))
		if creds := auth.CourseCredentials(); !creds.Empty() {
			logger.Debug("course login %s is not needed by %s", creds.Email, course.Type())
		}
	default:
		course = store.Course(settings.Course.LevelWordLimit)
	}

	sinks := []driven.ReportSink{store.RunStore()}
	if settings.Log.ResultsDir != "" {
		sinks = append(sinks, results.NewSink(settings.Log.ResultsDir, settings.Mapping.LabelField()))
	}

	svc := services.NewSyncService(reader, course, settings.Mapping, sinks...)
	return svc, reader.Close, nil
}

func newReader(settings *domain.Settings) (*notion.Reader, error) {
	cfg, err := notion.ParseConfig(settings.Notion, settings.Mapping)
	if err != nil {
		return nil, err
	}
	return notion.NewReader(cfg, auth.NewEnvTokenProvider(settings.Notion.TokenEnv)), nil
}

// checkSource confirms the database is reachable and carries the mapped columns.
func checkSource(ctx context.Context, settings *domain.Settings) error {
	reader, err := newReader(settings)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()
	return reader.Validate(ctx)
}

// importCourse seeds the sqlite course from saved Memrise pages.
func importCourse(ctx context.Context, settings *domain.Settings, exportDir string, store *sqlite.Store) ([]domain.TargetEntry, error) {
	cfg := memrise.NewConfig(*settings)
	cfg.ExportDir = exportDir
	entries, err := memrise.ReadExport(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Course(settings.Course.LevelWordLimit).Import(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}
