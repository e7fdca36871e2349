// Package cli implements the lexisync command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
	"github.com/custodia-labs/lexisync/internal/logger"
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

// Options are the global flags.
type Options struct {
	// ConfigDir overrides ~/.lexisync.
	ConfigDir string

	// Verbose enables debug output.
	Verbose bool
}

// SyncFactory builds a sync service for the given settings. The returned
// close function releases the reader and course it holds.
type SyncFactory func(settings *domain.Settings) (driving.SyncService, func() error, error)

// SourceCheck verifies the source is reachable with the given settings.
type SourceCheck func(ctx context.Context, settings *domain.Settings) error

// CourseImport replaces the local course with the entries saved in
// exportDir and returns them.
type CourseImport func(ctx context.Context, settings *domain.Settings, exportDir string) ([]domain.TargetEntry, error)

// Dependencies are the services commands run against.
type Dependencies struct {
	Settings    driving.SettingsService
	History     driving.HistoryService
	Schedules   driven.SchedulerStore
	NewSync     SyncFactory
	CheckSource SourceCheck

	// ImportCourse seeds the local course. Nil disables `course import`.
	ImportCourse CourseImport

	// Reload re-reads the configuration file.
	Reload func() error

	// Close releases shared resources after the command.
	Close func() error
}

// Bootstrap builds the dependencies once the global flags are parsed.
type Bootstrap func(opts Options) (*Dependencies, error)

var (
	version   = "dev"
	opts      Options
	bootstrap Bootstrap
	deps      *Dependencies
)

var rootCmd = &cobra.Command{
	Use:   "lexisync",
	Short: "Sync a Notion vocabulary database into a flashcard course",
	Long: `lexisync keeps a flashcard course in step with a Notion vocabulary database.

Every run reads the whole database and the whole course, works out what
has to be added or changed, and applies it. Entries lexisync did not create
are never touched, and nothing is ever deleted from the course.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(opts.Verbose)
		if cmd.Annotations[skipBootstrap] == "true" || deps != nil || bootstrap == nil {
			return nil
		}
		d, err := bootstrap(opts)
		if err != nil {
			return err
		}
		deps = d
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "show debug output")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigDir, "config", "", "config directory (default ~/.lexisync)")
}

// SetBootstrap registers the function that wires the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if deps != nil && deps.Close != nil {
		if cerr := deps.Close(); cerr != nil {
			logger.Warn("closing: %v", cerr)
		}
	}
	return err
}

// requireDeps returns the services or an error naming what is missing.
func requireDeps() (*Dependencies, error) {
	if deps == nil || deps.Settings == nil {
		return nil, errors.New("services not configured")
	}
	return deps, nil
}

// loadSettings returns validated settings.
func loadSettings(d *Dependencies) (*domain.Settings, error) {
	if err := d.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", d.Settings.Path(), err)
	}
	return d.Settings.Get()
}

// withSync builds a sync service, runs fn and releases the service.
func withSync(d *Dependencies, fn func(svc driving.SyncService, settings *domain.Settings) error) (err error) {
	if d.NewSync == nil {
		return errors.New("sync service not configured")
	}
	settings, err := loadSettings(d)
	if err != nil {
		return err
	}
	svc, closeSvc, err := d.NewSync(settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeSvc != nil {
			err = errors.Join(err, closeSvc())
		}
	}()
	return fn(svc, settings)
}
