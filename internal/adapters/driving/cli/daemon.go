package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
	"github.com/custodia-labs/lexisync/internal/core/services"
	"github.com/custodia-labs/lexisync/internal/logger"
)

// reloadDelay collapses the burst of events an editor save produces.
var reloadDelay = 500 * time.Millisecond

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the sync on the configured schedule",
	Long: `Runs the course sync every schedule.interval until interrupted.

The config file is watched; edits take effect before the next run
without restarting the daemon.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

//nolint:gocyclo // Orchestration function with necessary sequential steps
func runDaemon(cmd *cobra.Command, _ []string) error {
	d, err := requireDeps()
	if err != nil {
		return err
	}
	if d.Schedules == nil || d.NewSync == nil {
		return errors.New("scheduler not configured")
	}

	// 1. Build the initial sync service
	settings, err := loadSettings(d)
	if err != nil {
		return err
	}
	svc, closeSvc, err := d.NewSync(settings)
	if err != nil {
		return err
	}
	shared := newSwappableSync(svc, closeSvc)
	defer func() {
		if cerr := shared.Close(); cerr != nil {
			logger.Warn("daemon: close sync service: %v", cerr)
		}
	}()

	ctx := cmd.Context()
	scheduler := services.NewScheduler(settings.Schedule, d.Schedules, shared)

	// 2. Watch the config file
	reload := newReloader(ctx, d, shared, scheduler)

	watcher, err := newConfigWatcher(d.Settings.Path(), reload)
	if err != nil {
		logger.Warn("daemon: config changes need a restart: %v", err)
	} else {
		defer func() { _ = watcher.Stop() }()
	}

	// 3. Run until interrupted
	out := cmd.OutOrStdout()
	st := newStyles(out)
	fmt.Fprintf(out, "%s syncing every %s (config %s)\n", st.Title("lexisync daemon"), settings.Schedule.Interval, d.Settings.Path())
	if !settings.Schedule.Enabled {
		fmt.Fprintln(out, st.Warning("schedule.enabled is false; waiting for the configuration to enable it"))
	}

	err = scheduler.Start(ctx)
	_ = scheduler.Stop()
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "Stopped.")
		return nil
	}
	return err
}

// newReloader returns the callback that applies an edited config to a
// running daemon. An invalid config leaves everything as it was.
func newReloader(ctx context.Context, d *Dependencies, shared *swappableSync, scheduler *services.Scheduler) func() {
	return func() {
		next, err := reloadSettings(d)
		if err != nil {
			logger.Warn("daemon: keeping previous configuration: %v", err)
			return
		}
		svc, closeSvc, err := d.NewSync(next)
		if err != nil {
			logger.Warn("daemon: keeping previous configuration: %v", err)
			return
		}
		if err := logger.SetFile(next.Log.File, next.Log.MaxSizeMB); err != nil {
			logger.Warn("daemon: log file: %v", err)
		}
		if err := shared.Swap(svc, closeSvc); err != nil {
			logger.Warn("daemon: close previous sync service: %v", err)
		}
		if err := scheduler.Reconfigure(ctx, next.Schedule); err != nil {
			logger.Warn("daemon: reschedule: %v", err)
		}
		logger.Info("daemon: configuration reloaded")
	}
}

// reloadSettings re-reads and validates the configuration.
func reloadSettings(d *Dependencies) (*domain.Settings, error) {
	if d.Reload != nil {
		if err := d.Reload(); err != nil {
			return nil, fmt.Errorf("read %s: %w", d.Settings.Path(), err)
		}
	}
	return loadSettings(d)
}

// swappableSync forwards to a sync service that can be replaced while the
// scheduler holds a reference to it. A swap waits for the running sync.
type swappableSync struct {
	mu    sync.RWMutex
	svc   driving.SyncService
	close func() error
}

var _ driving.SyncService = (*swappableSync)(nil)

func newSwappableSync(svc driving.SyncService, closeFn func() error) *swappableSync {
	return &swappableSync{svc: svc, close: closeFn}
}

func (s *swappableSync) Plan(ctx context.Context) (*domain.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svc.Plan(ctx)
}

func (s *swappableSync) Sync(ctx context.Context, opts driving.SyncOptions) (*domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svc.Sync(ctx, opts)
}

func (s *swappableSync) Status() driving.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svc.Status()
}

// Swap installs a new service and closes the previous one.
func (s *swappableSync) Swap(svc driving.SyncService, closeFn func() error) error {
	s.mu.Lock()
	prevClose := s.close
	s.svc, s.close = svc, closeFn
	s.mu.Unlock()

	if prevClose != nil {
		return prevClose()
	}
	return nil
}

// Close releases the current service.
func (s *swappableSync) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.close == nil {
		return nil
	}
	err := s.close()
	s.close = nil
	return err
}

// configWatcher calls onChange after the config file is written.
// The directory is watched since editors replace files on save.
type configWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()
	done     chan struct{}
	wg       sync.WaitGroup
}

func newConfigWatcher(path string, onChange func()) (*configWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	cw := &configWatcher{
		watcher:  w,
		path:     filepath.Clean(path),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.loop()
	return cw, nil
}

func (cw *configWatcher) loop() {
	defer cw.wg.Done()

	var pending <-chan time.Time
	for {
		select {
		case <-cw.done:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("daemon: %s %s", event.Op, event.Name)
			pending = time.After(reloadDelay)
		case <-pending:
			pending = nil
			cw.onChange()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("daemon: watcher: %v", err)
		}
	}
}

// Stop ends the watch and waits for the event loop.
func (cw *configWatcher) Stop() error {
	close(cw.done)
	err := cw.watcher.Close()
	cw.wg.Wait()
	return err
}
