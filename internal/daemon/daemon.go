package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"mockinterview/internal/api"
	"mockinterview/internal/capture"
	"mockinterview/internal/config"
	"mockinterview/internal/deps"
	"mockinterview/internal/logging"
	"mockinterview/internal/metrics"
	"mockinterview/internal/notifications"
	"mockinterview/internal/preflight"
	"mockinterview/internal/services"
	"mockinterview/internal/sessions"
	"mockinterview/internal/sessionstore"
)

// Deps are the collaborators a daemon coordinates. Store and Registry are
// required.
type Deps struct {
	Store    sessionstore.Repository
	Registry *sessions.Registry
	Hub      *api.Hub
	Metrics  *metrics.Recorder
	Notifier notifications.Service
	Logger   *slog.Logger
	// Now overrides the wall clock used for retention cutoffs.
	Now func() time.Time
}

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    sessionstore.Repository
	registry *sessions.Registry
	hub      *api.Hub
	metrics  *metrics.Recorder
	notifier notifications.Service
	now      func() time.Time

	api     *apiServer
	hotplug *capture.HotplugWatcher
	cron    *cron.Cron

	lockPath string
	lock     *flock.Flock

	mu         sync.Mutex
	startedAt  time.Time
	lastDevice *capture.DeviceEvent

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	PID            int
	StartedAt      time.Time
	DatabasePath   string
	LockFilePath   string
	APIAddress     string
	CaptureBackend string
	Synthesizer    string
	Scorer         string
	Sessions       sessionstore.Stats
	Live           []sessions.Summary
	LastDevice     *capture.DeviceEvent
	Dependencies   []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, deps Deps) (*Daemon, error) {
	if cfg == nil || deps.Store == nil || deps.Registry == nil {
		return nil, errors.New("daemon requires config, store, and session registry")
	}
	if deps.Hub == nil {
		deps.Hub = api.NewHub(api.HubConfig{}, deps.Logger)
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(cfg)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(deps.Logger, "daemon"),
		store:    deps.Store,
		registry: deps.Registry,
		hub:      deps.Hub,
		metrics:  deps.Metrics,
		notifier: deps.Notifier,
		now:      deps.Now,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}

	server, err := api.NewServer(api.Options{
		Registry:   deps.Registry,
		Store:      deps.Store,
		Hub:        deps.Hub,
		Metrics:    deps.Metrics,
		Status:     d.apiStatus,
		TestNotify: d.TestNotification,
		Token:      cfg.Paths.APIToken,
		Logger:     deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	d.api = newAPIServer(cfg.Paths.APIBind, server, deps.Logger)
	if cfg.Capture.Hotplug {
		d.hotplug = capture.NewHotplugWatcher(deps.Logger, d.onDeviceEvent)
	}
	return d, nil
}

// Start acquires the daemon lock and launches the API, maintenance jobs,
// and hotplug watcher.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mockinterview daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	jobs, err := d.scheduleMaintenance(runCtx)
	if err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	if err := d.api.start(); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	jobs.Start()
	if d.hotplug != nil {
		if err := d.hotplug.Start(runCtx); err != nil {
			logging.WarnWithContext(d.logger, "hotplug watcher unavailable", "hotplug_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "device changes are not reported"),
			)
		}
	}

	d.mu.Lock()
	d.cron = jobs
	d.cancel = cancel
	d.startedAt = d.now()
	d.mu.Unlock()
	d.running.Store(true)
	for _, missing := range deps.Missing(preflight.CheckSystemDeps(d.cfg)) {
		logging.WarnWithContext(d.logger, "dependency unavailable", "dependency_missing",
			logging.String("dependency", missing.Name),
			logging.String("detail", missing.Detail),
			logging.String(logging.FieldErrorHint, "check the narration and capture settings"),
			logging.String(logging.FieldImpact, "sessions fall back or fail when they need it"),
		)
	}
	d.logger.Info("mockinterview daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.api.addr()),
	)
	return nil
}

func (d *Daemon) scheduleMaintenance(ctx context.Context) (*cron.Cron, error) {
	jobs := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := jobs.AddFunc(d.cfg.Sessions.ReapSchedule, func() { d.ReapIdle(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule reaper: %w", err)
	}
	if d.cfg.Sessions.RetentionDays > 0 {
		if _, err := jobs.AddFunc(d.cfg.Sessions.PruneSchedule, func() {
			if _, err := d.PruneExpired(ctx); err != nil {
				logging.WarnWithContext(d.logger, "retention prune failed", "prune_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "old sessions are kept until the next run"),
				)
			}
		}); err != nil {
			return nil, fmt.Errorf("schedule retention prune: %w", err)
		}
	}
	return jobs, nil
}

// Stop tears down every running session and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	jobs, cancel := d.cron, d.cancel
	d.cron, d.cancel = nil, nil
	d.mu.Unlock()

	if jobs != nil {
		<-jobs.Stop().Done()
	}
	ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := d.registry.CloseAll(ctx); err != nil {
		logging.WarnWithContext(d.logger, "sessions did not stop cleanly", "session_shutdown_incomplete",
			logging.Error(err),
			logging.String(logging.FieldImpact, "some devices may still be held"),
		)
	}
	d.hub.Close()
	d.api.stop()
	if d.hotplug != nil {
		d.hotplug.Stop()
	}
	if cancel != nil {
		cancel()
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("mockinterview daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if closer, ok := d.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ReapIdle closes sessions idle past the configured timeout.
func (d *Daemon) ReapIdle(ctx context.Context) int {
	n := d.registry.Reap(ctx)
	if n > 0 {
		d.logger.Info("idle sessions reaped", logging.Int("count", n))
	}
	return n
}

// PruneExpired deletes inactive sessions older than the retention window.
// A zero window keeps everything.
func (d *Daemon) PruneExpired(ctx context.Context) (int64, error) {
	days := d.cfg.Sessions.RetentionDays
	if days <= 0 {
		return 0, nil
	}
	cutoff := d.now().Add(-time.Duration(days) * 24 * time.Hour)
	n, err := d.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	if d.metrics != nil {
		d.metrics.SessionsPruned(n)
	}
	if n > 0 {
		d.logger.Info("expired sessions pruned",
			logging.Int64("count", n),
			logging.String("cutoff", cutoff.UTC().Format(time.RFC3339)),
		)
	}
	return n, nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", services.Wrap(services.ErrExternalService, "daemon", "test notification", "ntfy publish failed", err)
	}
	return true, "test notification sent", nil
}

// APIAddress returns the bound API address, empty when the API is disabled.
func (d *Daemon) APIAddress() string {
	return d.api.addr()
}

func (d *Daemon) onDeviceEvent(event capture.DeviceEvent) {
	d.mu.Lock()
	d.lastDevice = &event
	d.mu.Unlock()
	d.logger.Info("capture device changed",
		logging.String("action", event.Action),
		logging.String("subsystem", event.Subsystem),
		logging.String("device", event.Device),
	)
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	stats, err := d.store.Stats(ctx)
	if err != nil {
		logging.WarnWithContext(d.logger, "failed to read session stats", "stats_failed", logging.Error(err))
	}
	d.mu.Lock()
	startedAt := d.startedAt
	var last *capture.DeviceEvent
	if d.lastDevice != nil {
		ev := *d.lastDevice
		last = &ev
	}
	d.mu.Unlock()
	return Status{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		StartedAt:      startedAt,
		DatabasePath:   d.cfg.DatabasePath(),
		LockFilePath:   d.lockPath,
		APIAddress:     d.api.addr(),
		CaptureBackend: d.cfg.Capture.Backend,
		Synthesizer:    d.cfg.Narration.Backend,
		Scorer:         d.cfg.Scoring.Mode,
		Sessions:       stats,
		Live:           d.registry.List(),
		LastDevice:     last,
		Dependencies:   preflight.CheckSystemDeps(d.cfg),
	}
}

func (d *Daemon) apiStatus(ctx context.Context) api.DaemonStatus {
	status := d.Status(ctx)
	counts := make(map[string]int, len(status.Sessions))
	for k, v := range status.Sessions {
		counts[string(k)] = v
	}
	return api.DaemonStatus{
		Running:         status.Running,
		PID:             status.PID,
		StartedAt:       status.StartedAt,
		DatabasePath:    status.DatabasePath,
		LockFilePath:    status.LockFilePath,
		CaptureBackend:  status.CaptureBackend,
		Synthesizer:     status.Synthesizer,
		Scorer:          status.Scorer,
		ActiveSessions:  len(status.Live),
		Sessions:        counts,
		Live:            status.Live,
		LastDeviceEvent: status.LastDevice,
		Dependencies:    status.Dependencies,
	}
}
