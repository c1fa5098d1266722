package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"mockinterview/internal/api"
	"mockinterview/internal/capture"
	"mockinterview/internal/catalog"
	"mockinterview/internal/config"
	"mockinterview/internal/daemon"
	"mockinterview/internal/deps"
	"mockinterview/internal/logging"
	"mockinterview/internal/metrics"
	"mockinterview/internal/narration"
	"mockinterview/internal/notifications"
	"mockinterview/internal/preflight"
	"mockinterview/internal/schedule"
	"mockinterview/internal/scoring"
	"mockinterview/internal/sessions"
	"mockinterview/internal/sessionstore"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// PIDPath returns where a running daemon records its process id.
func PIDPath(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, "mockinterviewd.pid")
}

// Run starts the mockinterview daemon and blocks until ctx is cancelled or
// the process receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logCfg := *cfg
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		logCfg.Logging.Level = level
	}
	logger, err := logging.NewFromConfig(&logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logRuntimeSnapshot(logger, cfg)
	pidPath := PIDPath(cfg)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	d, err := Build(signalCtx, cfg, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "daemon build failed", "daemon_build_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check configuration and session database access"),
		)
		return err
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the api bind address and the lock file"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("mockinterview daemon shutting down")
	return nil
}

// Build opens the session store and wires every collaborator of the daemon.
// The returned daemon owns the store; Close releases it.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := sessionstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	jobs, err := catalog.New(cfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load job catalog: %w", err)
	}

	sched := schedule.NewReal()
	synth := narration.NewSynthesizer(cfg, sched)
	voice := narration.ResolveVoice(ctx, cfg, synth, logger)
	recorder := metrics.New()
	notifier := notifications.NewService(cfg)
	hub := api.NewHub(api.DefaultHubConfig(), logger)

	registry, err := sessions.New(sessions.Options{
		Config:      cfg,
		Store:       store,
		Catalog:     jobs,
		Scorer:      scoring.NewScorer(cfg, logger),
		Synthesizer: synth,
		Voice:       voice,
		Source:      capture.NewSource(cfg),
		Scheduler:   sched,
		Notifier:    notifier,
		Publisher:   hub,
		Metrics:     recorder,
		Logger:      logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create session registry: %w", err)
	}

	d, err := daemon.New(cfg, daemon.Deps{
		Store:    store,
		Registry: registry,
		Hub:      hub,
		Metrics:  recorder,
		Notifier: notifier,
		Logger:   logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create daemon: %w", err)
	}
	return d, nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// ReadPID returns the process id recorded by a running daemon.
func ReadPID(cfg *config.Config) (int, bool) {
	data, err := os.ReadFile(PIDPath(cfg))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func logRuntimeSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	statuses := preflight.CheckSystemDeps(cfg)
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "runtime_snapshot"),
		logging.String("data_dir", cfg.Paths.DataDir),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.Bool("api_token_set", strings.TrimSpace(cfg.Paths.APIToken) != ""),
		logging.String("narration_backend", cfg.Narration.Backend),
		logging.String("capture_backend", cfg.Capture.Backend),
		logging.String("scoring_mode", cfg.Scoring.Mode),
		logging.Bool("llm_key_present", strings.TrimSpace(cfg.LLM.APIKey) != ""),
		logging.Bool("remote_catalog", strings.TrimSpace(cfg.Catalog.RemoteURL) != ""),
		logging.Bool("ntfy_enabled", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.Int("missing_dependencies", len(deps.Missing(statuses))),
	}
	for _, status := range statuses {
		attrs = append(attrs, logging.Bool(strings.ToLower(strings.ReplaceAll(status.Name, " ", "_"))+"_available", status.Available))
	}
	logger.Info("runtime snapshot", logging.Args(attrs...)...)
}
