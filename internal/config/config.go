package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Interview contains narration pacing and response defaults for the orchestrator.
type Interview struct {
	// GreetingSettleMS is the pause between the start of the greeting and the
	// first question being spoken.
	GreetingSettleMS int `toml:"greeting_settle_ms"`
	// TransitionDelayMS is the pause between a transition remark and the next question.
	TransitionDelayMS int `toml:"transition_delay_ms"`
	// ClosingMinDelayMS and ClosingMSPerWord size the wait between the closing
	// remark and navigation to the results view.
	ClosingMinDelayMS     int    `toml:"closing_min_delay_ms"`
	ClosingMSPerWord      int    `toml:"closing_ms_per_word"`
	MinResponseSeconds    int    `toml:"min_response_seconds"`
	MaxResponseSeconds    int    `toml:"max_response_seconds"`
	PlaceholderNotes      string `toml:"placeholder_notes"`
	InterviewerName       string `toml:"interviewer_name"`
	DefaultRole           string `toml:"default_role"`
	ScoringTimeoutSeconds int    `toml:"scoring_timeout_seconds"`
	CaptureTimeoutSeconds int    `toml:"capture_timeout_seconds"`
}

// Narration configures speech synthesis.
type Narration struct {
	Backend          string   `toml:"backend"` // timed, command
	Command          string   `toml:"command"`
	WordsPerMinute   int      `toml:"words_per_minute"`
	PreferredLocales []string `toml:"preferred_locales"`
	VoiceKeywords    []string `toml:"voice_keywords"`
	Voice            string   `toml:"voice"`
}

// Capture configures camera and microphone acquisition.
type Capture struct {
	Backend      string `toml:"backend"` // devices, none
	VideoPattern string `toml:"video_pattern"`
	AudioPattern string `toml:"audio_pattern"`
	Hotplug      bool   `toml:"hotplug"`
}

// Scoring selects the evaluation engine.
type Scoring struct {
	Mode string `toml:"mode"` // random, llm
}

// LLM contains OpenAI-compatible connection settings.
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Catalog configures where job-post question lists come from.
type Catalog struct {
	JobPostsFile    string `toml:"job_posts_file"`
	RemoteURL       string `toml:"remote_url"`
	RemoteToken     string `toml:"remote_token"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Sessions configures the active-session registry and retention.
type Sessions struct {
	IdleTimeoutMinutes int    `toml:"idle_timeout_minutes"`
	ReapSchedule       string `toml:"reap_schedule"`
	RetentionDays      int    `toml:"retention_days"`
	PruneSchedule      string `toml:"prune_schedule"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic         string `toml:"ntfy_topic"`
	RequestTimeout    int    `toml:"request_timeout"`
	SessionStarted    bool   `toml:"session_started"`
	SessionCompleted  bool   `toml:"session_completed"`
	DeviceUnavailable bool   `toml:"device_unavailable"`
	Errors            bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for mockinterview.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Interview: narration pacing and response defaults
//   - Narration: speech synthesizer selection and voice preferences
//   - Capture: camera/microphone device discovery
//   - Scoring + LLM: evaluation engine
//   - Catalog: job-post question sources
//   - Sessions: idle reaping and retention
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and rotation
type Config struct {
	Paths         Paths         `toml:"paths"`
	Interview     Interview     `toml:"interview"`
	Narration     Narration     `toml:"narration"`
	Capture       Capture       `toml:"capture"`
	Scoring       Scoring       `toml:"scoring"`
	LLM           LLM           `toml:"llm"`
	Catalog       Catalog       `toml:"catalog"`
	Sessions      Sessions      `toml:"sessions"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mockinterview.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite session database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "sessions.db")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "mockinterviewd.lock")
}

// LogPath returns the daemon log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "mockinterview.log")
}

// Timing converts the interview pacing knobs into durations.
func (c *Config) Timing() Timing {
	return Timing{
		GreetingSettle:  time.Duration(c.Interview.GreetingSettleMS) * time.Millisecond,
		TransitionDelay: time.Duration(c.Interview.TransitionDelayMS) * time.Millisecond,
		ClosingMinDelay: time.Duration(c.Interview.ClosingMinDelayMS) * time.Millisecond,
		ClosingPerWord:  time.Duration(c.Interview.ClosingMSPerWord) * time.Millisecond,
		ScoringTimeout:  time.Duration(c.Interview.ScoringTimeoutSeconds) * time.Second,
		CaptureTimeout:  time.Duration(c.Interview.CaptureTimeoutSeconds) * time.Second,
	}
}

// Timing holds the resolved pacing durations used by the orchestrator.
type Timing struct {
	GreetingSettle  time.Duration
	TransitionDelay time.Duration
	ClosingMinDelay time.Duration
	ClosingPerWord  time.Duration
	ScoringTimeout  time.Duration
	CaptureTimeout  time.Duration
}

// IdleTimeout returns how long an untouched session stays registered.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Sessions.IdleTimeoutMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
