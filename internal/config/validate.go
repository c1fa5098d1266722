package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateInterview(); err != nil {
		return err
	}
	if err := c.validateNarration(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateSessions(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateInterview() error {
	if err := ensureNonNegativeMap(map[string]int{
		"interview.greeting_settle_ms":   c.Interview.GreetingSettleMS,
		"interview.transition_delay_ms":  c.Interview.TransitionDelayMS,
		"interview.closing_min_delay_ms": c.Interview.ClosingMinDelayMS,
		"interview.closing_ms_per_word":  c.Interview.ClosingMSPerWord,
	}); err != nil {
		return err
	}
	if c.Interview.MinResponseSeconds <= 0 {
		return errors.New("interview.min_response_seconds must be positive")
	}
	if c.Interview.MaxResponseSeconds < c.Interview.MinResponseSeconds {
		return errors.New("interview.max_response_seconds must be at least interview.min_response_seconds")
	}
	return nil
}

func (c *Config) validateNarration() error {
	switch c.Narration.Backend {
	case NarrationTimed, NarrationCommand:
	default:
		return fmt.Errorf("narration.backend: unsupported value %q (want %q or %q)", c.Narration.Backend, NarrationTimed, NarrationCommand)
	}
	return nil
}

func (c *Config) validateCapture() error {
	switch c.Capture.Backend {
	case CaptureDevices, CaptureNone:
	default:
		return fmt.Errorf("capture.backend: unsupported value %q (want %q or %q)", c.Capture.Backend, CaptureDevices, CaptureNone)
	}
	return nil
}

func (c *Config) validateScoring() error {
	switch c.Scoring.Mode {
	case ScoringRandom:
		return nil
	case ScoringLLM:
		if c.LLM.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("llm.api_key is required when scoring.mode is %q. Set OPENAI_API_KEY or edit %s", ScoringLLM, defaultPath)
		}
		if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
			return errors.New("llm.temperature must be between 0 and 2")
		}
		return nil
	default:
		return fmt.Errorf("scoring.mode: unsupported value %q (want %q or %q)", c.Scoring.Mode, ScoringRandom, ScoringLLM)
	}
}

func (c *Config) validateSessions() error {
	if c.Sessions.IdleTimeoutMinutes <= 0 {
		return errors.New("sessions.idle_timeout_minutes must be positive")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for key, expr := range map[string]string{
		"sessions.reap_schedule":  c.Sessions.ReapSchedule,
		"sessions.prune_schedule": c.Sessions.PruneSchedule,
	} {
		if _, err := parser.Parse(expr); err != nil {
			return fmt.Errorf("%s: invalid schedule %q: %w", key, expr, err)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if strings.TrimSpace(c.Notifications.NtfyTopic) == "" {
		return nil
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensureNonNegativeMap(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}
	return nil
}
