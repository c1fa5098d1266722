package narration

import (
	"context"
	"log/slog"
	"strings"

	"mockinterview/internal/config"
	"mockinterview/internal/logging"
	"mockinterview/internal/schedule"
)

// NewSynthesizer builds the synthesizer selected by the narration backend.
func NewSynthesizer(cfg *config.Config, sched schedule.Scheduler) Synthesizer {
	if cfg != nil && strings.EqualFold(cfg.Narration.Backend, config.NarrationCommand) {
		return NewCommandSynthesizer(cfg.Narration.Command, cfg.Narration.WordsPerMinute)
	}
	wpm := 0
	if cfg != nil {
		wpm = cfg.Narration.WordsPerMinute
	}
	return NewTimedSynthesizer(sched, wpm)
}

// ResolveVoice returns the configured voice, or the best match among the
// synthesizer's voices. An empty Voice means the platform default.
func ResolveVoice(ctx context.Context, cfg *config.Config, synth Synthesizer, logger *slog.Logger) Voice {
	if cfg == nil || synth == nil {
		return Voice{}
	}
	if name := strings.TrimSpace(cfg.Narration.Voice); name != "" {
		return Voice{ID: name, Name: name}
	}
	voices, err := synth.Voices(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "voice listing failed; using default voice", "voice_list_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check narration.command or set narration.voice"),
		)
		return Voice{}
	}
	voice, ok := SelectVoice(voices, cfg.Narration.PreferredLocales, cfg.Narration.VoiceKeywords)
	if !ok {
		if len(voices) > 0 && logger != nil {
			logger.Info("no preferred voice available; using default voice", logging.Int("voices", len(voices)))
		}
		return Voice{}
	}
	return voice
}
