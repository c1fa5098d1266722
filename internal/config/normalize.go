package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeInterview()
	c.normalizeNarration()
	c.normalizeCapture()
	c.normalizeScoring()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeSessions()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("MOCKINTERVIEW_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeInterview() {
	c.Interview.PlaceholderNotes = strings.TrimSpace(c.Interview.PlaceholderNotes)
	if c.Interview.PlaceholderNotes == "" {
		c.Interview.PlaceholderNotes = defaultPlaceholderNotes
	}
	c.Interview.InterviewerName = strings.TrimSpace(c.Interview.InterviewerName)
	if c.Interview.InterviewerName == "" {
		c.Interview.InterviewerName = defaultInterviewerName
	}
	c.Interview.DefaultRole = strings.TrimSpace(c.Interview.DefaultRole)
	if c.Interview.DefaultRole == "" {
		c.Interview.DefaultRole = defaultRole
	}
	if c.Interview.ScoringTimeoutSeconds <= 0 {
		c.Interview.ScoringTimeoutSeconds = defaultScoringTimeoutSeconds
	}
	if c.Interview.CaptureTimeoutSeconds <= 0 {
		c.Interview.CaptureTimeoutSeconds = defaultCaptureTimeoutSeconds
	}
}

func (c *Config) normalizeNarration() {
	c.Narration.Backend = strings.ToLower(strings.TrimSpace(c.Narration.Backend))
	if c.Narration.Backend == "" {
		c.Narration.Backend = defaultNarrationBackend
	}
	c.Narration.Command = strings.TrimSpace(c.Narration.Command)
	if c.Narration.Command == "" {
		c.Narration.Command = defaultNarrationCommand
	}
	if c.Narration.WordsPerMinute <= 0 {
		c.Narration.WordsPerMinute = defaultWordsPerMinute
	}
	c.Narration.PreferredLocales = trimList(c.Narration.PreferredLocales)
	c.Narration.VoiceKeywords = trimList(c.Narration.VoiceKeywords)
	for i, keyword := range c.Narration.VoiceKeywords {
		c.Narration.VoiceKeywords[i] = strings.ToLower(keyword)
	}
	c.Narration.Voice = strings.TrimSpace(c.Narration.Voice)
}

func (c *Config) normalizeCapture() {
	c.Capture.Backend = strings.ToLower(strings.TrimSpace(c.Capture.Backend))
	if c.Capture.Backend == "" {
		c.Capture.Backend = defaultCaptureBackend
	}
	c.Capture.VideoPattern = strings.TrimSpace(c.Capture.VideoPattern)
	if c.Capture.VideoPattern == "" {
		c.Capture.VideoPattern = defaultVideoPattern
	}
	c.Capture.AudioPattern = strings.TrimSpace(c.Capture.AudioPattern)
	if c.Capture.AudioPattern == "" {
		c.Capture.AudioPattern = defaultAudioPattern
	}
}

func (c *Config) normalizeScoring() {
	c.Scoring.Mode = strings.ToLower(strings.TrimSpace(c.Scoring.Mode))
	if c.Scoring.Mode == "" {
		c.Scoring.Mode = defaultScoringMode
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeCatalog() error {
	var err error
	if c.Catalog.JobPostsFile, err = expandPath(strings.TrimSpace(c.Catalog.JobPostsFile)); err != nil {
		return fmt.Errorf("catalog.job_posts_file: %w", err)
	}
	c.Catalog.RemoteURL = strings.TrimRight(strings.TrimSpace(c.Catalog.RemoteURL), "/")
	c.Catalog.RemoteToken = strings.TrimSpace(c.Catalog.RemoteToken)
	if c.Catalog.CacheTTLSeconds < 0 {
		c.Catalog.CacheTTLSeconds = 0
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		c.Catalog.TimeoutSeconds = defaultCatalogTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeSessions() {
	c.Sessions.ReapSchedule = strings.TrimSpace(c.Sessions.ReapSchedule)
	if c.Sessions.ReapSchedule == "" {
		c.Sessions.ReapSchedule = defaultReapSchedule
	}
	c.Sessions.PruneSchedule = strings.TrimSpace(c.Sessions.PruneSchedule)
	if c.Sessions.PruneSchedule == "" {
		c.Sessions.PruneSchedule = defaultPruneSchedule
	}
	if c.Sessions.RetentionDays < 0 {
		c.Sessions.RetentionDays = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
