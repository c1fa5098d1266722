package config

const (
	defaultConfigPath            = "~/.config/mockinterview/config.toml"
	defaultDataDir               = "~/.local/share/mockinterview"
	defaultLogDir                = "~/.local/share/mockinterview/logs"
	defaultAPIBind               = "127.0.0.1:7490"
	defaultGreetingSettleMS      = 8000
	defaultTransitionDelayMS     = 3000
	defaultClosingMinDelayMS     = 4000
	defaultClosingMSPerWord      = 380
	defaultMinResponseSeconds    = 30
	defaultMaxResponseSeconds    = 89
	defaultPlaceholderNotes      = "Video response recorded"
	defaultInterviewerName       = "Alex"
	defaultRole                  = "this position"
	defaultScoringTimeoutSeconds = 30
	defaultCaptureTimeoutSeconds = 20
	defaultNarrationBackend      = NarrationTimed
	defaultNarrationCommand      = "espeak-ng"
	defaultWordsPerMinute        = 160
	defaultCaptureBackend        = CaptureDevices
	defaultVideoPattern          = "/dev/video*"
	defaultAudioPattern          = "/dev/snd/pcmC*D*c"
	defaultScoringMode           = ScoringRandom
	defaultLLMBaseURL            = "https://api.openai.com/v1"
	defaultLLMModel              = "gpt-4o-mini"
	defaultLLMTemperature        = 0.4
	defaultLLMTimeoutSeconds     = 30
	defaultCatalogFile           = "~/.config/mockinterview/job_posts.yaml"
	defaultCatalogCacheTTL       = 300
	defaultCatalogTimeoutSeconds = 10
	defaultIdleTimeoutMinutes    = 30
	defaultReapSchedule          = "@every 1m"
	defaultRetentionDays         = 0
	defaultPruneSchedule         = "@daily"
	defaultNotifyTimeout         = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogMaxSizeMB          = 50
	defaultLogMaxBackups         = 5
	defaultLogMaxAgeDays         = 30
)

// Narration backends.
const (
	NarrationTimed   = "timed"
	NarrationCommand = "command"
)

// Capture backends.
const (
	CaptureDevices = "devices"
	CaptureNone    = "none"
)

// Scoring modes.
const (
	ScoringRandom = "random"
	ScoringLLM    = "llm"
)

var (
	defaultPreferredLocales = []string{"en-US", "en-GB", "en"}
	defaultVoiceKeywords    = []string{"professional", "natural", "neural", "premium", "enhanced"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Interview: Interview{
			GreetingSettleMS:      defaultGreetingSettleMS,
			TransitionDelayMS:     defaultTransitionDelayMS,
			ClosingMinDelayMS:     defaultClosingMinDelayMS,
			ClosingMSPerWord:      defaultClosingMSPerWord,
			MinResponseSeconds:    defaultMinResponseSeconds,
			MaxResponseSeconds:    defaultMaxResponseSeconds,
			PlaceholderNotes:      defaultPlaceholderNotes,
			InterviewerName:       defaultInterviewerName,
			DefaultRole:           defaultRole,
			ScoringTimeoutSeconds: defaultScoringTimeoutSeconds,
			CaptureTimeoutSeconds: defaultCaptureTimeoutSeconds,
		},
		Narration: Narration{
			Backend:          defaultNarrationBackend,
			Command:          defaultNarrationCommand,
			WordsPerMinute:   defaultWordsPerMinute,
			PreferredLocales: append([]string(nil), defaultPreferredLocales...),
			VoiceKeywords:    append([]string(nil), defaultVoiceKeywords...),
		},
		Capture: Capture{
			Backend:      defaultCaptureBackend,
			VideoPattern: defaultVideoPattern,
			AudioPattern: defaultAudioPattern,
			Hotplug:      true,
		},
		Scoring: Scoring{
			Mode: defaultScoringMode,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Temperature:    defaultLLMTemperature,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Catalog: Catalog{
			JobPostsFile:    defaultCatalogFile,
			CacheTTLSeconds: defaultCatalogCacheTTL,
			TimeoutSeconds:  defaultCatalogTimeoutSeconds,
		},
		Sessions: Sessions{
			IdleTimeoutMinutes: defaultIdleTimeoutMinutes,
			ReapSchedule:       defaultReapSchedule,
			RetentionDays:      defaultRetentionDays,
			PruneSchedule:      defaultPruneSchedule,
		},
		Notifications: Notifications{
			RequestTimeout:    defaultNotifyTimeout,
			SessionStarted:    false,
			SessionCompleted:  true,
			DeviceUnavailable: true,
			Errors:            true,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
