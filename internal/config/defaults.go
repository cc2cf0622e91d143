package config

const (
	defaultConfigPath            = "~/.config/spotwatch/config.toml"
	defaultDataDir               = "~/.local/share/spotwatch"
	defaultLogDir                = "~/.local/share/spotwatch/logs"
	defaultInboxDir              = "~/spotwatch/inbox"
	defaultThreshold             = 85
	defaultMaxDistance           = 2
	defaultSpotConcurrency       = 2
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultNotifyRequestTimeout  = 10
	defaultSMTPPort              = 587
	defaultWatchSchedule         = "@every 15m"
	defaultWatchSpotsSubdir      = "spots"
	defaultWatchRecordingsSubdir = "recordings"
	defaultWatchProcessedSubdir  = "processed"
	envNtfyTopic                 = "SPOTWATCH_NTFY_TOPIC"
	envSMTPPassword              = "SPOTWATCH_SMTP_PASSWORD"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			InboxDir: defaultInboxDir,
		},
		Matching: Matching{
			Threshold:       defaultThreshold,
			MaxDistance:     defaultMaxDistance,
			SpotConcurrency: defaultSpotConcurrency,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			RunCompleted:   true,
			Errors:         true,
		},
		Email: Email{
			SMTPPort: defaultSMTPPort,
		},
		Watch: Watch{
			Schedule:         defaultWatchSchedule,
			SpotsSubdir:      defaultWatchSpotsSubdir,
			RecordingsSubdir: defaultWatchRecordingsSubdir,
			ProcessedSubdir:  defaultWatchProcessedSubdir,
		},
	}
}
