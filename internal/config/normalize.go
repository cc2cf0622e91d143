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
	c.normalizeNotifications()
	c.normalizeEmail()
	c.normalizeWatch()
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
	if strings.TrimSpace(c.Paths.InboxDir) == "" {
		c.Paths.InboxDir = defaultInboxDir
	}
	if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
		return fmt.Errorf("paths.inbox_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	if value, ok := os.LookupEnv(envNtfyTopic); ok && strings.TrimSpace(value) != "" {
		c.Notifications.NtfyTopic = value
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeEmail() {
	if value, ok := os.LookupEnv(envSMTPPassword); ok && value != "" {
		c.Email.SMTPPassword = value
	}
	c.Email.SMTPServer = strings.TrimSpace(c.Email.SMTPServer)
	c.Email.SMTPUser = strings.TrimSpace(c.Email.SMTPUser)
	c.Email.From = strings.TrimSpace(c.Email.From)
	c.Email.To = strings.TrimSpace(c.Email.To)
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = defaultSMTPPort
	}
}

func (c *Config) normalizeWatch() {
	c.Watch.Schedule = strings.TrimSpace(c.Watch.Schedule)
	if c.Watch.Schedule == "" {
		c.Watch.Schedule = defaultWatchSchedule
	}
	c.Watch.SpotsSubdir = defaultIfBlank(c.Watch.SpotsSubdir, defaultWatchSpotsSubdir)
	c.Watch.RecordingsSubdir = defaultIfBlank(c.Watch.RecordingsSubdir, defaultWatchRecordingsSubdir)
	c.Watch.ProcessedSubdir = defaultIfBlank(c.Watch.ProcessedSubdir, defaultWatchProcessedSubdir)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func defaultIfBlank(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
