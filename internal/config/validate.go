package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 100 {
		return errors.New("matching.threshold must be in (0, 100]")
	}
	if c.Matching.MaxDistance < 0 {
		return errors.New("matching.max_distance must not be negative")
	}
	if c.Matching.ClusterWindowSeconds < 0 {
		return errors.New("matching.cluster_window_seconds must not be negative")
	}
	if c.Matching.Workers < 0 {
		return errors.New("matching.workers must not be negative")
	}
	if c.Matching.SpotConcurrency <= 0 {
		return errors.New("matching.spot_concurrency must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateEmail() error {
	if !c.Email.Enabled {
		return nil
	}
	if c.Email.SMTPServer == "" {
		return errors.New("email.smtp_server must be set when email.enabled is true")
	}
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		return errors.New("email.smtp_port must be a valid TCP port")
	}
	if c.Email.From == "" || c.Email.To == "" {
		return errors.New("email.from and email.to must be set when email.enabled is true")
	}
	return nil
}

func (c *Config) validateWatch() error {
	for key, value := range map[string]string{
		"watch.spots_subdir":      c.Watch.SpotsSubdir,
		"watch.recordings_subdir": c.Watch.RecordingsSubdir,
		"watch.processed_subdir":  c.Watch.ProcessedSubdir,
	} {
		if strings.ContainsAny(value, `/\`) || value == ".." {
			return fmt.Errorf("%s must be a plain directory name, got %q", key, value)
		}
	}
	if c.Watch.SpotsSubdir == c.Watch.RecordingsSubdir {
		return errors.New("watch.spots_subdir and watch.recordings_subdir must differ")
	}
	if c.Watch.ProcessedSubdir == c.Watch.SpotsSubdir || c.Watch.ProcessedSubdir == c.Watch.RecordingsSubdir {
		return errors.New("watch.processed_subdir must differ from the inbox subdirectories")
	}
	if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
		return fmt.Errorf("watch.schedule %q: %w", c.Watch.Schedule, err)
	}
	return nil
}
