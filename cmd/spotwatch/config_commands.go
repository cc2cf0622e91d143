package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"spotwatch/internal/config"
	"spotwatch/internal/logging"
)

const maskedSecret = "********"

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create, check and print the configuration",
	}
	configCmd.AddCommand(
		newConfigInitCommand(),
		newConfigValidateCommand(ctx),
		newConfigShowCommand(ctx),
	)
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, err := os.Stat(target)
				switch {
				case err == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Drop spot and recording files under the inbox and run `spotwatch watch`, or import them by hand.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if value := strings.TrimSpace(flagValue); value != "" {
		path, err := config.ExpandPath(value)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return path, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and summarize what it sets up",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			source := path
			if !exists {
				source += " (not found, defaults used)"
			}
			printConfigSummary(out, source, cfg)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func printConfigSummary(out io.Writer, source string, cfg *config.Config) {
	spots, recordings, processed := cfg.InboxDirs()
	window := "spot duration"
	if cfg.Matching.ClusterWindowSeconds > 0 {
		window = strconv.FormatFloat(cfg.Matching.ClusterWindowSeconds, 'f', -1, 64) + "s"
	}
	rows := [][]string{
		{"Config", source},
		{"Database", cfg.DatabasePath()},
		{"Log file", filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
		{"Spot inbox", spots},
		{"Recording inbox", recordings},
		{"Processed", processed},
		{"Threshold", strconv.FormatFloat(cfg.Matching.Threshold, 'f', -1, 64)},
		{"Cluster window", window},
		{"Workers", strconv.Itoa(cfg.WorkerCount())},
		{"Spot concurrency", strconv.Itoa(cfg.Matching.SpotConcurrency)},
		{"Notifications", notificationTransports(cfg)},
		{"Watch schedule", cfg.Watch.Schedule},
	}
	printTable(out, "", []string{"Setting", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
}

func notificationTransports(cfg *config.Config) string {
	var transports []string
	if cfg.Notifications.NtfyTopic != "" {
		transports = append(transports, "ntfy")
	}
	if cfg.Email.Enabled {
		transports = append(transports, "email to "+cfg.Email.To)
	}
	if len(transports) == 0 {
		return "none"
	}
	return strings.Join(transports, ", ")
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			redacted := *cfg
			if redacted.Email.SMTPPassword != "" {
				redacted.Email.SMTPPassword = maskedSecret
			}
			data, err := toml.Marshal(redacted)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# effective configuration loaded from %s\n", ctx.configPath)
			_, err = out.Write(data)
			return err
		},
	}
}
