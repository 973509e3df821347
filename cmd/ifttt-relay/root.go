package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ifttt-relay/internal/config"
	"ifttt-relay/internal/logging"
	"ifttt-relay/internal/notify"
)

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "ifttt-relay",
		Short:         "Relay log events to an IFTTT webhook trigger",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration file")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newSendCommand(&configPath))
	return rootCmd
}

// setup loads configuration and builds the logger and notifiers shared by all commands.
func setup(configPath string) (*config.Config, *slog.Logger, []notify.Notifier, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)

	notifiers := buildNotifiers(cfg)
	if len(notifiers) == 0 {
		logger.Warn("no notifiers configured; events will only be written to the local log")
	}
	return cfg, logger, notifiers, nil
}

func buildNotifiers(cfg *config.Config) []notify.Notifier {
	notifiers := make([]notify.Notifier, 0, 2)
	timeout := cfg.RequestTimeout()

	if ifttt := cfg.Notifications.IFTTT; ifttt != nil {
		notifiers = append(notifiers, notify.NewIFTTTNotifier(ifttt.BaseURL, ifttt.TriggerPath, ifttt.Event, ifttt.Secret, timeout))
	}
	if tg := cfg.Notifications.Telegram; tg != nil {
		notifiers = append(notifiers, notify.NewTelegramNotifier(tg.BotToken, tg.ChatID, timeout))
	}
	return notifiers
}
