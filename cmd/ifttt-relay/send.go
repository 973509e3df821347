package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ifttt-relay/internal/notify"
	"ifttt-relay/internal/relay"
)

func newSendCommand(configPath *string) *cobra.Command {
	var level, source, message, timestamp string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single notification through the configured notifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, notifiers, err := setup(*configPath)
			if err != nil {
				return err
			}
			if len(notifiers) == 0 {
				return fmt.Errorf("no notifiers configured")
			}

			event := notify.Event{
				Timestamp: relay.ParseTimestamp(json.RawMessage(strconv.Quote(timestamp))),
				Level:     notify.ParseLevel(level),
				Source:    source,
				Message:   message,
			}

			service := relay.NewService(notifiers, cfg.Location(), logger)
			if err := service.Emit(cmd.Context(), event); err != nil {
				return fmt.Errorf("send notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Notification sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "level", "info", "Severity (debug, info, warn, error)")
	cmd.Flags().StringVar(&source, "source", "ifttt-relay", "Source shown next to the severity marker")
	cmd.Flags().StringVar(&message, "message", "Notification system test", "Message body")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "Event time in epoch milliseconds (default now)")
	return cmd
}
