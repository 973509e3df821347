package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ifttt-relay/internal/relay"
)

func newServeCommand(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, notifiers, err := setup(*configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			service := relay.NewService(notifiers, cfg.Location(), logger)
			handler := relay.NewHandler(service, logger, relay.Options{
				StrictFields: cfg.StrictFields,
				MaxBodyBytes: cfg.MaxBodyBytes,
			})
			server := relay.NewServer(cfg, handler, service, logger)

			logger.Info("starting relay", "notifiers", len(notifiers), "timezone", cfg.Timezone, "strict_fields", cfg.StrictFields)
			if err := server.ListenAndServe(ctx); err != nil {
				return err
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides listen_addr)")
	return cmd
}
