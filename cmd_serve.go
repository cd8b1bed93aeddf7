package main

import (
	"os/signal"
	"syscall"

	"wanderlog/internal/database"
	"wanderlog/internal/server"
	"wanderlog/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(app *cli) *cobra.Command {
	var accessLog bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.cfg.RequireSecret(); err != nil {
				return err
			}
			db, err := app.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			opts := server.Options{
				JWTSecret: app.cfg.JWTSecret,
				TokenTTL:  app.cfg.JWTTTL,
				AccessLog: accessLog,
			}
			if app.cfg.RabbitMQEnabled {
				mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: app.cfg.RabbitMQURL, Queue: app.cfg.EventsQueue}, app.logger)
				if err != nil {
					return err
				}
				defer mq.Close()
				opts.Events = mq
			}

			srv := server.New(db, opts, app.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				app.logger.Info("starting server", zap.String("addr", app.cfg.AppPort))
				errCh <- srv.Fiber.Listen(app.cfg.AppPort)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			app.logger.Info("shutting down server")
			if err := srv.Fiber.Shutdown(); err != nil {
				app.logger.Error("error during shutdown", zap.Error(err))
				return err
			}
			app.logger.Info("server gracefully stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&accessLog, "access-log", true, "log every request")
	return cmd
}
