package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"wanderlog/internal/database"
	"wanderlog/internal/repositories"
	"wanderlog/internal/seed"
	"wanderlog/internal/services"
	"wanderlog/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func newSeedCmd(app *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users and blogs from a YAML fixture file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := seed.LoadFile(file)
			if err != nil {
				return err
			}
			db, err := app.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			userRepo := repositories.NewGORMUserRepository(db)
			auth := services.NewAuthService(userRepo, app.cfg.JWTSecret, app.cfg.JWTTTL, app.logger)
			blogs := services.NewBlogService(repositories.NewGORMBlogRepository(db), userRepo, nil, app.logger)

			res, err := seed.NewSeeder(auth, userRepo, blogs, app.logger).Apply(cmd.Context(), fixtures)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users: %d created, %d skipped; blogs: %d created, %d skipped\n",
				res.UsersCreated, res.UsersSkipped, res.BlogsCreated, res.BlogsSkipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "fixtures.yaml", "fixture file")
	return cmd
}

func newPublishScheduledCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "publish-scheduled",
		Short: "Publish scheduled blogs whose time has come",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			var events services.EventPublisher
			if app.cfg.RabbitMQEnabled {
				mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: app.cfg.RabbitMQURL, Queue: app.cfg.EventsQueue}, app.logger)
				if err != nil {
					return err
				}
				defer mq.Close()
				events = mq
			}

			blogs := services.NewBlogService(
				repositories.NewGORMBlogRepository(db),
				repositories.NewGORMUserRepository(db),
				events,
				app.logger,
			)
			n, err := blogs.PublishDue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d scheduled blogs\n", n)
			return nil
		},
	}
}

func newConsumeEventsCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "consume-events",
		Short: "Log blog lifecycle events from the queue until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: app.cfg.RabbitMQURL, Queue: app.cfg.EventsQueue}, app.logger)
			if err != nil {
				return err
			}
			defer mq.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return mq.Consume(ctx.Done(), func(ev rabbitmq.Event) error {
				app.logger.Info("blog event",
					zap.String("type", ev.Type),
					zap.Time("occurred_at", ev.OccurredAt),
					zap.Any("payload", ev.Payload))
				return nil
			})
		},
	}
}
