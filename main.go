package main

import (
	"fmt"
	"os"

	"wanderlog/internal/config"
	"wanderlog/internal/database"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cli carries the state shared by every command. cfg and logger are set
// in the persistent pre-run.
type cli struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	app := &cli{}
	root := &cobra.Command{
		Use:           "wanderlog",
		Short:         "Travel blog content service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), app.cfgFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel, app.verbose)
			if err != nil {
				return err
			}
			app.cfg = cfg
			app.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&app.cfgFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(app),
		newMigrateCmd(app),
		newSeedCmd(app),
		newPublishScheduledCmd(app),
		newConsumeEventsCmd(app),
	)
	return root
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zcfg.Level = lvl
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zcfg.Build()
}

// openDB connects and migrates, so every command sees the current schema.
func (a *cli) openDB() (*gorm.DB, error) {
	db, err := database.Open(a.cfg.DatabaseDriver, a.cfg.DatabaseDSN, a.logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
