package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zns/internal/platform/config"
	"zns/internal/platform/logger"
)

var version = "dev"

// cli holds what every subcommand shares once flags are parsed.
type cli struct {
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "znsd",
		Short:         "Hierarchical naming registry",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			if err := v.BindPFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
				return err
			}
			cfg, err := config.Load(v, c.cfgFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(c.logger)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newQuoteCmd(c),
	)
	return root
}
