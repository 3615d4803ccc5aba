package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"zns/internal/platform/config"
	"zns/internal/platform/postgres"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(*cobra.Command, []string) error {
				dsn, err := postgresDSN(c.cfg)
				if err != nil {
					return err
				}
				if err := postgres.Migrate(dsn); err != nil {
					return err
				}
				c.logger.Info("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn, err := postgresDSN(c.cfg)
				if err != nil {
					return err
				}
				v, dirty, err := postgres.Version(dsn)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
				return nil
			},
		},
	)
	return cmd
}

func postgresDSN(cfg config.Config) (string, error) {
	if cfg.Postgres.DSN == "" {
		return "", errors.New("postgres.dsn is not set")
	}
	return cfg.Postgres.DSN, nil
}
