package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"diary-service/internal/store"
)

func addMigrate(topLevel *cobra.Command, opts *globalOptions) {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg := opts.cfg
			if cfg.Database.Driver == store.DriverMemory {
				return errors.New("the memory driver has no schema to migrate")
			}

			ctx := cmd.Context()
			db, err := store.Open(ctx, store.DBOptions{
				Driver:          cfg.Database.Driver,
				URL:             cfg.Database.URL,
				ConnectAttempts: cfg.Database.ConnectAttempts,
				ConnectDelay:    cfg.Database.ConnectDelay,
			}, opts.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Migrate(ctx, db, cfg.Database.Driver); err != nil {
				return err
			}
			version, err := store.MigrationVersion(ctx, db, cfg.Database.Driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
