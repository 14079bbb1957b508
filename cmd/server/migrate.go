package main

import (
	"context"

	"github.com/spf13/cobra"
	pgInfra "github.com/vogiaan1904/ticketbottle-waitlist/internal/infra/postgres"
	pgRepo "github.com/vogiaan1904/ticketbottle-waitlist/internal/repository/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()

			pool, err := pgInfra.Connect(ctx, cfg.Postgres, l)
			if err != nil {
				return err
			}
			defer pgInfra.Disconnect(pool, l)

			if err := pgRepo.Migrate(ctx, pool); err != nil {
				return err
			}

			l.Info(ctx, "Migrations applied")
			return nil
		},
	}
}
