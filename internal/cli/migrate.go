package cli

import (
	"github.com/spf13/cobra"

	"github.com/chernandez90/InsurancePortal/internal/app"
	"github.com/chernandez90/InsurancePortal/pkg/database"
	"github.com/chernandez90/InsurancePortal/pkg/log"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the claim and user tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			db, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			l := log.L()
			l.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")
			return nil
		},
	}
}
