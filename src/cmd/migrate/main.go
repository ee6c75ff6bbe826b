package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"feedbackflow/src/helper/env"
	"feedbackflow/src/infra/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the embedded FeedbackFlow database migrations",
		SilenceUsage: true,
	}
	root.AddCommand(
		directionCmd(logger, postgres.Up, "Apply every pending migration"),
		directionCmd(logger, postgres.Down, "Revert every applied migration"),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func directionCmd(logger *slog.Logger, direction postgres.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := postgres.BuildDSN(
				env.MustGetString("DB_WRITE_HOST"),
				env.GetString("DB_PORT", "5432"),
				env.MustGetString("DB_NAME"),
				env.MustGetString("DB_USER"),
				env.MustGetString("DB_PASSWORD"),
			)

			if err := postgres.Migrate(dsn, direction); err != nil {
				logger.Error("Migration failed", "direction", direction, "error", err)
				return fmt.Errorf("migrate %s: %w", direction, err)
			}

			logger.Info("Migrations applied", "direction", direction)
			return nil
		},
	}
}
