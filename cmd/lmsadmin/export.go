package main

import (
	"fmt"
	"os"

	"care_training_backend/internal/repository"
	"care_training_backend/internal/service"

	"github.com/spf13/cobra"
)

func newExportProgressCommand() *cobra.Command {
	var out string

	command := &cobra.Command{
		Use:   "export-progress",
		Short: "Write every trainee's module progress as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("os.Create(%s) > %w", out, err)
			}
			defer f.Close()

			analytics := service.NewAnalyticsService(
				repository.NewAnalyticsRepository(db),
				repository.NewUserRepository(db),
				repository.NewCertificateRepository(db),
				repository.NewAttemptRepository(db),
			)
			if err := analytics.ExportProgressCSV(f); err != nil {
				return fmt.Errorf("export progress: %w", err)
			}
			success.Fprintf(cmd.OutOrStdout(), "Progress written to %s\n", out)
			return nil
		},
	}
	command.Flags().StringVar(&out, "out", "progress.csv", "output file")
	return command
}
