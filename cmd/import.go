package cmd

import (
	"fmt"
	"os"

	"cafefinder/database"
	"cafefinder/store"
	"cafefinder/transfer"
	"cafefinder/validation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Add cafes from an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			db, err := database.Open(cfg.Database, logger, false)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}

			importer := transfer.NewImporter(validation.New(), store.NewCafeStore(db))
			report, err := importer.Import(cmd.Context(), f)
			if err != nil {
				return err
			}

			for _, skipped := range report.Skipped {
				logger.Warn("row skipped", zap.Int("row", skipped.Row), zap.String("error", skipped.Error))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cafes, skipped %d rows\n", len(report.Created), len(report.Skipped))
			return nil
		},
	}
}
