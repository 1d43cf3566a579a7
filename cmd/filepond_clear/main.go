package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filepond/internal/config"
	"filepond/internal/database"
	"filepond/internal/domain/filepond"
	"filepond/internal/pkg/logging"
	"filepond/internal/storage"
)

func main() {
	logging.CreateLogger()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		all        bool
		expiration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "filepond_clear",
		Short: "Remove expired staged uploads",
		Long: `Deletes staged upload records older than the expiration window together
with their temp files. Soft-deleted records are included.

--all removes every staged upload regardless of age.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("expiration") {
				expiration = cfg.Filepond.Expiration
			}

			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect failed: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			disks, err := storage.Open(cmd.Context(), cfg.StorageConfig())
			if err != nil {
				return fmt.Errorf("storage setup failed: %w", err)
			}

			cleanup := filepond.NewCleanupService(filepond.NewRepository(db), disks, nil)

			var res filepond.SweepResult
			if all {
				res, err = cleanup.SweepAll(cmd.Context())
			} else {
				res, err = cleanup.Sweep(cmd.Context(), expiration)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d uploads (%s), skipped %d\n",
				res.Deleted, humanize.IBytes(uint64(res.Bytes)), res.Skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every staged upload regardless of age")
	cmd.Flags().DurationVar(&expiration, "expiration", 0, "Override the expiration window (default FILEPOND_EXPIRATION)")

	return cmd
}
