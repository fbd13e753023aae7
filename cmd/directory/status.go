package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brightroots/internal/models"
	"brightroots/pkg/graceful"
)

var statusCmd = &cobra.Command{
	Use:   "status <provider-id> <pending|approved|rejected>",
	Short: "Change a provider's review status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := models.ParseStatus(args[1])
		if err != nil {
			return err
		}

		ctx, stop := graceful.Context(cmd.Context())
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.UpdateStatus(ctx, args[0], status); err != nil {
			return err
		}
		if a.postgres != nil {
			if err := a.postgres.UpdateStatus(ctx, args[0], status); err != nil {
				return err
			}
		}
		fmt.Printf("%s is now %s (published: %t)\n", args[0], status, status.Publishes())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
