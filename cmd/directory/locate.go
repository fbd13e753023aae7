package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brightroots/pkg/graceful"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Resolve the location the directory ranks from",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := graceful.Context(cmd.Context())
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		save, _ := cmd.Flags().GetBool("save")
		res := a.resolver(nil, save).Resolve(ctx)
		fmt.Printf("%.4f, %.4f (%s)\n", res.Coordinates.Lat, res.Coordinates.Lng, res.Source)
		return nil
	},
}

func init() {
	locateCmd.Flags().Bool("save", false, "remember a device fix as the saved location")
	rootCmd.AddCommand(locateCmd)
}
