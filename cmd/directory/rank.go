package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brightroots/internal/directory"
	"brightroots/internal/models"
	"brightroots/pkg/graceful"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "List approved providers nearest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := graceful.Context(cmd.Context())
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		flags := cmd.Flags()
		q := directory.Query{Demo: cfg.Demo}
		q.Category, _ = flags.GetString("category")
		q.Search, _ = flags.GetString("search")
		q.AllLocations, _ = flags.GetBool("all")
		if demo, _ := flags.GetBool("demo"); demo {
			q.Demo = true
		}
		if saved, ok := a.profile.Saved(ctx); ok {
			q.City = saved.City
		}

		var fix *models.Coordinates
		if flags.Changed("lat") || flags.Changed("lng") {
			lat, _ := flags.GetFloat64("lat")
			lng, _ := flags.GetFloat64("lng")
			fix = &models.Coordinates{Lat: lat, Lng: lng}
		}

		svc := directory.NewService(a.store, a.backend, a.resolver(fix, false))
		res := svc.Discover(ctx, q)

		if asJSON, _ := flags.GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Providers)
		}

		if res.Warning != nil {
			fmt.Fprintf(os.Stderr, "warning: %v (run again to retry)\n", res.Warning)
		}
		fmt.Printf("From %.4f, %.4f (%s), %d providers from %s\n",
			res.Origin.Coordinates.Lat, res.Origin.Coordinates.Lng, res.Origin.Source,
			len(res.Providers), res.Source)
		for _, p := range res.Providers {
			fmt.Printf("%-32s %-14s %-24s %s\n", p.BusinessName, p.Label(q.AllLocations), p.Location.City, p.ID)
		}
		return nil
	},
}

func init() {
	rankCmd.Flags().String("category", "", "only providers offering this category")
	rankCmd.Flags().String("search", "", "match provider name or description")
	rankCmd.Flags().Bool("all", false, "show all locations without distance ranking")
	rankCmd.Flags().Bool("demo", false, "rank the local reconciled set instead of the database")
	rankCmd.Flags().Float64("lat", 0, "rank from this latitude")
	rankCmd.Flags().Float64("lng", 0, "rank from this longitude")
	rankCmd.Flags().Bool("json", false, "output providers as JSON")

	rootCmd.AddCommand(rankCmd)
}
