package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"brightroots/internal/enrich"
	"brightroots/internal/models"
	"brightroots/pkg/graceful"
	"brightroots/pkg/location"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a provider listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := graceful.Context(cmd.Context())
		defer stop()

		flags := cmd.Flags()
		rec := models.ProviderRecord{}
		rec.BusinessName, _ = flags.GetString("name")
		rec.OwnerName, _ = flags.GetString("owner")
		rec.Email, _ = flags.GetString("email")
		rec.Phone, _ = flags.GetString("phone")
		rec.Description, _ = flags.GetString("description")
		rec.Categories, _ = flags.GetStringSlice("category")
		rec.Location.City, _ = flags.GetString("city")
		rec.Location.Area, _ = flags.GetString("area")
		rec.Location.Pincode, _ = flags.GetString("pincode")
		rec.Location.Online, _ = flags.GetBool("online")
		if flags.Changed("lat") && flags.Changed("lng") {
			lat, _ := flags.GetFloat64("lat")
			lng, _ := flags.GetFloat64("lng")
			rec.Location.Coordinates = &models.Coordinates{Lat: lat, Lng: lng}
		}
		if rec.BusinessName == "" {
			return fmt.Errorf("--name is required")
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		var geocoder enrich.Geocoder
		if skip, _ := flags.GetBool("no-geocode"); !skip {
			geocoder = location.NewGeocoder(cfg.GeocoderURL, cfg.GeocoderRate)
		}
		if failed := enrich.NewProviderPipeline(geocoder, time.Now).Apply(ctx, &rec); failed > 0 {
			fmt.Printf("%d enrichment steps failed, adding the listing as entered\n", failed)
		}

		a.store.AddRecord(ctx, rec)
		fmt.Printf("Added %s (%s) in %s, status %s\n", rec.BusinessName, rec.ID, rec.Location.City, rec.Status)
		return nil
	},
}

func init() {
	addCmd.Flags().String("name", "", "business name")
	addCmd.Flags().String("owner", "", "owner name")
	addCmd.Flags().String("email", "", "contact email")
	addCmd.Flags().String("phone", "", "contact phone")
	addCmd.Flags().String("description", "", "listing description")
	addCmd.Flags().StringSlice("category", nil, "categories offered (repeatable)")
	addCmd.Flags().String("city", "", "city")
	addCmd.Flags().String("area", "", "area or sector")
	addCmd.Flags().String("pincode", "", "postal code")
	addCmd.Flags().Bool("online", false, "classes are online only")
	addCmd.Flags().Float64("lat", 0, "latitude")
	addCmd.Flags().Float64("lng", 0, "longitude")
	addCmd.Flags().Bool("no-geocode", false, "do not look up missing coordinates")

	rootCmd.AddCommand(addCmd)
}
