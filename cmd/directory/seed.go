package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"brightroots/internal/enrich"
	"brightroots/internal/models"
	"brightroots/pkg/graceful"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the sample directory into every channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := graceful.Context(cmd.Context())
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		now := time.Now()
		records := enrichAll(ctx, enrich.NewProviderPipeline(nil, func() time.Time { return now }), sampleProviders(now))
		a.store.Save(ctx, records)
		fmt.Printf("Seeded %d providers\n", len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// enrichAll streams records through p and returns them in order. Records
// still in flight when ctx is done are dropped.
func enrichAll(ctx context.Context, p *enrich.Pipeline[models.ProviderRecord], records []models.ProviderRecord) []models.ProviderRecord {
	in := make(chan *models.ProviderRecord)
	go func() {
		defer close(in)
		for i := range records {
			select {
			case in <- &records[i]:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make([]models.ProviderRecord, 0, len(records))
	for r := range p.Process(ctx, in) {
		out = append(out, *r)
	}
	return out
}

func coords(lat, lng float64) *models.Coordinates {
	return &models.Coordinates{Lat: lat, Lng: lng}
}

// sampleProviders is a small directory around Gurgaon and Delhi, created
// relative to now so newer entries sort first.
func sampleProviders(now time.Time) []models.ProviderRecord {
	day := func(n int) time.Time { return now.UTC().Add(-time.Duration(n) * 24 * time.Hour).Truncate(time.Second) }
	approved := func(r models.ProviderRecord) models.ProviderRecord {
		r.Status = models.StatusApproved
		r.Published = true
		return r
	}
	return []models.ProviderRecord{
		approved(models.ProviderRecord{
			ID: "sample-bright-minds", BusinessName: "Bright Minds Tuition Centre", OwnerName: "Priya Sharma",
			Email: "priya@brightminds.example", Phone: "9810012345",
			Description: "Maths and science tuition for classes 6 to 10 in small batches.",
			Categories:  []string{"tuition"},
			Location:    models.Location{City: "Gurgaon", Area: "Sector 29", Pincode: "122001", Coordinates: coords(28.4670, 77.0650)},
			CreatedAt:   day(30),
		}),
		approved(models.ProviderRecord{
			ID: "sample-little-mozart", BusinessName: "Little Mozart Music Academy", OwnerName: "Rahul Verma",
			Email: "hello@littlemozart.example", Phone: "9810023456",
			Description: "Piano, guitar and vocal lessons with annual recitals.",
			Categories:  []string{"music"},
			Location:    models.Location{City: "Gurgaon", Area: "DLF Phase 4", Pincode: "122009", Coordinates: coords(28.4650, 77.0880)},
			CreatedAt:   day(20),
		}),
		approved(models.ProviderRecord{
			ID: "sample-code-kids", BusinessName: "CodeKids Online", OwnerName: "Ananya Iyer",
			Email: "team@codekids.example", Phone: "9810034567",
			Description: "Live Scratch and Python classes for ages 7 to 14.",
			Categories:  []string{"coding"},
			Location:    models.Location{City: "Gurgaon", Online: true},
			CreatedAt:   day(12),
		}),
		approved(models.ProviderRecord{
			ID: "sample-rhythm-dance", BusinessName: "Rhythm Dance Studio", OwnerName: "Kavya Nair",
			Email: "studio@rhythm.example", Phone: "9810045678",
			Description: "Bollywood, contemporary and classical dance for kids.",
			Categories:  []string{"dance", "music"},
			Location:    models.Location{City: "Delhi", Area: "Saket", Pincode: "110017", Coordinates: coords(28.5245, 77.2066)},
			CreatedAt:   day(8),
		}),
		approved(models.ProviderRecord{
			ID: "sample-young-champions", BusinessName: "Young Champions Sports Club", OwnerName: "Vikram Singh",
			Email: "coach@youngchampions.example", Phone: "9810056789",
			Description: "Football, cricket and athletics coaching on weekends.",
			Categories:  []string{"sports", "camps"},
			Location:    models.Location{City: "Delhi", Area: "Connaught Place", Pincode: "110001", Coordinates: coords(28.7041, 77.1025)},
			CreatedAt:   day(5),
		}),
		{
			ID: "sample-art-corner", BusinessName: "Art Corner", OwnerName: "Meera Kapoor",
			Email: "meera@artcorner.example", Phone: "9810067890",
			Description: "Drawing and painting for young artists.",
			Categories:  []string{"art"},
			Location:    models.Location{City: "Gurgaon", Area: "Sector 56", Pincode: "122011", Coordinates: coords(28.4215, 77.1030)},
			Status:      models.StatusPending,
			CreatedAt:   day(1),
		},
	}
}
