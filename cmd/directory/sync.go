package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"brightroots/internal/channel"
	"brightroots/internal/scheduler"
	"brightroots/pkg/graceful"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Keep the provider set reconciled until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := graceful.Context(cmd.Context())
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		follow, _ := cmd.Flags().GetString("follow")
		s := a.startSync(ctx, cfg.SyncInterval, follow, func(e scheduler.Synced) {
			fmt.Printf("%s synced %d providers\n", e.Timestamp.Format("15:04:05"), len(e.Providers))
		})

		<-ctx.Done()
		s.Stop()
		log.Println("Sync finished, application exiting.")
		return nil
	},
}

// startSync arms a scheduler over the app's store and reports every pass.
// When follow names a file, the shared-state address tracks it until ctx is
// done.
func (a *app) startSync(ctx context.Context, interval time.Duration, follow string, report func(scheduler.Synced)) *scheduler.Scheduler {
	s := scheduler.New(a.store, a.bus, a.address, scheduler.WithInterval(interval))
	s.Subscribe(report)
	s.Init(ctx)

	if follow != "" {
		log.Printf("Following shared-state address in %s", follow)
		go func() {
			if err := a.address.Follow(ctx, follow, channel.DefaultFollowInterval); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Stopped following %s: %v", follow, err)
			}
		}()
	}
	return s
}

func init() {
	syncCmd.Flags().String("follow", "", "file holding the shared-state address; rewriting it navigates to the new address")
	rootCmd.AddCommand(syncCmd)
}
