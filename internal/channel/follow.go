package channel

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"
)

// DefaultFollowInterval is how often Follow rereads its file.
const DefaultFollowInterval = time.Second

// Follow navigates a to the address held in the file at path whenever the
// file's content changes, so another process can hand this one a new link by
// rewriting the file. It reads the file once immediately, then every
// interval, and returns when ctx is done. A missing or empty file is waited
// for; a bad address is logged and skipped.
func (a *Address) Follow(ctx context.Context, path string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultFollowInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string
	for {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			log.Printf("Failed to read address file %s: %v", path, err)
		default:
			link := strings.TrimSpace(string(raw))
			if link != "" && link != last {
				last = link
				if err := a.Navigate(link); err != nil {
					log.Printf("Ignoring address from %s: %v", path, err)
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
