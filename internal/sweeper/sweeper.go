// Package sweeper removes upload files no longer referenced by any user.
// Photo replacement keeps the old file on disk; this job reclaims those
// leftovers. It only runs when a cron schedule is configured.
package sweeper

import (
	"context"
	"log/slog"
	"os"

	"github.com/japanime/backend/internal/repo"
	"github.com/japanime/backend/internal/uploads"
	"github.com/robfig/cron/v3"
)

// Run starts a background sweep at each tick of the cron schedule.
// The returned cron can be stopped at shutdown.
func Run(schedule string, store *uploads.Store, users *repo.UserRepo) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := Sweep(context.Background(), store, users); err != nil {
			slog.Error("sweep failed", "err", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	slog.Info("orphan photo sweep enabled", "schedule", schedule)
	return c, nil
}

// Sweep deletes every file in the uploads root whose name is not the trailing
// segment of some user's profile_photo URL.
func Sweep(ctx context.Context, store *uploads.Store, users *repo.UserRepo) error {
	urls, err := users.ListPhotoURLs(ctx)
	if err != nil {
		return err
	}

	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		referenced[uploads.FilenameFromURL(u)] = true
	}

	entries, err := os.ReadDir(store.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || referenced[e.Name()] {
			continue
		}
		if err := store.Remove(e.Name()); err != nil {
			slog.Warn("sweep: remove failed", "filename", e.Name(), "err", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("sweep removed orphan files", "count", removed)
	}
	return nil
}
