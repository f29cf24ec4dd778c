package atelier

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StartRetention schedules a daily prune of analytics day records older
// than the retention window. The returned function stops the scheduler.
func StartRetention(store Store, days int) func() {
	c := cron.New()
	_, err := c.AddFunc("@daily", func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		removed, err := store.PruneAnalytics(ctx, cutoff)
		if err != nil {
			log.Printf("retention: prune failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("retention: pruned %d day records older than %s", removed, cutoff)
		}
	})
	if err != nil {
		log.Printf("retention: schedule failed: %v", err)
		return func() {}
	}
	c.Start()
	return func() { c.Stop() }
}
