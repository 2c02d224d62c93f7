package schedule

import (
	"context"
	"log"
	"time"
)

// RefreshFn performs one refresh and returns how long to wait before the
// next.
type RefreshFn func(ctx context.Context) time.Duration

// Run refreshes, sleeps the returned duration and repeats until ctx is done.
func Run(ctx context.Context, refresh RefreshFn) {
	log.Println("[schedule] refresh loop started")
	for {
		d := refresh(ctx)
		log.Printf("[schedule] sleeping %s", d)
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("[schedule] refresh loop stopped")
			return
		case <-timer.C:
		}
	}
}
