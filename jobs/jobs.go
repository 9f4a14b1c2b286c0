package jobs

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

/*
* Register the backfill on the given cron expression
* Skip a tick while the previous run is still going, runs never overlap
* Start the scheduler, the caller owns Stop
 */
func StartBackfillScheduler(schedule string, backfill func()) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		log.Println("Running scheduled visits adminId backfill...")
		backfill()
	})
	if err != nil {
		log.Println("Error while registering the backfill schedule:", err)
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}

	c.Start()
	return c, nil
}
