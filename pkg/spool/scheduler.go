package spool

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule runs ProcessOnce on a standard cron expression such as
// "*/5 * * * *" or "@every 30s". A tick that arrives while a run is still
// active is skipped. Schedule blocks until ctx is canceled, then waits for
// the running job and returns nil.
func (p *Processor) Schedule(ctx context.Context, spec string) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() {
		p.runLogged(ctx)
	}))
	c.Start()

	p.logger.InfoContext(ctx, "spool scheduler started",
		"schedule", spec,
		"next_run", schedule.Next(time.Now()),
	)

	<-ctx.Done()

	stopped := c.Stop()
	<-stopped.Done()
	p.logger.InfoContext(ctx, "spool scheduler stopped")
	return nil
}
