package jobs

import (
	"context"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"
)

// Schedule calls run every interval until ctx is done. A failed run is logged and the
// next tick tries again.
func Schedule(ctx context.Context, clk clock.Clock, name string, interval time.Duration, run func(ctx context.Context) error, logger *zap.Logger) {
	log := logger.Named("jobs.scheduler").With(zap.String("job", name), zap.Duration("interval", interval))
	log.Info("scheduler started")

	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return
		case <-clk.After(interval):
			start := clk.Now()
			if err := run(ctx); err != nil {
				log.Error("scheduled run failed", zap.Error(err))
				continue
			}
			log.Info("scheduled run finished", zap.Duration("took", clk.Now().Sub(start)))
		}
	}
}
