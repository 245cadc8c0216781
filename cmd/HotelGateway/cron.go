package main

import (
	"context"
	"fmt"
	"time"

	"HotelGateway/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
)

const defaultMonitorSpec = "@every 30s"

// StartQueueMonitorCron publishes the loyalty queue depth and reaps stranded
// jobs on spec, a cron expression with a seconds field or a descriptor such
// as "@every 30s".
func StartQueueMonitorCron(monitor *biz.QueueMonitor, spec string, logger log.Logger) (*cron.Cron, error) {
	helper := log.NewHelper(logger)
	if spec == "" {
		spec = defaultMonitorSpec
	}

	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := monitor.Report(ctx); err != nil {
			helper.Errorw("msg", "queue monitor run failed", "error", err)
		}
		if _, err := monitor.Reap(ctx); err != nil {
			helper.Errorw("msg", "queue reaper run failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register queue monitor cron job %q: %w", spec, err)
	}

	c.Start()
	helper.Infow("msg", "queue monitor cron job started", "spec", spec)

	return c, nil
}
