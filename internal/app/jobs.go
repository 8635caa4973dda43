package app

import (
	"context"
	"time"

	"github.com/chatfusion/warelay/internal/provider"
	"go.uber.org/zap"
)

// initJobs registers scheduled jobs. The inactive-session sweep is off
// unless a cron expression is configured; the pipeline stays reactive by
// default.
func (a *Application) initJobs() {
	sweepCron := a.appConfig.Provider.SweepCron
	if sweepCron == "" {
		return
	}
	client := provider.NewClient(a.appConfig.Provider)
	if _, err := a.sched.AddFunc(sweepCron, func() {
		a.runInactiveSweep(client)
	}); err != nil {
		zap.L().Error("failed to register inactive sweep job",
			zap.String("cron", sweepCron), zap.Error(err))
		return
	}
	zap.L().Info("registered inactive session sweep", zap.String("cron", sweepCron))
}

// runInactiveSweep relays terminateInactive to the provider. Local device
// state is untouched; the provider reports resulting disconnects through
// webhooks like any other transition.
func (a *Application) runInactiveSweep(client *provider.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	resp, err := client.TerminateInactiveSessions(ctx)
	if err != nil {
		zap.L().Warn("inactive session sweep failed", zap.Error(err))
		return
	}
	zap.L().Info("inactive session sweep done", zap.Int("status", resp.StatusCode))
}
