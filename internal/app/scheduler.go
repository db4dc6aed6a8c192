package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
)

// maturityRunTimeout bounds one maturity sweep.
const maturityRunTimeout = 2 * time.Minute

// StartMaturityScheduler registers the maturity sweep on the configured cron
// schedule and runs one catch-up sweep immediately. An empty schedule
// disables the sweep.
func (a *App) StartMaturityScheduler() error {
	schedule := a.Config.Investment.MaturitySchedule
	if schedule == "" {
		a.Logger.Info().Msg("Maturity scheduler: disabled")
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		runMaturitySweep(context.Background(), a.InvestmentService, a.Logger)
	}); err != nil {
		return fmt.Errorf("invalid maturity schedule %q: %w", schedule, err)
	}

	a.scheduler = c
	c.Start()
	a.Logger.Info().Str("schedule", schedule).Msg("Maturity scheduler: started")

	go runMaturitySweep(context.Background(), a.InvestmentService, a.Logger)
	return nil
}

// StopMaturityScheduler stops the cron runner and waits for a running sweep.
func (a *App) StopMaturityScheduler() {
	if a.scheduler == nil {
		return
	}
	<-a.scheduler.Stop().Done()
	a.scheduler = nil
	a.Logger.Info().Msg("Maturity scheduler: stopped")
}

func runMaturitySweep(ctx context.Context, investments interfaces.InvestmentService, logger *common.Logger) {
	ctx, cancel := context.WithTimeout(ctx, maturityRunTimeout)
	defer cancel()

	start := time.Now()
	n, err := investments.MatureDue(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Maturity sweep failed")
		return
	}
	if n > 0 {
		logger.Info().
			Int("matured", n).
			Dur("elapsed", time.Since(start)).
			Msg("Maturity sweep: complete")
	}
}
