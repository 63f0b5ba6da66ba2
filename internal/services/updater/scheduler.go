package updater

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/interfaces"
)

// Scheduler fires the update cycle on a cron schedule. Re-entrancy policy is
// skip-if-running: the service serializes cycles internally, so a tick that
// lands mid-cycle is dropped and logged rather than overlapped.
type Scheduler struct {
	cron    *cron.Cron
	updater interfaces.UpdateService
	logger  *common.Logger
}

// NewScheduler creates a scheduler for the given update service.
func NewScheduler(updater interfaces.UpdateService, logger *common.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		updater: updater,
		logger:  logger,
	}
}

// Start registers the schedule and begins firing. The scheduled path and the
// manual trigger endpoint call the identical Run contract.
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		report, err := s.updater.Run(context.Background())
		if err != nil {
			s.logger.Error().Err(err).Msg("Scheduled update cycle failed")
			return
		}
		if report.Skipped {
			s.logger.Warn().Str("reason", report.SkipReason).Msg("Scheduled update cycle skipped")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Update scheduler started")
	return nil
}

// Stop halts scheduling and waits for any in-flight cycle to finish its
// current operation before returning.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Update scheduler stopped")
}
