package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const purgeResetCodesSpec = "0 0 * * * *"

// ResetCodePurger clears password reset codes that can no longer be used.
type ResetCodePurger interface {
	PurgeExpiredResetCodes(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	purger ResetCodePurger
	log    zerolog.Logger
}

func NewScheduler(purger ResetCodePurger, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		purger: purger,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(purgeResetCodesSpec, s.purgeResetCodes); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
	return nil
}

// Stop waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stopped before jobs finished")
	}
}

func (s *Scheduler) purgeResetCodes() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.purger.PurgeExpiredResetCodes(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired reset codes failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("cleared", n).Msg("expired reset codes cleared")
	}
}
