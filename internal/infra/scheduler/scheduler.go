package scheduler

import (
	"context"
	"errors"
	"time"

	"quiet_hours_notifier/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler triggers the dispatch service on a fixed cadence. It is
// one of two invocation paths (the other is the HTTP endpoint); both call the
// same DispatchService, which carries the idempotency guarantees.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	dispatch   *app.DispatchService
	logger     *logrus.Entry
	cronSpec   string
	jobTimeout time.Duration
}

func NewReminderScheduler(
	dispatch *app.DispatchService,
	logger *logrus.Entry,
	cronSpec string, // e.g., "*/5 * * * *" (every 5 minutes)
	jobTimeout time.Duration,
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine: cron.New(cron.WithLocation(time.UTC)), // Window math is UTC; display zone only affects rendering
		dispatch:   dispatch,
		logger:     logger,
		cronSpec:   cronSpec,
		jobTimeout: jobTimeout,
	}
}

func (s *ReminderScheduler) Start() error {
	job := cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		summary, err := s.dispatch.Run(ctx, time.Now().UTC())
		if err != nil {
			if errors.Is(err, app.ErrRunInProgress) {
				s.logger.Warn("Previous reminder run still in progress; skipping this tick")
				return
			}
			s.logger.WithError(err).Error("Reminder dispatch run failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"run_id":  summary.RunID,
			"found":   summary.Found,
			"sent":    summary.Sent,
			"errored": summary.Errored,
		}).Info(summary.Message())
	})

	// SkipIfStillRunning backstops the service's own single-flight guard so a
	// slow run never queues up a burst of follow-on ticks.
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(s.logger))).Then(job)
	if _, err := s.cronEngine.AddJob(s.cronSpec, wrapped); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Reminder scheduler started")
	return nil
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops new runs, waits for the running job.
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped")
}
