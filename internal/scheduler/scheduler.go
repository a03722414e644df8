// Package scheduler polls the upstream for live gameweek changes.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quantti/tapas-fpl-app/internal/metrics"
)

// Refresher is satisfied by service.Dashboard.
type Refresher interface {
	RefreshLive(ctx context.Context) (bool, error)
}

type Scheduler struct {
	s        gocron.Scheduler
	r        Refresher
	interval time.Duration
	timeout  time.Duration
	log      *logrus.Entry
}

func New(r Refresher, interval time.Duration, log logrus.FieldLogger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	timeout := interval
	if timeout <= 0 || timeout > time.Minute {
		timeout = time.Minute
	}
	return &Scheduler{
		s:        s,
		r:        r,
		interval: interval,
		timeout:  timeout,
		log:      log.WithField("component", "scheduler"),
	}, nil
}

// Start registers the live refresh job and starts the scheduler. A
// non-positive interval disables polling.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info("live refresh disabled")
		return nil
	}
	_, err := s.s.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.refresh),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule live refresh: %w", err)
	}
	s.s.Start()
	s.log.WithField("interval", s.interval.String()).Info("live refresh scheduled")
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	log := s.log.WithField("run_id", uuid.NewString())
	start := time.Now()
	refreshed, err := s.r.RefreshLive(ctx)
	switch {
	case err != nil:
		metrics.Refreshes.WithLabelValues(metrics.ResultError).Inc()
		log.WithError(err).Warn("live refresh failed")
	case refreshed:
		metrics.Refreshes.WithLabelValues(metrics.ResultOK).Inc()
		log.WithField("took", time.Since(start).String()).Debug("live data refreshed")
	default:
		metrics.Refreshes.WithLabelValues("idle").Inc()
	}
}
