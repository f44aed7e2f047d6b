package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// SweepService is the slice of the loan service the scheduler drives.
type SweepService interface {
	SweepOverdue(ctx context.Context) error
}

// Scheduler periodically sweeps schedules for overdue installments.
type Scheduler struct {
	service SweepService
	logger  *logrus.Logger
	ticker  *time.Ticker
	done    chan struct{}
}

// NewScheduler creates a new Scheduler
func NewScheduler(service SweepService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		service: service,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start begins the periodic sweep. The first sweep runs immediately.
func (s *Scheduler) Start(interval time.Duration) {
	s.ticker = time.NewTicker(interval)

	go func() {
		s.runSweep()
		for {
			select {
			case <-s.ticker.C:
				s.runSweep()
			case <-s.done:
				return
			}
		}
	}()

	s.logger.Infof("Overdue sweep scheduler started with interval %s", interval)
}

// Stop halts the scheduler
func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)
	s.logger.Info("Overdue sweep scheduler stopped")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.service.SweepOverdue(ctx); err != nil {
		s.logger.Warnf("Overdue sweep failed: %v", err)
	}
}
