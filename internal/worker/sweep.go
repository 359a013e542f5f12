// Package worker provides background workers for the CreatorPulse service.
// sweep.go implements the scheduled-newsletter sweep.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
	"github.com/jhawaritvik/CreatorPulse/internal/metrics"
)

const defaultSweepInterval = 60 * time.Second

// NewsletterSource lists and transitions scheduled newsletters.
type NewsletterSource interface {
	ListScheduled(ctx context.Context) ([]domain.Newsletter, error)
	ClaimForSending(ctx context.Context, id uuid.UUID, from domain.Status) (bool, error)
	FinishSending(ctx context.Context, id uuid.UUID, final domain.Status) error
	ReleaseToScheduled(ctx context.Context, id uuid.UUID) error
}

// Deliverer mails a claimed newsletter and finishes its status transition.
type Deliverer interface {
	Deliver(ctx context.Context, nl *domain.Newsletter, testMode bool) (*domain.DeliveryResult, error)
}

// Sweep periodically scans scheduled newsletters and delivers the due ones.
// Each due newsletter is claimed with a conditional transition before
// delivery, so overlapping sweeps or a concurrent user-triggered send
// cannot double-mail it.
type Sweep struct {
	newsletters NewsletterSource
	deliverer   Deliverer
	metrics     *metrics.Metrics
	logger      logger.Logger
	interval    time.Duration
	now         func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewSweep creates a sweep worker. metrics may be nil.
func NewSweep(
	newsletters NewsletterSource,
	deliverer Deliverer,
	interval time.Duration,
	mx *metrics.Metrics,
	log logger.Logger,
) *Sweep {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Sweep{
		newsletters: newsletters,
		deliverer:   deliverer,
		metrics:     mx,
		logger:      log,
		interval:    interval,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the sweep loop.
func (s *Sweep) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("scheduling sweep started", logger.Duration("interval", s.interval))
}

// Stop gracefully stops the sweep, waiting for an in-flight pass to finish.
func (s *Sweep) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("scheduling sweep stopped")
}

// IsRunning returns whether the sweep loop is active.
func (s *Sweep) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *Sweep) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Sweep immediately on start so restarts do not delay overdue sends.
	s.ProcessOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.ProcessOnce(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// ProcessOnce runs a single sweep pass over the current snapshot of
// scheduled newsletters. A newsletter scheduled after the snapshot is
// picked up next tick.
func (s *Sweep) ProcessOnce(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.SweepRuns.Inc()
	}

	scheduled, err := s.newsletters.ListScheduled(ctx)
	if err != nil {
		s.logger.Error("failed to list scheduled newsletters", logger.Error(err))
		return
	}

	now := s.now().UTC()
	due := 0
	for i := range scheduled {
		nl := &scheduled[i]

		if nl.ScheduledTime == nil {
			// A scheduled row without a time cannot become due. Flag it and
			// move on rather than blocking the pass.
			s.logger.Warn("scheduled newsletter has no scheduled_time",
				logger.String("newsletter_id", nl.ID.String()))
			continue
		}
		if nl.ScheduledTime.After(now) {
			continue
		}

		due++
		s.sendDue(ctx, nl)
	}

	if s.metrics != nil {
		s.metrics.SweepDueNewsletters.Set(float64(due))
	}
}

// sendDue claims one due newsletter and delivers it. Losing the claim means
// another sweep tick or a user-triggered send got there first.
func (s *Sweep) sendDue(ctx context.Context, nl *domain.Newsletter) {
	claimed, err := s.newsletters.ClaimForSending(ctx, nl.ID, domain.StatusScheduled)
	if err != nil {
		s.logger.Error("failed to claim scheduled newsletter",
			logger.String("newsletter_id", nl.ID.String()),
			logger.Error(err))
		return
	}
	if !claimed {
		s.logger.Debug("newsletter claimed elsewhere",
			logger.String("newsletter_id", nl.ID.String()))
		return
	}

	if s.metrics != nil {
		s.metrics.SweepClaims.Inc()
	}
	s.logger.Info("sending due newsletter",
		logger.String("newsletter_id", nl.ID.String()),
		logger.String("user_id", nl.UserID),
		logger.Time("scheduled_time", *nl.ScheduledTime))

	result, err := s.deliverer.Deliver(ctx, nl, false)
	if err != nil {
		if errors.Is(err, domain.ErrNoRecipients) {
			// The deliverer already handed the claim back. Leave the row for
			// the owner to fix rather than re-releasing it.
			s.logger.Warn("scheduled newsletter has no unsent recipients",
				logger.String("newsletter_id", nl.ID.String()))
			return
		}
		// Delivery never started or could not record its outcome. Release the
		// claim so the next tick retries instead of stranding the row.
		s.logger.Error("delivery failed, releasing newsletter to scheduled",
			logger.String("newsletter_id", nl.ID.String()),
			logger.Error(err))
		if relErr := s.newsletters.ReleaseToScheduled(ctx, nl.ID); relErr != nil {
			s.logger.Error("failed to release newsletter",
				logger.String("newsletter_id", nl.ID.String()),
				logger.Error(relErr))
		}
		return
	}

	s.logger.Info("due newsletter delivered",
		logger.String("newsletter_id", nl.ID.String()),
		logger.Int("sent", result.SentCount),
		logger.Int("failed", result.FailedCount))
}
