package services

import (
	"context"
	"sync"
	"time"

	"linecheck/internal/logger"
	"linecheck/internal/models"
	"linecheck/internal/utils"
)

// CredentialChecker gates polling on a usable credential. Polling with a
// missing or expired credential would only burn requests on 401s.
type CredentialChecker interface {
	HasValidCredential() bool
}

// tickSource abstracts time.Ticker so tests can drive ticks manually. The
// returned func stops the underlying ticker.
type tickSource func(interval time.Duration) (<-chan time.Time, func())

func defaultTickSource(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}

// PollingService periodically drops cached checklist state for a shift type
// so the next read reflects changes made on other devices. It never fetches
// itself; invalidation leaves the fetch to the next interested reader.
type PollingService struct {
	creds    CredentialChecker
	tasks    TaskInvalidator
	boundary *utils.DayBoundary
	interval time.Duration
	ticker   tickSource
	log      logger.Logger
}

func NewPollingService(
	creds CredentialChecker,
	tasks TaskInvalidator,
	boundary *utils.DayBoundary,
	interval time.Duration,
) *PollingService {
	return &PollingService{
		creds:    creds,
		tasks:    tasks,
		boundary: boundary,
		interval: interval,
		ticker:   defaultTickSource,
		log:      logger.New("PollingService"),
	}
}

// StopHandle terminates one polling loop. Stop is idempotent and blocks until
// the loop has fully exited, so callers can rely on no further invalidations
// after it returns.
type StopHandle struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func (h *StopHandle) Stop() {
	h.once.Do(func() {
		close(h.stop)
	})
	<-h.done
}

// Start launches the polling loop for one shift type. Every caller must
// eventually call Stop on the returned handle; an unstopped loop invalidates
// the cache forever.
func (p *PollingService) Start(shift models.ShiftType) *StopHandle {
	log := p.log.Function("Start").With("shiftType", shift)

	handle := &StopHandle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(handle.done)

		ticks, stopTicker := p.ticker(p.interval)
		defer stopTicker()

		log.Info("Polling started", "interval", p.interval)

		for {
			select {
			case <-handle.stop:
				log.Info("Polling stopped")
				return
			case <-ticks:
				select {
				case <-handle.stop:
					log.Info("Polling stopped")
					return
				default:
				}

				if !p.creds.HasValidCredential() {
					log.Debug("Skipping poll, no valid credential")
					continue
				}

				p.pollOnce(shift, log)
			}
		}
	}()

	return handle
}

func (p *PollingService) pollOnce(shift models.ShiftType, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	today := p.boundary.Today()
	if err := p.tasks.InvalidateDay(ctx, shift, today); err != nil {
		log.Warn("poll invalidation failed", "date", today, "error", err)
	}
}
