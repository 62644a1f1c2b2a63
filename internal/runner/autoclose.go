// Package runner hosts background jobs.
package runner

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zapdesk-io/zapdesk/internal/config"
	"github.com/zapdesk-io/zapdesk/internal/metrics"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

// AutoCloser periodically closes pending tickets with no activity for the
// configured window.
type AutoCloser struct {
	tickets repository.TicketRepository
	cron    *cron.Cron
	after   time.Duration
}

// NewAutoCloser creates the job. A zero auto-close window disables it.
func NewAutoCloser(tickets repository.TicketRepository, cfg *config.TicketConfig) (*AutoCloser, error) {
	a := &AutoCloser{
		tickets: tickets,
		cron:    cron.New(),
		after:   cfg.AutoCloseAfter,
	}
	if a.after == 0 {
		return a, nil
	}
	if _, err := a.cron.AddFunc(cfg.AutoCloseSchedule, a.runOnce); err != nil {
		return nil, err
	}
	return a, nil
}

// Start launches the scheduler.
func (a *AutoCloser) Start() {
	if a.after == 0 {
		return
	}
	a.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (a *AutoCloser) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
}

func (a *AutoCloser) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-a.after)
	n, err := a.tickets.CloseStalePending(ctx, cutoff)
	if err != nil {
		log.Printf("auto-close run failed: %v", err)
		return
	}
	if n > 0 {
		metrics.TicketsAutoClosed.Add(float64(n))
		log.Printf("auto-closed %d stale pending tickets", n)
	}
}
