package pipeline

import (
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Charles8li/weekly-calendar/internal/store"
)

// Poller runs the ingestion pass on a fixed schedule. Ticks are serialized:
// the engine itself holds no lock, so the poller, as the caller, skips a tick
// that fires while a prior application is still in flight.
type Poller struct {
	runner   *Runner
	schedule string
	log      *logrus.Logger

	c  *cron.Cron
	mu sync.Mutex
}

func NewPoller(runner *Runner, schedule string, log *logrus.Logger) *Poller {
	if log == nil {
		log = logrus.New()
	}
	return &Poller{runner: runner, schedule: schedule, log: log}
}

func (p *Poller) Start() error {
	p.c = cron.New()
	if _, err := p.c.AddFunc(p.schedule, p.tick); err != nil {
		return err
	}
	p.c.Start()
	p.log.WithField("schedule", p.schedule).Info("inbox poller started")
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish. A batch
// that has begun applying always runs to completion.
func (p *Poller) Stop() {
	if p.c == nil {
		return
	}
	<-p.c.Stop().Done()
	p.mu.Lock()
	p.mu.Unlock() //nolint:staticcheck // barrier: wait for the last tick
}

func (p *Poller) tick() {
	if !p.mu.TryLock() {
		p.log.Debug("prior batch still in flight, skipping tick")
		return
	}
	defer p.mu.Unlock()

	report, err := p.runner.Run(store.KeyInbox)
	if err != nil {
		p.log.WithError(err).Error("batch application failed")
		return
	}
	if report.Skipped {
		return
	}
	p.log.WithFields(logrus.Fields{
		"results": len(report.Results),
		"outbox":  report.OutboxKey,
	}).Debug("poll tick applied batch")
}
