// Package poller provides a small periodic-task runner with an explicit
// lifecycle: a task is created with a fixed interval, started once, and
// stopped either via Stop or by cancelling the start context. Nothing here
// leaks a ticker past its owner.
package poller

import (
	"context"
	"log/slog"
	"time"
)

// Task is one unit of periodic work. Implementations should respect the
// context deadline; errors are logged, not retried early.
type Task func(ctx context.Context) error

type Poller struct {
	name     string
	interval time.Duration
	task     Task
	log      *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func New(name string, interval time.Duration, log *slog.Logger, task Task) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		task:     task,
		log:      log,
	}
}

// Start launches the loop. The first run happens after one interval, not
// immediately. Calling Start twice is a programming error.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.log.Info("poller stopped", "name", p.name)
				return
			case <-ticker.C:
				if err := p.task(ctx); err != nil {
					p.log.Warn("poller task failed", "name", p.name, "error", err)
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight run to finish.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}
