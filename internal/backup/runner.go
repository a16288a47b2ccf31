package backup

import (
	"context"
	"sync"
	"time"
)

// Runner re-runs the sidecar on a fixed interval for long-lived
// deployments where a single startup snapshot is not enough.
type Runner struct {
	sidecar  *Sidecar
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner wraps a sidecar with a periodic schedule.
// An interval <= 0 disables the runner (Start becomes a no-op).
func NewRunner(sidecar *Sidecar, interval time.Duration) *Runner {
	return &Runner{sidecar: sidecar, interval: interval}
}

// Start launches the periodic backup loop. The first snapshot is the
// caller's responsibility (Run at startup); the loop only handles
// repeats.
func (r *Runner) Start() {
	if r.interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sidecar.Run()
			}
		}
	}()
}

// Stop halts the periodic loop and waits for it to exit.
func (r *Runner) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.wg.Wait()
}
