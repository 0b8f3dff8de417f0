package focus

import (
	"context"
	"time"
)

// Driver calls Advance once per Interval until its context is cancelled. The
// headless focus command runs on it; the TUI schedules tea.Tick commands.
type Driver struct {
	Interval time.Duration
	Advance  func()
}

func (d Driver) Run(ctx context.Context) error {
	interval := d.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if d.Advance != nil {
				d.Advance()
			}
		}
	}
}
