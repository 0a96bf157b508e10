package watch

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of Trigger calls into one action call that runs
// once no Trigger has arrived for the delay.
type Debouncer struct {
	delay  time.Duration
	action func()

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration, action func()) *Debouncer {
	return &Debouncer{delay: delay, action: action}
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.action)
}

// Cancel drops a pending action.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
