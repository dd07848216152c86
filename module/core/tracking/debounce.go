package tracking

import (
	"sync"
	"time"
)

// Debouncer coalesces calls arriving within one interval into a single run of
// the most recent action. The window starts at the first call, so a steady
// stream still produces one run per interval. At most one action is running
// at any time.
type Debouncer struct {
	sched    Scheduler
	interval time.Duration

	mu       sync.Mutex
	task     Task
	pending  func()
	inFlight bool
	stopped  bool
}

func NewDebouncer(sched Scheduler, interval time.Duration) *Debouncer {
	if sched == nil {
		sched = SystemScheduler
	}
	return &Debouncer{sched: sched, interval: interval}
}

// Call replaces the pending action and arms the timer if it is idle.
func (d *Debouncer) Call(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = f
	if d.task == nil && !d.inFlight {
		d.task = d.sched.AfterFunc(d.interval, d.fire)
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.task = nil
	f := d.pending
	d.pending = nil
	if d.stopped || f == nil {
		d.mu.Unlock()
		return
	}
	d.inFlight = true
	d.mu.Unlock()

	f()

	d.mu.Lock()
	d.inFlight = false
	if !d.stopped && d.pending != nil && d.task == nil {
		d.task = d.sched.AfterFunc(d.interval, d.fire)
	}
	d.mu.Unlock()
}

// Stop drops any pending action and disarms the timer. An action already
// running is allowed to finish.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = nil
	if d.task != nil {
		d.task.Stop()
		d.task = nil
	}
}
