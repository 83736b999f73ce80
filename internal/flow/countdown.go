package flow

import (
	"sync"
	"time"
)

// ResendDelay is how long the resend link stays disabled after a code
// is sent.
const ResendDelay = 60

// Countdown ticks a seconds counter down to zero. The tick callback
// runs for each new value, the expire callback once when the counter
// reaches zero. Stop halts the ticker; a tick already in flight may
// still land, nothing fires after that.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	stopped   bool
	done      chan struct{}

	onTick   func(remaining int)
	onExpire func()

	// overridable for tests
	interval time.Duration
}

func NewCountdown(seconds int, onTick func(int), onExpire func()) *Countdown {
	return &Countdown{
		remaining: seconds,
		done:      make(chan struct{}),
		onTick:    onTick,
		onExpire:  onExpire,
		interval:  time.Second,
	}
}

// Start launches the ticker goroutine. A countdown seeded at or below
// zero expires immediately.
func (cd *Countdown) Start() {
	go cd.run()
}

func (cd *Countdown) run() {
	cd.mu.Lock()
	if cd.remaining <= 0 {
		expire := cd.onExpire
		cd.stopped = true
		cd.mu.Unlock()
		if expire != nil {
			expire()
		}
		return
	}
	interval := cd.interval
	cd.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cd.done:
			return
		case <-ticker.C:
			cd.mu.Lock()
			if cd.stopped {
				cd.mu.Unlock()
				return
			}
			cd.remaining--
			remaining := cd.remaining
			tick := cd.onTick
			expire := cd.onExpire
			if remaining <= 0 {
				cd.stopped = true
			}
			cd.mu.Unlock()

			if tick != nil {
				tick(remaining)
			}
			if remaining <= 0 {
				if expire != nil {
					expire()
				}
				return
			}
		}
	}
}

// Remaining returns the current counter value.
func (cd *Countdown) Remaining() int {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.remaining
}

// Active reports whether the counter is still running.
func (cd *Countdown) Active() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return !cd.stopped && cd.remaining > 0
}

// Stop tears the countdown down. Safe to call more than once; after it
// returns no OnTick or OnExpire will fire.
func (cd *Countdown) Stop() {
	cd.mu.Lock()
	if cd.stopped {
		cd.mu.Unlock()
		return
	}
	cd.stopped = true
	close(cd.done)
	cd.mu.Unlock()
}
