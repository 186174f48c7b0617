package widgets

import "time"

// Timers are per-instance resources owned exclusively by their widget.
// Destroy is the only place they are released; callbacks on a widget that
// was destroyed in the meantime are dropped by the liveness guard.

// AfterFunc arms a one-shot timer whose callback only fires while the
// widget is alive. The timer is released on Destroy.
func (b *Base) AfterFunc(d time.Duration, fn func()) {
	timer := time.AfterFunc(d, func() {
		if b.Alive() {
			fn()
		}
	})

	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		timer.Stop()
		return
	}
	b.stops = append(b.stops, func() { timer.Stop() })
	b.mu.Unlock()
}

// StartTicker runs fn every interval until stopped. The returned stop
// function is idempotent; Destroy also stops the ticker. fn runs on its own
// goroutine, guarded by the widget's liveness check.
func (b *Base) StartTicker(interval time.Duration, fn func()) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if b.Alive() {
					fn()
				}
			case <-done:
				return
			}
		}
	}()

	var stopped bool
	stop = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if stopped {
			return
		}
		stopped = true
		ticker.Stop()
		close(done)
	}

	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		stop()
		return func() {}
	}
	b.stops = append(b.stops, stop)
	b.mu.Unlock()
	return stop
}
