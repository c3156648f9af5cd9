package exam

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned cancel func is called.
// Cancel is idempotent. A tick already in flight when cancel is called may
// still run; receivers guard against stale ticks themselves.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler backs Scheduler with a time.Ticker per task.
type TickerScheduler struct{}

// Every starts a recurring task on its own goroutine.
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fn()
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
