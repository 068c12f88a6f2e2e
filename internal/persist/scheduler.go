package persist

import (
	"sync"
	"time"
)

// Scheduler is the debounce port. Schedule arms (or re-arms) a keyed
// timer; when it fires, fn runs once. Cancel disarms a key.
type Scheduler interface {
	Schedule(key string, d time.Duration, fn func())
	Cancel(key string)
}

// TimerScheduler is the production scheduler backed by time.AfterFunc.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTimerScheduler creates an empty timer scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: map[string]*time.Timer{}}
}

// Schedule resets any armed timer for key and arms a new one.
func (s *TimerScheduler) Schedule(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
}

// Cancel disarms the timer for key, if any.
func (s *TimerScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// Stop disarms every timer. Called on session teardown.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
}

// ManualScheduler holds scheduled callbacks until Fire or FireAll is
// called, so tests control time and callbacks run on the test goroutine.
type ManualScheduler struct {
	pending map[string]func()
	order   []string
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: map[string]func(){}}
}

// Schedule replaces any pending callback for key.
func (s *ManualScheduler) Schedule(key string, _ time.Duration, fn func()) {
	if _, ok := s.pending[key]; !ok {
		s.order = append(s.order, key)
	}
	s.pending[key] = fn
}

// Cancel drops the pending callback for key.
func (s *ManualScheduler) Cancel(key string) {
	if _, ok := s.pending[key]; !ok {
		return
	}
	delete(s.pending, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Pending reports how many keys have an armed callback.
func (s *ManualScheduler) Pending() int { return len(s.pending) }

// Fire runs and clears the callback for key, reporting whether one was
// armed.
func (s *ManualScheduler) Fire(key string) bool {
	fn, ok := s.pending[key]
	if !ok {
		return false
	}
	s.Cancel(key)
	fn()
	return true
}

// FireAll runs every armed callback in schedule order.
func (s *ManualScheduler) FireAll() {
	keys := append([]string(nil), s.order...)
	for _, k := range keys {
		s.Fire(k)
	}
}
