// Package scheduler runs cancellable one-shot callbacks keyed by user and purpose.
package scheduler

import (
	"sync"
	"time"
)

// Key identifies a scheduled task.
type Key struct {
	UserID  int64
	Purpose string
}

// Scheduler is the subset used by the batch accumulator.
type Scheduler interface {
	// ScheduleOnce runs fn after delay, replacing any task under the same key.
	ScheduleOnce(key Key, delay time.Duration, fn func())
	// Cancel stops the task under key and reports whether one was pending.
	Cancel(key Key) bool
}

// TimerScheduler implements Scheduler on time.AfterFunc.
//
// Replacing a task only stops its timer; a callback that already started
// still runs. Callers that need at-most-once semantics must check their own
// version counter inside fn.
type TimerScheduler struct {
	mu      sync.Mutex
	timers  map[Key]*time.Timer
	stopped bool
}

func New() *TimerScheduler {
	return &TimerScheduler{timers: make(map[Key]*time.Timer)}
}

func (s *TimerScheduler) ScheduleOnce(key Key, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[key] == t {
			delete(s.timers, key)
		}
		s.mu.Unlock()
		fn()
	})
	s.timers[key] = t
}

func (s *TimerScheduler) Cancel(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	return t.Stop()
}

// Pending returns the number of scheduled tasks that have not fired yet.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending task and rejects new ones.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
}
