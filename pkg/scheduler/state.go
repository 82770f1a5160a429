package scheduler

import (
	"sync"
	"time"
)

// State is the mutable runtime state owned by a Scheduler: tick timing, the
// rescheduling guard and the journal dedup memory
type State struct {
	mu           sync.Mutex
	interval     time.Duration
	rescheduling bool
	lastTick     time.Time
	nextTick     time.Time
	lastMsg      string
	lastMsgAt    time.Time
}

// Interval returns current tick interval, defaultTick until it is computed
func (s *State) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval <= 0 {
		return defaultTick
	}
	return s.interval
}

// LastTick returns start time of the last pass which got the lock
func (s *State) LastTick() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTick
}

// NextTick returns when the timer fires next
func (s *State) NextTick() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextTick
}

// setInterval stores interval and reports whether it changed
func (s *State) setInterval(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval == d {
		return false
	}
	s.interval = d
	return true
}

func (s *State) beginReschedule() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rescheduling {
		return false
	}
	s.rescheduling = true
	return true
}

func (s *State) endReschedule() {
	s.mu.Lock()
	s.rescheduling = false
	s.mu.Unlock()
}

func (s *State) setLastTick(t time.Time) {
	s.mu.Lock()
	s.lastTick = t
	s.mu.Unlock()
}

func (s *State) setNextTick(t time.Time) {
	s.mu.Lock()
	s.nextTick = t
	s.mu.Unlock()
}

// fresh reports whether msg should be journaled, i.e. it differs from the previous
// message or the previous one is older than window
func (s *State) fresh(msg string, now time.Time, window time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg == s.lastMsg && now.Sub(s.lastMsgAt) < window {
		return false
	}
	s.lastMsg, s.lastMsgAt = msg, now
	return true
}
