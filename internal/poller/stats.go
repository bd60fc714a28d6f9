package poller

import (
	"sync"
	"time"
)

// Stats describes one loop's history since Start.
type Stats struct {
	Ticks               int64
	Successes           int64
	Failures            int64
	Skipped             int64
	ConsecutiveFailures int
	LastSuccessAt       time.Time
	LastError           string
	AverageFetchTime    time.Duration
}

// StatsTracker provides a goroutine-safe wrapper around Stats.
type StatsTracker struct {
	mu    sync.RWMutex
	stats Stats
}

func (t *StatsTracker) Update(fn func(*Stats)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.stats)
}

func (t *StatsTracker) Snapshot() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

func (t *StatsTracker) recordFetch(now time.Time, d time.Duration, err error) {
	t.Update(func(s *Stats) {
		s.Ticks++
		done := s.Successes + s.Failures
		s.AverageFetchTime = time.Duration((int64(s.AverageFetchTime)*done + int64(d)) / (done + 1))
		if err != nil {
			s.Failures++
			s.ConsecutiveFailures++
			s.LastError = err.Error()
			return
		}
		s.Successes++
		s.ConsecutiveFailures = 0
		s.LastSuccessAt = now
		s.LastError = ""
	})
}

func (t *StatsTracker) recordSkip() {
	t.Update(func(s *Stats) { s.Skipped++ })
}
