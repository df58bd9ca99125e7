package httpx

import (
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

// SlidingWindow is a process-local sliding window log limiter. It is
// advisory only: state is lost on restart and never shared between
// instances, so it must sit in front of an authoritative check.
type SlidingWindow struct {
	// Now overrides the clock, mostly for tests.
	Now func() time.Time

	mu        sync.Mutex
	logs      map[string]*hitLog
	lastSweep time.Time
}

// hitLog holds the allowed hits for a key, oldest first.
type hitLog struct {
	hits     []time.Time
	window   time.Duration
	maxCount int
}

// prune drops hits that have left the window ending at now.
func (l *hitLog) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.hits) && !l.hits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.hits = append(l.hits[:0], l.hits[i:]...)
	}
}

// NewSlidingWindow returns an empty limiter.
func NewSlidingWindow() *SlidingWindow {
	return &SlidingWindow{logs: make(map[string]*hitLog)}
}

func (s *SlidingWindow) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CheckLimit reports whether another hit for key fits within maxCount per
// window, and records it when it does. Rejected hits are not recorded, so a
// caller hammering a limited key does not extend its own penalty.
func (s *SlidingWindow) CheckLimit(key string, maxCount int, window time.Duration) bool {
	if maxCount <= 0 || window <= 0 {
		return false
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.maybeSweep(now)

	l, ok := s.logs[key]
	if !ok {
		l = &hitLog{}
		s.logs[key] = l
	}
	l.window = window
	l.maxCount = maxCount
	l.prune(now)

	if len(l.hits) >= maxCount {
		return false
	}
	l.hits = append(l.hits, now)
	return true
}

// RemainingTime returns how long until the oldest hit leaves the window, or
// zero when key is not currently limited.
func (s *SlidingWindow) RemainingTime(key string) time.Duration {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.logs[key]
	if !ok {
		return 0
	}
	l.prune(now)
	if len(l.hits) < l.maxCount {
		return 0
	}
	return max(l.hits[0].Add(l.window).Sub(now), 0)
}

// maybeSweep forgets keys with no hits left in their window, at most every
// 5 minutes. Caller holds s.mu.
func (s *SlidingWindow) maybeSweep(now time.Time) {
	if now.Sub(s.lastSweep) < 5*time.Minute {
		return
	}
	s.lastSweep = now

	for key, l := range s.logs {
		l.prune(now)
		if len(l.hits) == 0 {
			delete(s.logs, key)
		}
	}
}

// SlidingWindowMiddleware rejects requests once the key produced by
// keyExtractor has seen maxCount allowed requests inside window.
func SlidingWindowMiddleware(sw *SlidingWindow, maxCount int, window time.Duration, keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyExtractor(r)
			if key == "" || sw.CheckLimit(key, maxCount, window) {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := sw.RemainingTime(key)
			slogx.FromContext(r.Context()).Warn("sliding window limit exceeded",
				"key", key,
				"endpoint", r.URL.Path,
				"retry_after", retryAfter.String(),
			)
			WriteRateLimited(w, retryAfter)
		})
	}
}
