package atelier

import (
	"sync"
	"time"
)

// loginLimiter throttles login attempts per client IP using a sliding
// window over failed attempts. It exists to slow credential guessing, not
// to be a general rate limiter. Successful logins are never counted, so a
// legitimate admin cannot lock themselves out.
type loginLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	max      int
	window   time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

func newLoginLimiter(max int, window time.Duration) *loginLimiter {
	l := &loginLimiter{
		failures: make(map[string][]time.Time),
		max:      max,
		window:   window,
		done:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether ip is within the failure limit. It does not record
// anything; call Record after a failed credential check.
func (l *loginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recentLocked(ip)) < l.max
}

// Record counts one failed attempt for ip.
func (l *loginLimiter) Record(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[ip] = append(l.recentLocked(ip), time.Now())
}

// recentLocked prunes expired failures for ip and returns what remains.
// Callers must hold l.mu.
func (l *loginLimiter) recentLocked(ip string) []time.Time {
	cutoff := time.Now().Add(-l.window)
	recent := l.failures[ip][:0]
	for _, t := range l.failures[ip] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	l.failures[ip] = recent
	return recent
}

// Stop ends the background cleanup goroutine. Safe to call more than once.
func (l *loginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *loginLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			cutoff := time.Now().Add(-l.window)
			for ip, ts := range l.failures {
				if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
					delete(l.failures, ip)
				}
			}
			l.mu.Unlock()
		case <-l.done:
			return
		}
	}
}
