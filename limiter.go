package sitebuilder

import (
	"context"
	"sync"
	"time"
)

// Limiter is a sliding-window counter keyed by client IP. It guards login
// failures and public submissions.
type Limiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewLimiter creates a Limiter that allows max hits per window. max <= 0
// disables limiting. The cleanup goroutine stops when ctx is done.
func NewLimiter(ctx context.Context, max int, window time.Duration) *Limiter {
	l := &Limiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
	if max > 0 {
		go l.cleanup(ctx)
	}
	return l
}

func (l *Limiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		cutoff := l.now().Add(-l.window)
		l.mu.Lock()
		for ip, hits := range l.attempts {
			kept := prune(hits, cutoff)
			if len(kept) == 0 {
				delete(l.attempts, ip)
			} else {
				l.attempts[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Allow checks the limit and records the hit when under it.
func (l *Limiter) Allow(ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

// Check reports whether ip is still under the limit without recording a hit.
func (l *Limiter) Check(ip string) bool {
	if l.max <= 0 {
		return true
	}
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.attempts[ip], cutoff)
	l.attempts[ip] = kept
	return len(kept) < l.max
}

// Record registers a hit for ip.
func (l *Limiter) Record(ip string) {
	if l.max <= 0 {
		return
	}
	l.mu.Lock()
	l.attempts[ip] = append(l.attempts[ip], l.now())
	l.mu.Unlock()
}

// Reset forgets every hit for ip, used after a successful login.
func (l *Limiter) Reset(ip string) {
	l.mu.Lock()
	delete(l.attempts, ip)
	l.mu.Unlock()
}
