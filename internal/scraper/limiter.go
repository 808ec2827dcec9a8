package scraper

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jobscribe/internal/logging/types"
)

const (
	limiterBurst   = 1
	limiterIdleTTL = 10 * time.Minute

	// each consecutive failure halves the host rate, down to 1/8 of it
	maxBackoffSteps = 3
)

// hostLimiter is the navigation budget of one host
type hostLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	requests int64
	failures int64
	// consecutive failures since the last success
	streak int
}

// HostLimiter spaces navigations per host. It complements the batch delay:
// the delay is politeness between records, the limiter caps the rate when
// several batches or the CLI share a process.
type HostLimiter struct {
	perMinute int
	hosts     map[string]*hostLimiter
	mu        sync.Mutex
	logger    types.Logger
}

// NewHostLimiter allows perMinute navigations per host; zero or less disables limiting
func NewHostLimiter(perMinute int, logger types.Logger) *HostLimiter {
	return &HostLimiter{
		perMinute: perMinute,
		hosts:     make(map[string]*hostLimiter),
		logger:    logger,
	}
}

// Wait blocks until a navigation to rawURL is allowed or ctx is done
func (hl *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if hl == nil || hl.perMinute <= 0 {
		return nil
	}

	host := hostOf(rawURL)

	hl.mu.Lock()
	hl.cleanupLocked()
	l := hl.getLocked(host)
	l.requests++
	l.lastSeen = time.Now()
	hl.mu.Unlock()

	return l.limiter.Wait(ctx)
}

// RecordFailure counts a failed navigation against the URL's host and
// slows the host down until a navigation succeeds again
func (hl *HostLimiter) RecordFailure(rawURL string) {
	if hl == nil {
		return
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()

	host := hostOf(rawURL)
	l, ok := hl.hosts[host]
	if !ok {
		return
	}

	l.failures++
	l.streak++
	limit := hl.backoffLimit(l.streak)
	if limit != l.limiter.Limit() {
		l.limiter.SetLimit(limit)
		hl.logger.Warn("Backing off host after failures", map[string]interface{}{
			"host":     host,
			"failures": l.streak,
			"rate":     float64(limit),
		})
	}
}

// RecordSuccess restores the host's full rate
func (hl *HostLimiter) RecordSuccess(rawURL string) {
	if hl == nil {
		return
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()

	l, ok := hl.hosts[hostOf(rawURL)]
	if !ok || l.streak == 0 {
		return
	}
	l.streak = 0
	l.limiter.SetLimit(hl.baseLimit())
}

// Stats returns per-host request and failure counts
func (hl *HostLimiter) Stats() map[string]map[string]interface{} {
	if hl == nil {
		return map[string]map[string]interface{}{}
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()

	stats := make(map[string]map[string]interface{}, len(hl.hosts))
	for host, l := range hl.hosts {
		stats[host] = map[string]interface{}{
			"requests":             l.requests,
			"failures":             l.failures,
			"consecutive_failures": l.streak,
			"last_seen":            l.lastSeen,
			"limit":                float64(l.limiter.Limit()),
		}
	}
	return stats
}

// baseLimit is perMinute as requests per second
func (hl *HostLimiter) baseLimit() rate.Limit {
	return rate.Limit(float64(hl.perMinute) / 60.0)
}

func (hl *HostLimiter) backoffLimit(streak int) rate.Limit {
	if streak > maxBackoffSteps {
		streak = maxBackoffSteps
	}
	return hl.baseLimit() / rate.Limit(int(1)<<streak)
}

func (hl *HostLimiter) getLocked(host string) *hostLimiter {
	if l, ok := hl.hosts[host]; ok {
		return l
	}

	rps := hl.baseLimit()
	l := &hostLimiter{limiter: rate.NewLimiter(rps, limiterBurst)}
	hl.hosts[host] = l

	hl.logger.Debug("Created host rate limiter", map[string]interface{}{
		"host":  host,
		"rate":  float64(rps),
		"burst": limiterBurst,
	})
	return l
}

func (hl *HostLimiter) cleanupLocked() {
	cutoff := time.Now().Add(-limiterIdleTTL)
	for host, l := range hl.hosts {
		if l.lastSeen.Before(cutoff) {
			delete(hl.hosts, host)
		}
	}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(parsed.Hostname())
}
