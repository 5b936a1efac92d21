// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"codeberg.org/forumlang/langcat/server/routes"
)

// Rate limiting header names.
//
// ref: https://www.ietf.org/archive/id/draft-polli-ratelimit-headers-02.html
const (
	HeaderRateLimitLimit     string = "RateLimit-Limit"
	HeaderRateLimitRemaining string = "RateLimit-Remaining"
	HeaderRateLimitReset     string = "RateLimit-Reset"
)

// CleanupInterval is the minimum time between two sweeps of idle limiters.
const CleanupInterval = 5 * time.Minute

// excludedPaths won't have traffic filtered by the limiter middleware.
var excludedPaths = map[string]bool{
	"/healthz": true,
}

var errNoClientIP = fmt.Errorf("%w: could not determine client IP", routes.ErrBadRequest)

// Options configures a Limiter.
type Options struct {
	// Rate is the number of requests per second allowed per network.
	Rate float64
	// Burst is the bucket size.
	Burst int
	// Expiry drops limiters idle for longer than this.
	Expiry time.Duration
	// CheckHeaders trusts proxy headers from private addresses.
	CheckHeaders bool
}

// limiterWrapper holds a rate limiter and when it was last used.
type limiterWrapper struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64 // unix nanoseconds
}

// Limiter applies a token bucket per client network.
type Limiter struct {
	opts     Options
	limiters sync.Map // network string -> *limiterWrapper

	lastCleanup atomic.Int64
	now         func() time.Time
	logger      zerolog.Logger
}

// New returns a Limiter with the given options.
func New(opts Options) *Limiter {
	l := &Limiter{
		opts:   opts,
		now:    time.Now,
		logger: log.With().Str("sys", "limiter").Logger(),
	}
	l.lastCleanup.Store(l.now().UnixNano())

	return l
}

// Evaluate is the limiter middleware.
func (l *Limiter) Evaluate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	defer l.maybeCleanup()

	if excludedPaths[r.URL.Path] {
		next.ServeHTTP(w, r)

		return
	}

	ip := net.ParseIP(getClientIP(r, l.opts.CheckHeaders))
	if ip == nil {
		l.logger.Error().
			Str("remote_addr", r.RemoteAddr).
			Msg("Could not determine client IP")
		routes.WriteError(w, r, errNoClientIP)

		return
	}

	network := getNetwork(ip).String()
	lw := l.get(network)

	if !lw.limiter.Allow() {
		l.logger.Warn().
			Str("ip", ip.String()).
			Str("network", network).
			Msg("Request blocked, exceeded rate limit")
		addRateLimitHeaders(w, lw.limiter)
		routes.WriteError(w, r, routes.ErrTooManyRequests)

		return
	}

	addRateLimitHeaders(w, lw.limiter)
	next.ServeHTTP(w, r)
}

func (l *Limiter) get(network string) *limiterWrapper {
	now := l.now().UnixNano()

	if v, ok := l.limiters.Load(network); ok {
		lw, _ := v.(*limiterWrapper)
		lw.lastAccess.Store(now)

		return lw
	}

	lw := &limiterWrapper{limiter: rate.NewLimiter(rate.Limit(l.opts.Rate), l.opts.Burst)}
	lw.lastAccess.Store(now)

	actual, _ := l.limiters.LoadOrStore(network, lw)

	lw, _ = actual.(*limiterWrapper)

	return lw
}

// maybeCleanup sweeps idle limiters at most once per CleanupInterval.
func (l *Limiter) maybeCleanup() {
	now := l.now()
	last := l.lastCleanup.Load()

	if now.Sub(time.Unix(0, last)) < CleanupInterval {
		return
	}

	if !l.lastCleanup.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	go l.cleanup(now)
}

// cleanup removes limiters not used since the expiry and returns how many.
func (l *Limiter) cleanup(now time.Time) int {
	expired := 0

	l.limiters.Range(func(key, value any) bool {
		lw, ok := value.(*limiterWrapper)
		if !ok || now.Sub(time.Unix(0, lw.lastAccess.Load())) > l.opts.Expiry {
			l.limiters.Delete(key)

			expired++
		}

		return true
	})

	if expired > 0 {
		l.logger.Info().
			Int("count", expired).
			Msg("Cleaned up expired limiters")
	}

	return expired
}

// addRateLimitHeaders adds rate limiting information to the response headers.
func addRateLimitHeaders(w http.ResponseWriter, limiter *rate.Limiter) {
	currentTokens := limiter.Tokens()
	burst := limiter.Burst()
	limit := limiter.Limit()

	remaining := max(int(math.Min(float64(burst), currentTokens)), 0)

	// Seconds until the bucket is full again.
	var resetTime int64

	if currentTokens < float64(burst) && limit > 0 {
		resetTime = int64(math.Ceil((float64(burst) - currentTokens) / float64(limit)))
	}

	resetStr := strconv.FormatInt(resetTime, 10)

	w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(burst))
	w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(remaining))
	w.Header().Set(HeaderRateLimitReset, resetStr)

	if remaining == 0 {
		w.Header().Set("Retry-After", resetStr)
	}
}
