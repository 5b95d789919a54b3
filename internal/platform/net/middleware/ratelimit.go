package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	perr "vera/internal/platform/errors"
	pnet "vera/internal/platform/net"

	"golang.org/x/time/rate"
)

// RateLimitOptions configures the per-IP limiter
type RateLimitOptions struct {
	// Limit requests are allowed per Window, refilled evenly
	Limit  int
	Window time.Duration
	// Message is returned with the 429
	Message string
	// Now is the clock, tests override it
	Now func() time.Time
}

const defaultRateLimitMessage = "Too many requests from this IP, please try again later."

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipLimiter keeps one token bucket per client ip
type ipLimiter struct {
	mu       sync.Mutex
	opt      RateLimitOptions
	every    rate.Limit
	visitors map[string]*visitor
	lastGC   time.Time
}

func (l *ipLimiter) allow(ip string) (bool, time.Duration) {
	now := l.opt.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	// idle buckets are full again after one window, drop them
	if now.Sub(l.lastGC) >= l.opt.Window {
		for k, v := range l.visitors {
			if now.Sub(v.seen) >= l.opt.Window {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.every, l.opt.Limit)}
		l.visitors[ip] = v
	}
	v.seen = now
	res := v.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, l.opt.Window
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d
	}
	return true, 0
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit rejects clients exceeding Limit requests per Window with a 429
// place it after RealIP so forwarded addresses are honoured
func RateLimit(o RateLimitOptions, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Window <= 0 {
		o.Window = 15 * time.Minute
	}
	if o.Message == "" {
		o.Message = defaultRateLimitMessage
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	l := &ipLimiter{
		opt:      o,
		every:    rate.Every(o.Window / time.Duration(o.Limit)),
		visitors: map[string]*visitor{},
		lastGC:   o.Now(),
	}
	limit := strconv.Itoa(o.Limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.allow(clientIP(r))
			w.Header().Set("RateLimit-Limit", limit)
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				err := perr.Reasonf(perr.ErrorCodeTooManyRequests, "too_many_requests", "%s", o.Message)
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
