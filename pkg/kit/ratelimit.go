package kit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPRateLimiter allows limit requests per window for each client IP, refilled evenly.
type IPRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	expiry  time.Duration
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		limit:   limit,
		window:  window,
		expiry:  10 * window,
		clients: make(map[string]*clientLimiter),
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r), time.Now()) {
			WriteError(w, r, http.StatusTooManyRequests, "too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Allow reports whether ip may proceed at now. Idle clients are forgotten
// lazily on each call.
func (l *IPRateLimiter) Allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)

	cl, ok := l.clients[ip]
	if !ok {
		every := l.window / time.Duration(l.limit)
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(every), l.limit)}
		l.clients[ip] = cl
	}
	cl.lastAccess = now

	return cl.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) prune(now time.Time) {
	for ip, cl := range l.clients {
		if now.Sub(cl.lastAccess) > l.expiry {
			delete(l.clients, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	if ip := firstForwardedFor(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}

	return r.RemoteAddr
}

func firstForwardedFor(xff string) string {
	if xff == "" {
		return ""
	}

	p := strings.Split(xff, ",")
	if len(p) == 0 {
		return ""
	}

	return strings.TrimSpace(p[0])
}
