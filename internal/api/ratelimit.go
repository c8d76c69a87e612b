package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// adminQuota caps admin requests per client in fixed windows.
type adminQuota struct {
	limit int
	per   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	windows map[string]*quotaWindow
	swept   time.Time
}

type quotaWindow struct {
	opened time.Time
	used   int
}

func newAdminQuota(limit int, per time.Duration) *adminQuota {
	return &adminQuota{
		limit:   limit,
		per:     per,
		now:     time.Now,
		windows: make(map[string]*quotaWindow),
	}
}

// take spends one request from client's window. When the window is
// exhausted it reports how long until the next one opens.
func (q *adminQuota) take(client string) (bool, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.sweep(now)

	w, ok := q.windows[client]
	if !ok || now.Sub(w.opened) >= q.per {
		w = &quotaWindow{opened: now}
		q.windows[client] = w
	}
	if w.used >= q.limit {
		return false, w.opened.Add(q.per).Sub(now)
	}
	w.used++
	return true, 0
}

// sweep drops expired windows at most once per period.
func (q *adminQuota) sweep(now time.Time) {
	if now.Sub(q.swept) < q.per {
		return
	}
	q.swept = now
	for client, w := range q.windows {
		if now.Sub(w.opened) >= q.per {
			delete(q.windows, client)
		}
	}
}

// clientIP returns the caller's address, preferring the first
// X-Forwarded-For entry for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limitAdmin rejects callers over quota with 429 and a Retry-After in
// whole seconds.
func limitAdmin(q *adminQuota, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ok, wait := q.take(clientIP(r)); !ok {
			secs := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
