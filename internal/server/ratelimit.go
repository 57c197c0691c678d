package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// limiters idle for longer than this are dropped on the next sweep
	limiterIdle = 10 * time.Minute
	// sweep once the table grows past this many clients
	limiterSweepAt = 4096
)

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiterStore holds one token bucket per client key. Each bucket refills
// perMinute tokens a minute and holds at most perMinute.
type limiterStore struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func newLimiterStore(perMinute int) *limiterStore {
	return &limiterStore{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		now:     time.Now,
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cl, ok := s.clients[key]
	if !ok {
		if len(s.clients) >= limiterSweepAt {
			s.sweep(now)
		}
		cl = &clientLimiter{lim: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = cl
	}
	cl.seen = now
	return cl.lim.AllowN(now, 1)
}

func (s *limiterStore) sweep(now time.Time) {
	for k, cl := range s.clients {
		if now.Sub(cl.seen) > limiterIdle {
			delete(s.clients, k)
		}
	}
}

// clientKey identifies the caller for rate limiting. Proxy headers are only
// honored when trustProxy is set.
func clientKey(c *gin.Context, trustProxy bool) string {
	if trustProxy {
		if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
			return ip
		}
	}
	return c.ClientIP()
}

func rateLimit(store *limiterStore, trustProxy bool) gin.HandlerFunc {
	if store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if !store.allow(clientKey(c, trustProxy)) {
			respondError(c, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
