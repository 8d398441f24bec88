package service

import (
	"github.com/llxisdsh/pb"
	"golang.org/x/time/rate"
)

// RateLimiterRegistry hands out one token bucket per client identifier.
type RateLimiterRegistry struct {
	limiters *pb.MapOf[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiterRegistry creates a registry allowing perSecond requests per
// client with an equal burst. A non-positive perSecond disables limiting.
func NewRateLimiterRegistry(perSecond int) *RateLimiterRegistry {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &RateLimiterRegistry{
		limiters: pb.NewMapOf[string, *rate.Limiter](),
		limit:    limit,
		burst:    max(perSecond, 1),
	}
}

// Allow consumes a token for client and reports whether one was available.
func (r *RateLimiterRegistry) Allow(client string) bool {
	if r.limit == rate.Inf {
		return true
	}
	return r.GetOrCreate(client).Allow()
}

// GetOrCreate returns the limiter for client, creating it on first use.
func (r *RateLimiterRegistry) GetOrCreate(client string) *rate.Limiter {
	l, _ := r.limiters.LoadOrStoreFn(client, func() *rate.Limiter {
		return rate.NewLimiter(r.limit, r.burst)
	})
	return l
}

// Delete forgets the limiter of client.
func (r *RateLimiterRegistry) Delete(client string) {
	r.limiters.Delete(client)
}

// Len returns the number of tracked clients.
func (r *RateLimiterRegistry) Len() int {
	return r.limiters.Size()
}

// Reset forgets every limiter.
func (r *RateLimiterRegistry) Reset() {
	r.limiters.Clear()
}
