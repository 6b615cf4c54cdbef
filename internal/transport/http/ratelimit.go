package http

import "golang.org/x/time/rate"

// rateLimiter caps inbound frames per connection. A nil limiter allows everything.
type rateLimiter struct {
	limiter *rate.Limiter
}

// newRateLimiter allows perMinute frames per minute with bursts of the same
// size. Non-positive values disable limiting.
func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute),
	}
}

func (r *rateLimiter) allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}
