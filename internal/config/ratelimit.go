package config

import "time"

// RateLimitConfig drives the Redis token bucket in front of the booking
// API.  KeyStrategy names the request parts a bucket is keyed by, joined
// with "_" from ip, user and route (for example "ip_route", the default).
// The user part is the email in the path.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
}

// LoadRateLimitConfig reads RATE_LIMIT_*.  RATE_LIMIT_BURST overrides the
// capacity and RATE_LIMIT_REFILL_EVERY sets a one-token-per-interval
// refill.
func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    if burst := envInt("RATE_LIMIT_BURST", 0); burst > 0 {
        rl.Capacity = burst
    }
    if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
        rl.RefillTokens, rl.RefillInterval = 1, every
    }
    return rl.normalized()
}

// normalized clamps the bucket to at least one token per refill and
// keeps idle buckets alive for five refill intervals.
func (rl RateLimitConfig) normalized() RateLimitConfig {
    rl.Capacity = max(rl.Capacity, 1)
    rl.RefillTokens = max(rl.RefillTokens, 1)
    if rl.RefillInterval <= 0 {
        rl.RefillInterval = time.Second
    }
    rl.TTL = max(rl.TTL, 5*rl.RefillInterval)
    return rl
}
