package config

import (
    "time"

    "github.com/iliyamo/event-ticketing/internal/ticketing"
)

// RuntimeConfig tunes the simulated dependencies of the entity system:
// the currency exchange delay and pool size, the catalog query retry and
// deadline policy, and the latency of per-event lookups.
type RuntimeConfig struct {
    CurrencyDelay     time.Duration
    CurrencyWorkers   int
    QueryMaxAttempts  int
    QueryFailureRate  float64
    QueryDeadline     time.Duration
    MinimalLatencyMax time.Duration
    Seed              uint64
}

func LoadRuntimeConfig() RuntimeConfig {
    def := ticketing.DefaultConfig()
    rc := RuntimeConfig{
        CurrencyDelay:     envDur("CURRENCY_DELAY", def.CurrencyDelay),
        CurrencyWorkers:   envInt("CURRENCY_WORKERS", def.CurrencyWorkers),
        QueryMaxAttempts:  envInt("QUERY_MAX_ATTEMPTS", def.QueryMaxAttempts),
        QueryFailureRate:  envFloat("QUERY_FAILURE_RATE", def.QueryFailureRate),
        QueryDeadline:     envDur("QUERY_DEADLINE", def.QueryDeadline),
        MinimalLatencyMax: envDur("MINIMAL_LATENCY_MAX", def.MinimalLatencyMax),
        Seed:              uint64(envInt("RANDOM_SEED", 0)),
    }
    if rc.CurrencyWorkers < 1 { rc.CurrencyWorkers = 1 }
    if rc.QueryMaxAttempts < 1 { rc.QueryMaxAttempts = 1 }
    if rc.QueryFailureRate < 0 { rc.QueryFailureRate = 0 }
    if rc.QueryFailureRate > 1 { rc.QueryFailureRate = 1 }
    if rc.CurrencyDelay < 0 { rc.CurrencyDelay = 0 }
    if rc.MinimalLatencyMax < 0 { rc.MinimalLatencyMax = 0 }
    return rc
}

// Ticketing converts the runtime settings into the entity system config.
func (rc RuntimeConfig) Ticketing() ticketing.Config {
    return ticketing.Config{
        CurrencyDelay:     rc.CurrencyDelay,
        CurrencyWorkers:   rc.CurrencyWorkers,
        QueryMaxAttempts:  rc.QueryMaxAttempts,
        QueryFailureRate:  rc.QueryFailureRate,
        QueryDeadline:     rc.QueryDeadline,
        MinimalLatencyMax: rc.MinimalLatencyMax,
        Seed:              rc.Seed,
    }
}
