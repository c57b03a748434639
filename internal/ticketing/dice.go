package ticketing

import (
	"math/rand/v2"
	"sync"
	"time"
)

// dice is a goroutine-safe source for the simulated faults and
// latencies.  A fixed seed makes them reproducible.
type dice struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newDice(seed uint64) *dice {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &dice{r: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// chance reports true with probability p.
func (d *dice) chance(p float64) bool {
	if p <= 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Float64() < p
}

// upTo returns a duration in [0, max).
func (d *dice) upTo(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return time.Duration(d.r.Int64N(int64(max)))
}
