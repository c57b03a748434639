package clock

import "time"

// Clock allows injecting time into services that wait on deadlines or
// simulate latency.
type Clock interface {
	Now() time.Time
	// After behaves like time.After.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by the time package.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock whose Now always returns t.  Timers still run
// in real time, so only timestamps become deterministic.
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

func (fixedClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
