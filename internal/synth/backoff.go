package synth

import (
	"context"
	"math/rand"
	"time"
)

// Rand is the randomness the engine needs. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// globalRand uses the goroutine-safe package-level source.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) Intn(n int) int   { return rand.Intn(n) }

// Backoff returns the delay before retry number attempt (1-based):
// uniform in [min, min(max, min*2^attempt)].
func Backoff(r Rand, attempt int, min, max time.Duration) time.Duration {
	if min <= 0 {
		return 0
	}
	upper := min
	for i := 0; i < attempt && upper < max; i++ {
		upper *= 2
	}
	if upper > max {
		upper = max
	}
	if upper <= min {
		return min
	}
	return min + time.Duration(r.Float64()*float64(upper-min))
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
