package underwriting

import (
	"math/rand"
	"sync"
)

// LockedRand is a seeded math/rand source guarded by a mutex. The engine and
// the profile synthesizer share one source across concurrent sessions, and
// *rand.Rand alone is not safe for that.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedRand returns a concurrency-safe Rand seeded with the given value.
func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

var _ Rand = (*LockedRand)(nil)
