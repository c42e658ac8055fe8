package sampler

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the randomness the sampler consumes. *rand.Rand satisfies it.
type Source interface {
	Int64N(n int64) int64
}

// NewSource returns a deterministic PCG source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// LockedSource serializes access to a Source that is not itself safe for
// concurrent use.
type LockedSource struct {
	mu  sync.Mutex
	src Source
}

// NewLockedSource wraps src.
func NewLockedSource(src Source) *LockedSource {
	return &LockedSource{src: src}
}

// Int64N draws from the wrapped source under the lock.
func (l *LockedSource) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Int64N(n)
}

var (
	defaultOnce   sync.Once
	defaultSource *LockedSource
)

// Default is the process-wide source, seeded from the clock on first use.
func Default() *LockedSource {
	defaultOnce.Do(func() {
		defaultSource = NewLockedSource(NewSource(uint64(time.Now().UnixNano())))
	})
	return defaultSource
}

// Pick returns a uniformly chosen element of items. It panics on an empty
// slice.
func Pick[T any](src Source, items []T) T {
	return items[src.Int64N(int64(len(items)))]
}
