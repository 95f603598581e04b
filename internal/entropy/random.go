// Package entropy provides the bot's single random source: uniform ranges,
// weighted categorical draws, and sampling without replacement.
// It is seeded once at process start from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"time"
)

// Rand is not safe for concurrent use; the tick loop owns it.
type Rand struct {
	r *mrand.Rand
}

// New returns a source with a fixed seed. Tests use this.
func New(seed int64) *Rand {
	return &Rand{r: mrand.New(mrand.NewSource(seed))}
}

// NewSeeded returns a source seeded from crypto/rand.
func NewSeeded() *Rand {
	return New(cryptoSeed())
}

// cryptoSeed reads 8 bytes from crypto/rand, falling back to the clock.
func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// IntRange returns a uniform integer in [lo, hi]. If hi <= lo it returns lo.
func (r *Rand) IntRange(lo, hi uint64) uint64 {
	if hi <= lo {
		return lo
	}
	return lo + uint64(r.r.Int63n(int64(hi-lo+1)))
}

// FloatRange returns a uniform float in [lo, hi).
func (r *Rand) FloatRange(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.r.Float64()*(hi-lo)
}

// Weighted draws an index with probability proportional to its weight.
// It returns false without drawing when every weight is zero.
func (r *Rand) Weighted(weights []uint32) (int, bool) {
	var total uint64
	for _, w := range weights {
		total += uint64(w)
	}
	if total == 0 {
		return 0, false
	}

	pick := uint64(r.r.Int63n(int64(total)))
	for i, w := range weights {
		if pick < uint64(w) {
			return i, true
		}
		pick -= uint64(w)
	}
	// Unreachable while total > 0.
	return len(weights) - 1, true
}

// Sample picks min(n, k) distinct indices from [0, n) uniformly, returned in
// ascending order (selection sampling).
func (r *Rand) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}

	out := make([]int, 0, k)
	for i := 0; i < n && len(out) < k; i++ {
		remaining := n - i
		needed := k - len(out)
		if r.r.Intn(remaining) < needed {
			out = append(out, i)
		}
	}
	return out
}

// SampleUint32 returns min(len(pool), k) distinct elements of pool.
func (r *Rand) SampleUint32(pool []uint32, k int) []uint32 {
	idx := r.Sample(len(pool), k)
	out := make([]uint32, len(idx))
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}
