package entropy

import (
	"math"
	"testing"
)

func TestIntRange(t *testing.T) {
	r := New(1)
	seen := make(map[uint64]bool)
	for i := 0; i < 2000; i++ {
		v := r.IntRange(120, 150)
		if v < 120 || v > 150 {
			t.Fatalf("IntRange(120,150) = %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 31 {
		t.Errorf("saw %d distinct values, want 31", len(seen))
	}
	if got := r.IntRange(5, 5); got != 5 {
		t.Errorf("IntRange(5,5) = %d", got)
	}
	if got := r.IntRange(9, 3); got != 9 {
		t.Errorf("IntRange(9,3) = %d, want lo", got)
	}
}

func TestFloatRange(t *testing.T) {
	r := New(2)
	for i := 0; i < 1000; i++ {
		v := r.FloatRange(0.01, 1.0)
		if v < 0.01 || v >= 1.0 {
			t.Fatalf("FloatRange = %v", v)
		}
	}
}

func TestWeighted_Proportional(t *testing.T) {
	r := New(3)
	weights := []uint32{0, 5, 0, 10}
	counts := make([]int, len(weights))

	const draws = 60000
	for i := 0; i < draws; i++ {
		idx, ok := r.Weighted(weights)
		if !ok {
			t.Fatal("Weighted returned false with nonzero weights")
		}
		counts[idx]++
	}

	if counts[0] != 0 || counts[2] != 0 {
		t.Fatalf("zero-weight tiers drawn: %v", counts)
	}
	ratio := float64(counts[3]) / float64(counts[1])
	if math.Abs(ratio-2.0) > 0.1 {
		t.Errorf("tier3/tier1 ratio = %.3f, want ~2.0 (counts %v)", ratio, counts)
	}
}

func TestWeighted_AllZero(t *testing.T) {
	r := New(4)
	if _, ok := r.Weighted([]uint32{0, 0, 0}); ok {
		t.Error("Weighted with all zero weights should report false")
	}
	if _, ok := r.Weighted(nil); ok {
		t.Error("Weighted(nil) should report false")
	}
}

func TestSample_Distinct(t *testing.T) {
	r := New(5)
	for trial := 0; trial < 200; trial++ {
		idx := r.Sample(50, 20)
		if len(idx) != 20 {
			t.Fatalf("Sample(50,20) returned %d", len(idx))
		}
		seen := make(map[int]bool)
		for _, i := range idx {
			if i < 0 || i >= 50 {
				t.Fatalf("index out of range: %d", i)
			}
			if seen[i] {
				t.Fatalf("duplicate index %d in %v", i, idx)
			}
			seen[i] = true
		}
	}
}

func TestSample_MoreThanPool(t *testing.T) {
	r := New(6)
	pool := []uint32{11, 22, 33}
	got := r.SampleUint32(pool, 10)
	if len(got) != 3 {
		t.Fatalf("SampleUint32 = %v, want all 3 items", got)
	}
	if got := r.SampleUint32(nil, 4); len(got) != 0 {
		t.Errorf("SampleUint32(nil) = %v", got)
	}
}

func TestSample_Uniform(t *testing.T) {
	r := New(7)
	counts := make([]int, 10)
	const trials = 20000
	for i := 0; i < trials; i++ {
		for _, j := range r.Sample(10, 3) {
			counts[j]++
		}
	}
	want := float64(trials) * 3 / 10
	for i, c := range counts {
		if math.Abs(float64(c)-want)/want > 0.05 {
			t.Errorf("index %d drawn %d times, want ~%.0f", i, c, want)
		}
	}
}
