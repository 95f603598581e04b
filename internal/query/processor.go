// Package query runs store reads off the tick goroutine and hands their
// results back to it. A result issued on tick N is delivered no earlier than
// tick N+1.
package query

import (
	"cmp"
	"context"
	"sync"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

type future struct {
	issued  uint64
	ready   bool
	deliver func()
}

// Processor holds pending reads keyed by submission order.
type Processor struct {
	mu      sync.Mutex
	seq     uint64
	pending *rbt.Tree[uint64, *future]
	wg      sync.WaitGroup
}

// NewProcessor creates an empty processor.
func NewProcessor() *Processor {
	return &Processor{pending: rbt.NewWith[uint64, *future](cmp.Compare[uint64])}
}

// Submit starts fetch in its own goroutine. Its result is passed to cb by a
// later ProcessReady call on a tick after issued. There is no cancellation;
// if fetch never returns, cb never runs.
func Submit[T any](p *Processor, ctx context.Context, issued uint64, fetch func(context.Context) (T, error), cb func(T, error)) {
	p.mu.Lock()
	p.seq++
	key := p.seq
	f := &future{issued: issued}
	p.pending.Put(key, f)
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		res, err := fetch(ctx)

		p.mu.Lock()
		f.deliver = func() { cb(res, err) }
		f.ready = true
		p.mu.Unlock()
	}()
}

// ProcessReady runs, in submission order, the callbacks whose result has
// arrived and whose issue tick is before tick. Callbacks run on the caller's
// goroutine. It returns how many ran.
func (p *Processor) ProcessReady(tick uint64) int {
	p.mu.Lock()
	var due []func()
	for _, key := range p.pending.Keys() {
		f, _ := p.pending.Get(key)
		if !f.ready || f.issued >= tick {
			continue
		}
		due = append(due, f.deliver)
		p.pending.Remove(key)
	}
	p.mu.Unlock()

	for _, fn := range due {
		fn()
	}
	return len(due)
}

// Pending is the number of submitted reads not yet delivered.
func (p *Processor) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.Size()
}

// Wait blocks until every running fetch has returned or ctx is done.
// Results are still delivered only by ProcessReady.
func (p *Processor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
