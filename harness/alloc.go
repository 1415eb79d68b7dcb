/*
Package harness provides the collaborators queues are exercised with:
an allocator that tracks every block and injects failures,
and a command interpreter driving a single queue.
*/
package harness

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v2"
)

var (
	// ErrInjected is returned by Alloc when a failure was injected.
	ErrInjected = errors.New("harness: injected allocation failure")
	// ErrInvalidSize is returned by Alloc for non-positive sizes.
	ErrInvalidSize = errors.New("harness: invalid allocation size")
	// ErrUnknownBlock is returned by Free for a block that is not allocated,
	// including a block that was already freed.
	ErrUnknownBlock = errors.New("harness: free of unknown block")
)

// Leak describes a block that is still allocated.
type Leak struct {
	Seq  uint64
	Size int
}

type block struct {
	buf []byte
	seq uint64
}

// Allocator is a strqueue.Allocator that tracks live blocks and injects failures.
// It is safe for concurrent use.
type Allocator struct {
	live     *xsync.MapOf[string, block]
	seq      atomic.Uint64
	frees    atomic.Uint64
	failures atomic.Uint64
	bytes    atomic.Int64
	failNext atomic.Int64

	mu          sync.Mutex
	rng         *rand.Rand
	probability float64
}

// NewAllocator creates an allocator with a random source seeded with seed.
func NewAllocator(seed int64) *Allocator {
	return &Allocator{
		live: xsync.NewMapOf[block](),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Alloc returns a zeroed buffer of size bytes unless a failure is injected.
func (a *Allocator) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	if a.shouldFail() {
		a.failures.Add(1)
		return nil, ErrInjected
	}

	buf := make([]byte, size)
	a.live.Store(blockKey(buf), block{
		buf: buf,
		seq: a.seq.Add(1),
	})
	a.bytes.Add(int64(size))

	return buf, nil
}

// Free releases a block returned by Alloc. The block is poisoned.
func (a *Allocator) Free(buf []byte) error {
	if len(buf) == 0 {
		return ErrUnknownBlock
	}

	b, ok := a.live.LoadAndDelete(blockKey(buf))
	if !ok {
		return ErrUnknownBlock
	}

	for i := range b.buf {
		b.buf[i] = 0x55
	}

	a.frees.Add(1)
	a.bytes.Add(-int64(len(b.buf)))

	return nil
}

// FailNext makes the next n allocations fail.
func (a *Allocator) FailNext(n int) {
	a.failNext.Store(int64(n))
}

// SetFailProbability makes every allocation fail with probability p.
// p is clamped to [0, 1].
func (a *Allocator) SetFailProbability(p float64) {
	switch {
	case p < 0:
		p = 0
	case p > 1:
		p = 1
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.probability = p
}

// FailProbability returns the configured failure probability.
func (a *Allocator) FailProbability() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.probability
}

// Live returns the number of allocated blocks.
func (a *Allocator) Live() int {
	return a.live.Size()
}

// Bytes returns the number of allocated bytes.
func (a *Allocator) Bytes() int64 {
	return a.bytes.Load()
}

// Allocs returns the number of successful allocations.
func (a *Allocator) Allocs() uint64 {
	return a.seq.Load()
}

// Frees returns the number of successful frees.
func (a *Allocator) Frees() uint64 {
	return a.frees.Load()
}

// Failures returns the number of injected failures.
func (a *Allocator) Failures() uint64 {
	return a.failures.Load()
}

// Leaks returns the allocated blocks in allocation order.
func (a *Allocator) Leaks() []Leak {
	var leaks []Leak

	a.live.Range(func(_ string, b block) bool {
		leaks = append(leaks, Leak{
			Seq:  b.seq,
			Size: len(b.buf),
		})
		return true
	})

	sort.Slice(leaks, func(i, j int) bool {
		return leaks[i].Seq < leaks[j].Seq
	})

	return leaks
}

func (a *Allocator) shouldFail() bool {
	for {
		n := a.failNext.Load()
		if n <= 0 {
			break
		}
		if a.failNext.CompareAndSwap(n, n-1) {
			return true
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.probability > 0 && a.rng.Float64() < a.probability
}

func blockKey(buf []byte) string {
	return fmt.Sprintf("%p", &buf[0])
}
