package strqueue

import (
	"errors"

	"github.com/mgnsk/strqueue/ringlist"
)

var (
	// ErrAllocation indicates the allocator could not provide storage.
	ErrAllocation = errors.New("allocation failed")
	// ErrInvalidArgument indicates an absent or freed queue.
	ErrInvalidArgument = errors.New("invalid queue")
	// ErrEmpty indicates the queue has no elements.
	ErrEmpty = errors.New("queue is empty")
	// ErrReleased indicates an element was already released.
	ErrReleased = errors.New("element already released")
	// ErrLinked indicates an element is still linked into a queue.
	ErrLinked = errors.New("element is linked")
	// ErrCorrupt indicates a broken ring.
	ErrCorrupt = ringlist.ErrCorrupt
)
