/*
Package strqueue implements a queue of strings on an intrusive circular doubly linked list,
with in-place algorithms for deletion, deduplication, pairwise swapping, reversal and stable sorting.

A Queue is not safe for concurrent use.
*/
package strqueue

import (
	"errors"
	"fmt"

	"github.com/mgnsk/strqueue/ringlist"
	"go.uber.org/zap"
)

// Queue is a double ended queue of strings.
type Queue struct {
	list   ringlist.List[Element]
	head   []byte
	alloc  Allocator
	logger *zap.Logger
}

// New creates an empty queue.
func New(opts ...Option) (*Queue, error) {
	o := newDefaultQueueOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}

	head, err := o.alloc.Alloc(HeadSize)
	if err != nil {
		o.logger.Debug("queue allocation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: head: %w", ErrAllocation, err)
	}

	q := &Queue{
		head:   head,
		alloc:  o.alloc,
		logger: o.logger,
	}
	q.list.Root()

	return q, nil
}

// Free releases every element and then the queue itself.
// It is a no-op for a nil or already freed queue.
func (q *Queue) Free() error {
	if !q.valid() {
		return nil
	}

	var errs []error
	for p := q.list.Front(); p != nil; p = q.list.Front() {
		q.list.Remove(p)
		errs = append(errs, p.Owner().Release())
	}

	errs = append(errs, q.alloc.Free(q.head))
	q.head = nil

	if err := errors.Join(errs...); err != nil {
		q.logger.Debug("queue free failed", zap.Error(err))
		return err
	}

	return nil
}

// InsertHead inserts a copy of value at the head of the queue.
// On failure the queue is left unmodified.
func (q *Queue) InsertHead(value string) error {
	if !q.valid() {
		return ErrInvalidArgument
	}

	e, err := q.newElement(value)
	if err != nil {
		return err
	}

	q.list.PushFront(&e.link)

	return nil
}

// InsertTail inserts a copy of value at the tail of the queue.
// On failure the queue is left unmodified.
func (q *Queue) InsertTail(value string) error {
	if !q.valid() {
		return ErrInvalidArgument
	}

	e, err := q.newElement(value)
	if err != nil {
		return err
	}

	q.list.PushBack(&e.link)

	return nil
}

// RemoveHead unlinks the head element and returns it without releasing it.
// If buf is not empty, at most len(buf)-1 bytes of the value are copied
// into it followed by a NUL byte.
func (q *Queue) RemoveHead(buf []byte) (*Element, error) {
	if !q.valid() {
		return nil, ErrInvalidArgument
	}
	return q.remove(q.list.Front(), buf)
}

// RemoveTail unlinks the tail element and returns it without releasing it.
// buf is filled as in RemoveHead.
func (q *Queue) RemoveTail(buf []byte) (*Element, error) {
	if !q.valid() {
		return nil, ErrInvalidArgument
	}
	return q.remove(q.list.Back(), buf)
}

// Size returns the number of elements in the queue.
func (q *Queue) Size() int {
	if !q.valid() {
		return 0
	}
	return q.list.Len()
}

// Do calls function f on each element of the queue, in forward order.
// If f returns false, Do stops the iteration.
// f must not change q.
func (q *Queue) Do(f func(e *Element) bool) {
	if !q.valid() {
		return
	}
	q.list.Do(f)
}

// Values returns the values of the queue from head to tail.
func (q *Queue) Values() []string {
	var values []string
	q.Do(func(e *Element) bool {
		values = append(values, e.Value())
		return true
	})
	return values
}

// Check verifies the ring is closed in both directions and every element is live.
func (q *Queue) Check() error {
	if !q.valid() {
		return ErrInvalidArgument
	}

	if err := q.list.Check(); err != nil {
		return err
	}

	var err error
	i := 0
	q.list.Do(func(e *Element) bool {
		if e.released || len(e.value) == 0 || e.value[len(e.value)-1] != 0 {
			err = fmt.Errorf("%w: invalid element at position %d", ErrCorrupt, i)
			return false
		}
		i++
		return true
	})

	return err
}

func (q *Queue) valid() bool {
	return q != nil && q.head != nil
}

func (q *Queue) newElement(value string) (*Element, error) {
	e, err := newElement(q.alloc, value)
	if err != nil {
		q.logger.Debug("element allocation failed", zap.Int("len", len(value)), zap.Error(err))
		return nil, err
	}
	return e, nil
}

func (q *Queue) remove(p *ringlist.Link[Element], buf []byte) (*Element, error) {
	if p == nil {
		return nil, ErrEmpty
	}

	q.list.Remove(p)

	e := p.Owner()
	e.copyValue(buf)

	return e, nil
}

// delete unlinks and releases an element.
func (q *Queue) delete(p *ringlist.Link[Element]) error {
	q.list.Remove(p)

	if err := p.Owner().Release(); err != nil {
		q.logger.Debug("element release failed", zap.Error(err))
		return err
	}

	return nil
}
