package ringlist

import (
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Check when the ring is not well-formed.
var ErrCorrupt = errors.New("ringlist: corrupt ring")

// List is an intrusive circular doubly linked list with a sentinel.
// The zero value is a ready to use empty list.
//
// A List must not be copied after first use.
type List[T any] struct {
	root Link[T]
}

func (l *List[T]) lazyInit() {
	if l.root.next == nil {
		l.root.next = &l.root
		l.root.prev = &l.root
	}
}

// Root returns the sentinel of the list.
func (l *List[T]) Root() *Link[T] {
	l.lazyInit()
	return &l.root
}

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool {
	return l.root.next == nil || l.root.next == &l.root
}

// Len returns the number of elements in the list.
// It walks the whole ring.
func (l *List[T]) Len() int {
	if l.Empty() {
		return 0
	}

	n := 0
	for p := l.root.next; p != &l.root; p = p.next {
		n++
	}

	return n
}

// Front returns the first element of the list or nil.
func (l *List[T]) Front() *Link[T] {
	if l.Empty() {
		return nil
	}
	return l.root.next
}

// Back returns the last element of the list or nil.
func (l *List[T]) Back() *Link[T] {
	if l.Empty() {
		return nil
	}
	return l.root.prev
}

// Next returns the element after e or nil if e is the last element.
func (l *List[T]) Next(e *Link[T]) *Link[T] {
	if e.next == &l.root {
		return nil
	}
	return e.next
}

// Prev returns the element before e or nil if e is the first element.
func (l *List[T]) Prev(e *Link[T]) *Link[T] {
	if e.prev == &l.root {
		return nil
	}
	return e.prev
}

// PushFront inserts a detached element at the front of the list.
func (l *List[T]) PushFront(e *Link[T]) {
	l.insertAfter(e, &l.root)
}

// PushBack inserts a detached element at the back of the list.
func (l *List[T]) PushBack(e *Link[T]) {
	l.lazyInit()
	l.insertAfter(e, l.root.prev)
}

// MoveAfter moves an element to its new position after mark.
func (l *List[T]) MoveAfter(e, mark *Link[T]) {
	if e == mark || e.prev == mark {
		return
	}

	e.unlink()
	mark.link(e)
}

// MoveBefore moves an element to its new position before mark.
func (l *List[T]) MoveBefore(e, mark *Link[T]) {
	if e == mark || e.next == mark {
		return
	}

	e.unlink()
	mark.prev.link(e)
}

// Remove unlinks an element from the list. The element is left detached.
func (l *List[T]) Remove(e *Link[T]) {
	if e == &l.root || e.owner == nil || e.Detached() {
		panic("ringlist: invalid element")
	}
	e.unlink()
}

// Do calls function f on each element of the list, in forward order.
// If f returns false, Do stops the iteration.
// f must not change l.
func (l *List[T]) Do(f func(e *T) bool) {
	if l.Empty() {
		return
	}

	for p := l.root.next; p != &l.root; p = p.next {
		if !f(p.owner) {
			return
		}
	}
}

// Check verifies that following next from the sentinel returns to it after
// visiting every element once and that prev is the exact inverse.
func (l *List[T]) Check() error {
	if l.root.next == nil && l.root.prev == nil {
		return nil
	}

	n := 0
	for p := &l.root; ; n++ {
		switch {
		case p.next == nil || p.prev == nil:
			return fmt.Errorf("%w: nil link at position %d", ErrCorrupt, n)
		case p.next.prev != p:
			return fmt.Errorf("%w: next.prev mismatch at position %d", ErrCorrupt, n)
		case p != &l.root && p.owner == nil:
			return fmt.Errorf("%w: foreign sentinel at position %d", ErrCorrupt, n)
		}

		if p = p.next; p == &l.root {
			break
		}
	}

	p := &l.root
	for i := 0; i <= n; i++ {
		p = p.prev
	}
	if p != &l.root {
		return fmt.Errorf("%w: prev walk of length %d does not close", ErrCorrupt, n+1)
	}

	return nil
}

func (l *List[T]) insertAfter(e, mark *Link[T]) {
	if e.owner == nil || !e.Detached() {
		panic("ringlist: invalid element")
	}

	l.lazyInit()
	mark.link(e)
}
