package ringlist

// Link is the linking primitive embedded in list elements.
// It carries no payload besides a reference to the element embedding it.
type Link[T any] struct {
	next, prev *Link[T]
	owner      *T
}

// Init detaches the link and binds it to owner.
func (e *Link[T]) Init(owner *T) *Link[T] {
	e.next = e
	e.prev = e
	e.owner = owner
	return e
}

// Owner returns the element embedding this link or nil for a list sentinel.
func (e *Link[T]) Owner() *T {
	return e.owner
}

// Next returns the next link in the ring.
func (e *Link[T]) Next() *Link[T] {
	return e.next
}

// Prev returns the previous link in the ring.
func (e *Link[T]) Prev() *Link[T] {
	return e.prev
}

// Detached reports whether the link is not part of any ring.
func (e *Link[T]) Detached() bool {
	return e.next == nil || e.next == e && e.prev == e
}

// link inserts an element after this element.
func (e *Link[T]) link(s *Link[T]) {
	n := e.next
	e.next = s
	s.prev = e
	n.prev = s
	s.next = n
}

// unlink unlinks this element.
func (e *Link[T]) unlink() {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = e
	e.prev = e
}
