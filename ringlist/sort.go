package ringlist

// Sort sorts the list in place in ascending order as determined by cmp.
// The sort is stable and relinks elements without allocating.
//
// cmp(a, b) should return a negative number when a < b, a positive number
// when a > b and zero when a == b.
func (l *List[T]) Sort(cmp func(a, b *T) int) {
	if l.Empty() || l.root.next == l.root.prev {
		return
	}

	l.rebuild(mergeSort(l.cut(), cmp))
}

// cut breaks the ring into a nil-terminated chain linked by next only.
func (l *List[T]) cut() *Link[T] {
	l.root.prev.next = nil
	return l.root.next
}

// rebuild restores prev links and closes the ring through the sentinel.
func (l *List[T]) rebuild(head *Link[T]) {
	prev := &l.root
	for p := head; p != nil; p = p.next {
		p.prev = prev
		prev.next = p
		prev = p
	}

	prev.next = &l.root
	l.root.prev = prev
}

// mergeSort sorts a nil-terminated chain linked by next and returns its new head.
// Prev links are left stale.
func mergeSort[T any](head *Link[T], cmp func(a, b *T) int) *Link[T] {
	if head == nil || head.next == nil {
		return head
	}

	slow, fast := head, head.next
	for fast != nil && fast.next != nil {
		slow = slow.next
		fast = fast.next.next
	}

	right := slow.next
	slow.next = nil

	return merge(mergeSort(head, cmp), mergeSort(right, cmp), cmp)
}

// merge merges two sorted chains. On ties the element from a goes first.
func merge[T any](a, b *Link[T], cmp func(a, b *T) int) *Link[T] {
	var head Link[T]

	tail := &head
	for a != nil && b != nil {
		if cmp(b.owner, a.owner) < 0 {
			tail.next = b
			b = b.next
		} else {
			tail.next = a
			a = a.next
		}
		tail = tail.next
	}

	if a != nil {
		tail.next = a
	} else {
		tail.next = b
	}

	return head.next
}
