package ringlist

// Middle returns the element at index (n-1)/2 or nil if the list is empty.
// It walks inward from both ends, so each element is visited at most once.
func (l *List[T]) Middle() *Link[T] {
	if l.Empty() {
		return nil
	}

	front, back := l.root.next, l.root.prev
	for front != back && front.next != back {
		front = front.next
		back = back.prev
	}

	return front
}

// Reverse reverses the order of the list in place.
func (l *List[T]) Reverse() {
	if l.Empty() {
		return
	}

	p := &l.root
	for {
		next := p.next
		p.next, p.prev = p.prev, next
		if p = next; p == &l.root {
			return
		}
	}
}

// SwapPairs swaps every two adjacent elements. A trailing odd element stays in place.
func (l *List[T]) SwapPairs() {
	if l.Empty() {
		return
	}

	for a := l.root.next; a != &l.root && a.next != &l.root; a = a.next {
		b := a.next
		prev, next := a.prev, b.next

		prev.next = b
		b.prev = prev
		b.next = a
		a.prev = b
		a.next = next
		next.prev = a
	}
}

// ReverseGroups reverses the order of each consecutive group of k elements.
// A trailing group shorter than k keeps its order.
func (l *List[T]) ReverseGroups(k int) {
	if k <= 1 || l.Empty() {
		return
	}

	anchor := &l.root
	for {
		p := anchor
		for i := 0; i < k; i++ {
			if p = p.next; p == &l.root {
				return
			}
		}

		first := anchor.next
		for i := 1; i < k; i++ {
			n := first.next
			n.unlink()
			anchor.link(n)
		}

		anchor = first
	}
}
