package strqueue

import (
	"bytes"
	"errors"
)

// DeleteMid deletes the element at index (n-1)/2 counting from the head.
func (q *Queue) DeleteMid() error {
	if !q.valid() {
		return ErrInvalidArgument
	}

	mid := q.list.Middle()
	if mid == nil {
		return ErrEmpty
	}

	return q.delete(mid)
}

// DeleteDup deletes every element whose value occurs more than once,
// including all of its occurrences. The queue must be sorted in ascending order.
func (q *Queue) DeleteDup() error {
	if !q.valid() {
		return ErrInvalidArgument
	}

	var errs []error

	for p := q.list.Front(); p != nil; {
		e := p.Owner()
		dup := false

		// Equal values share the first byte, so the scan ends at the first mismatch.
		for c := q.list.Next(p); c != nil; {
			candidate := c.Owner()
			if candidate.value[0] != e.value[0] {
				break
			}

			next := q.list.Next(c)
			if bytes.Equal(candidate.value, e.value) {
				dup = true
				errs = append(errs, q.delete(c))
			}
			c = next
		}

		next := q.list.Next(p)
		if dup {
			errs = append(errs, q.delete(p))
		}
		p = next
	}

	return errors.Join(errs...)
}

// Descend deletes every element that has a strictly greater value somewhere
// after it and returns the number of remaining elements.
func (q *Queue) Descend() (int, error) {
	if !q.valid() {
		return 0, ErrInvalidArgument
	}

	p := q.list.Back()
	if p == nil {
		return 0, nil
	}

	var errs []error

	greatest := p.Owner()
	n := 1

	for p = q.list.Prev(p); p != nil; {
		prev := q.list.Prev(p)
		if e := p.Owner(); compareElements(e, greatest) < 0 {
			errs = append(errs, q.delete(p))
		} else {
			greatest = e
			n++
		}
		p = prev
	}

	return n, errors.Join(errs...)
}

// Swap swaps every two adjacent elements.
func (q *Queue) Swap() {
	if !q.valid() {
		return
	}
	q.list.SwapPairs()
}

// Reverse reverses the queue in place.
func (q *Queue) Reverse() {
	if !q.valid() {
		return
	}
	q.list.Reverse()
}

// ReverseK reverses the order of each consecutive group of k elements.
func (q *Queue) ReverseK(k int) {
	if !q.valid() {
		return
	}
	q.list.ReverseGroups(k)
}

// Sort sorts the queue in ascending order. The sort is stable.
func (q *Queue) Sort() {
	if !q.valid() {
		return
	}
	q.list.Sort(compareElements)
}

// SortDescending sorts the queue in descending order. The sort is stable.
func (q *Queue) SortDescending() {
	if !q.valid() {
		return
	}
	q.list.Sort(func(a, b *Element) int {
		return compareElements(b, a)
	})
}
