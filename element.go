package strqueue

import (
	"bytes"
	"fmt"

	"github.com/mgnsk/strqueue/ringlist"
)

// Element is a queue element owning a copy of its string value.
//
// An element removed from a queue belongs to the caller,
// who must release it exactly once.
type Element struct {
	link     ringlist.Link[Element]
	node     []byte
	value    []byte // NUL terminated.
	alloc    Allocator
	released bool
}

func newElement(alloc Allocator, value string) (*Element, error) {
	node, err := alloc.Alloc(NodeSize)
	if err != nil {
		return nil, fmt.Errorf("%w: node: %w", ErrAllocation, err)
	}

	buf, err := alloc.Alloc(len(value) + 1)
	if err != nil {
		_ = alloc.Free(node)
		return nil, fmt.Errorf("%w: string: %w", ErrAllocation, err)
	}

	if len(buf) < len(value)+1 {
		_ = alloc.Free(buf)
		_ = alloc.Free(node)
		return nil, fmt.Errorf("%w: short string buffer of %d bytes", ErrAllocation, len(buf))
	}

	buf = buf[:len(value)+1]
	buf[copy(buf, value)] = 0

	e := &Element{
		node:  node,
		value: buf,
		alloc: alloc,
	}
	e.link.Init(e)

	return e, nil
}

// Value returns the string held by the element.
// It panics if the element was released.
func (e *Element) Value() string {
	return string(e.bytes())
}

// Release frees the element's string and then the element itself.
// The element must not be used afterwards.
func (e *Element) Release() error {
	switch {
	case e.released:
		return ErrReleased
	case !e.link.Detached():
		return ErrLinked
	}

	e.released = true

	errValue := e.alloc.Free(e.value)
	errNode := e.alloc.Free(e.node)
	e.value = nil
	e.node = nil

	if errValue != nil {
		return errValue
	}
	return errNode
}

// ReleaseElement releases e. It is a no-op for a nil element.
func ReleaseElement(e *Element) error {
	if e == nil {
		return nil
	}
	return e.Release()
}

// bytes returns the value without its terminator.
func (e *Element) bytes() []byte {
	if e.released {
		panic("strqueue: use of released element")
	}
	return e.value[:len(e.value)-1]
}

// copyValue copies at most len(buf)-1 bytes of the value into buf
// and NUL terminates it. The rest of buf is zeroed.
func (e *Element) copyValue(buf []byte) {
	if len(buf) == 0 {
		return
	}

	n := copy(buf[:len(buf)-1], e.bytes())
	clear(buf[n:])
}

func compareElements(a, b *Element) int {
	return bytes.Compare(a.bytes(), b.bytes())
}
