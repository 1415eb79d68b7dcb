package strqueue

// Storage sizes requested from an Allocator for queue heads and element nodes.
const (
	HeadSize = 16
	NodeSize = 40
)

// Allocator provides the storage backing queues and their elements.
//
// Every buffer returned by Alloc is handed back to Free exactly once.
// Strings are requested with their NUL terminator included in size.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte) error
}

// HeapAllocator allocates from the Go heap and never fails.
type HeapAllocator struct{}

// Alloc returns a zeroed buffer of size bytes.
func (HeapAllocator) Alloc(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// Free is a no-op.
func (HeapAllocator) Free([]byte) error {
	return nil
}
