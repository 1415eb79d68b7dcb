package strqueue_test

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/mgnsk/strqueue"
	"github.com/mgnsk/strqueue/harness"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("creating queues", func() {
	var alloc *harness.Allocator

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
	})

	Specify("a new queue is empty", func() {
		q := newQueue(alloc)
		expectValidQueue(q)

		Expect(q.Free()).To(Succeed())
		Expect(alloc.Live()).To(BeZero())
	})

	Specify("the default allocator is the heap", func() {
		q, err := strqueue.New()
		Expect(err).NotTo(HaveOccurred())

		Expect(q.InsertTail("one")).To(Succeed())
		expectValidQueue(q, "one")
		Expect(q.Free()).To(Succeed())
	})

	When("allocation fails", func() {
		Specify("no queue is returned", func() {
			alloc.FailNext(1)

			q, err := strqueue.New(strqueue.WithAllocator(alloc))
			Expect(err).To(MatchError(strqueue.ErrAllocation))
			Expect(err).To(MatchError(harness.ErrInjected))
			Expect(q).To(BeNil())
			Expect(alloc.Live()).To(BeZero())
		})
	})
})

var _ = Describe("freeing queues", func() {
	var alloc *harness.Allocator

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
	})

	Specify("every element and the head are released", func() {
		q := newQueue(alloc, "one", "two", "three")
		Expect(alloc.Live()).To(Equal(7))

		Expect(q.Free()).To(Succeed())
		Expect(alloc.Live()).To(BeZero())
	})

	Specify("a freed queue behaves as absent", func() {
		q := newQueue(alloc, "one")
		Expect(q.Free()).To(Succeed())

		Expect(q.Free()).To(Succeed())
		Expect(q.Size()).To(BeZero())
		Expect(q.InsertHead("two")).To(MatchError(strqueue.ErrInvalidArgument))
		Expect(q.Check()).To(MatchError(strqueue.ErrInvalidArgument))
		Expect(alloc.Live()).To(BeZero())
	})

	Specify("a nil queue is a no-op", func() {
		var q *strqueue.Queue
		Expect(q.Free()).To(Succeed())
	})
})

var _ = Describe("inserting values", func() {
	var (
		alloc *harness.Allocator
		q     *strqueue.Queue
	)

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
		q = newQueue(alloc)
	})

	AfterEach(func() {
		Expect(q.Free()).To(Succeed())
		Expect(alloc.Live()).To(BeZero())
	})

	Specify("values are inserted at both ends", func() {
		Expect(q.InsertHead("two")).To(Succeed())
		Expect(q.InsertHead("one")).To(Succeed())
		Expect(q.InsertTail("three")).To(Succeed())

		expectValidQueue(q, "one", "two", "three")
	})

	Specify("values are copied with their terminator", func() {
		Expect(q.InsertTail("four")).To(Succeed())
		Expect(alloc.Bytes()).To(BeEquivalentTo(strqueue.HeadSize + strqueue.NodeSize + len("four") + 1))
	})

	Specify("empty values are allowed", func() {
		Expect(q.InsertTail("")).To(Succeed())
		expectValidQueue(q, "")
	})

	DescribeTable("allocation failures leave the queue unmodified",
		func(failures int, insert func(*strqueue.Queue, string) error) {
			Expect(q.InsertTail("existing")).To(Succeed())
			live := alloc.Live()

			alloc.FailNext(failures)
			err := insert(q, "new")
			Expect(err).To(MatchError(strqueue.ErrAllocation))
			Expect(err).To(MatchError(harness.ErrInjected))

			expectValidQueue(q, "existing")
			Expect(alloc.Live()).To(Equal(live))
		},
		Entry("node allocation at head", 1, (*strqueue.Queue).InsertHead),
		Entry("node allocation at tail", 1, (*strqueue.Queue).InsertTail),
	)

	When("the string allocation fails", func() {
		Specify("the node is returned to the allocator", func() {
			live := alloc.Live()

			failing := &failingAllocator{Allocator: alloc, failAt: 2}
			q2, err := strqueue.New(strqueue.WithAllocator(failing))
			Expect(err).NotTo(HaveOccurred())

			Expect(q2.InsertHead("value")).To(MatchError(strqueue.ErrAllocation))
			expectValidQueue(q2)
			Expect(alloc.Live()).To(Equal(live + 1))

			Expect(q2.Free()).To(Succeed())
			Expect(alloc.Live()).To(Equal(live))
		})
	})
})

var _ = Describe("removing values", func() {
	var (
		alloc *harness.Allocator
		q     *strqueue.Queue
	)

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
		q = newQueue(alloc, "one", "two", "three")
	})

	AfterEach(func() {
		Expect(q.Free()).To(Succeed())
		Expect(alloc.Live()).To(BeZero())
	})

	Specify("the head is removed", func() {
		buf := make([]byte, 16)

		e, err := q.RemoveHead(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Value()).To(Equal("one"))
		Expect(string(buf[:3])).To(Equal("one"))
		Expect(buf[3:]).To(Equal(make([]byte, 13)))

		expectValidQueue(q, "two", "three")
		Expect(e.Release()).To(Succeed())
	})

	Specify("the tail is removed", func() {
		e, err := q.RemoveTail(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Value()).To(Equal("three"))

		expectValidQueue(q, "one", "two")
		Expect(strqueue.ReleaseElement(e)).To(Succeed())
	})

	Specify("the copied value is truncated to the buffer", func() {
		buf := []byte("xxxxx")

		e, err := q.RemoveTail(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf).To(Equal([]byte{'t', 'h', 'r', 'e', 0}))
		Expect(e.Value()).To(Equal("three"))
		Expect(e.Release()).To(Succeed())
	})

	Specify("a one byte buffer receives only the terminator", func() {
		buf := []byte{'x'}

		e, err := q.RemoveHead(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf).To(Equal([]byte{0}))
		Expect(e.Release()).To(Succeed())
	})

	Specify("removed elements are not released", func() {
		live := alloc.Live()

		e, err := q.RemoveHead(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(alloc.Live()).To(Equal(live))

		Expect(e.Release()).To(Succeed())
		Expect(alloc.Live()).To(Equal(live - 2))
	})

	Specify("an inserted tail value round trips through the head", func() {
		empty := newQueue(alloc)
		defer func() {
			Expect(empty.Free()).To(Succeed())
		}()

		Expect(empty.InsertTail("value")).To(Succeed())

		e, err := empty.RemoveHead(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Value()).To(Equal("value"))
		Expect(e.Release()).To(Succeed())
		expectValidQueue(empty)
	})

	When("the queue is empty", func() {
		Specify("nothing is removed", func() {
			for i := 0; i < 3; i++ {
				e, err := q.RemoveHead(nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(e.Release()).To(Succeed())
			}

			e, err := q.RemoveHead(nil)
			Expect(err).To(MatchError(strqueue.ErrEmpty))
			Expect(e).To(BeNil())

			e, err = q.RemoveTail(nil)
			Expect(err).To(MatchError(strqueue.ErrEmpty))
			Expect(e).To(BeNil())
		})
	})
})

var _ = Describe("releasing elements", func() {
	var (
		alloc *harness.Allocator
		q     *strqueue.Queue
	)

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
		q = newQueue(alloc, "one")
	})

	AfterEach(func() {
		Expect(q.Free()).To(Succeed())
		Expect(alloc.Live()).To(BeZero())
	})

	Specify("releasing twice fails", func() {
		e, err := q.RemoveHead(nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(e.Release()).To(Succeed())
		Expect(e.Release()).To(MatchError(strqueue.ErrReleased))
	})

	Specify("using a released element panics", func() {
		e, err := q.RemoveHead(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Release()).To(Succeed())

		Expect(func() { _ = e.Value() }).To(Panic())
	})

	Specify("a linked element cannot be released", func() {
		var linked *strqueue.Element
		q.Do(func(e *strqueue.Element) bool {
			linked = e
			return false
		})

		Expect(linked.Release()).To(MatchError(strqueue.ErrLinked))
		expectValidQueue(q, "one")
	})

	Specify("releasing nil is a no-op", func() {
		Expect(strqueue.ReleaseElement(nil)).To(Succeed())
	})
})

var _ = Describe("absent queues", func() {
	var q *strqueue.Queue

	Specify("every operation is a no-op", func() {
		Expect(q.InsertHead("a")).To(MatchError(strqueue.ErrInvalidArgument))
		Expect(q.InsertTail("a")).To(MatchError(strqueue.ErrInvalidArgument))

		_, err := q.RemoveHead(nil)
		Expect(err).To(MatchError(strqueue.ErrInvalidArgument))
		_, err = q.RemoveTail(nil)
		Expect(err).To(MatchError(strqueue.ErrInvalidArgument))

		Expect(q.Size()).To(BeZero())
		Expect(q.Values()).To(BeEmpty())
		Expect(q.DeleteMid()).To(MatchError(strqueue.ErrInvalidArgument))
		Expect(q.DeleteDup()).To(MatchError(strqueue.ErrInvalidArgument))

		_, err = q.Descend()
		Expect(err).To(MatchError(strqueue.ErrInvalidArgument))

		Expect(func() {
			q.Swap()
			q.Reverse()
			q.ReverseK(2)
			q.Sort()
			q.SortDescending()
		}).NotTo(Panic())
	})
})

var _ = Describe("deleting the middle element", func() {
	var alloc *harness.Allocator

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
	})

	AfterEach(func() {
		Expect(alloc.Live()).To(BeZero())
	})

	DescribeTable("the element at (n-1)/2 is deleted",
		func(values []string, expected []string) {
			q := newQueue(alloc, values...)
			defer q.Free()

			Expect(q.DeleteMid()).To(Succeed())
			expectValidQueue(q, expected...)
		},
		Entry("one element", []string{"1"}, []string{}),
		Entry("two elements", []string{"1", "2"}, []string{"2"}),
		Entry("five elements", []string{"1", "2", "3", "4", "5"}, []string{"1", "2", "4", "5"}),
		Entry("six elements", []string{"1", "2", "3", "4", "5", "6"}, []string{"1", "2", "4", "5", "6"}),
	)

	Specify("an empty queue has nothing to delete", func() {
		q := newQueue(alloc)
		defer q.Free()

		Expect(q.DeleteMid()).To(MatchError(strqueue.ErrEmpty))
	})
})

var _ = Describe("deleting duplicates", func() {
	var alloc *harness.Allocator

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
	})

	AfterEach(func() {
		Expect(alloc.Live()).To(BeZero())
	})

	DescribeTable("every value occurring more than once is removed",
		func(values []string, expected []string) {
			q := newQueue(alloc, values...)
			defer q.Free()

			Expect(q.DeleteDup()).To(Succeed())
			expectValidQueue(q, expected...)
		},
		Entry("empty queue", []string{}, []string{}),
		Entry("no duplicates", []string{"a", "b", "c"}, []string{"a", "b", "c"}),
		Entry("runs at both ends", []string{"a", "a", "b", "c", "c", "c"}, []string{"b"}),
		Entry("all equal", []string{"x", "x", "x"}, []string{}),
		Entry("shared first byte", []string{"ab", "ab", "abc", "ac", "ac", "b"}, []string{"abc", "b"}),
		Entry("empty values", []string{"", "", "a"}, []string{"a"}),
		Entry("prefixes", []string{"a", "aa", "aa", "aaa"}, []string{"a", "aaa"}),
	)
})

var _ = Describe("descending", func() {
	var alloc *harness.Allocator

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
	})

	AfterEach(func() {
		Expect(alloc.Live()).To(BeZero())
	})

	DescribeTable("elements with a greater value after them are removed",
		func(values []string, expected []string) {
			q := newQueue(alloc, values...)
			defer q.Free()

			n, err := q.Descend()
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(len(expected)))
			expectValidQueue(q, expected...)
		},
		Entry("empty queue", []string{}, []string{}),
		Entry("already descending", []string{"c", "b", "a"}, []string{"c", "b", "a"}),
		Entry("ascending", []string{"a", "b", "c"}, []string{"c"}),
		Entry("mixed", []string{"5", "2", "13", "3", "8"}, []string{"8"}),
		Entry("equal values stay", []string{"b", "a", "b", "b"}, []string{"b", "b", "b"}),
	)
})

var _ = Describe("swapping pairs", func() {
	var alloc *harness.Allocator

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
	})

	AfterEach(func() {
		Expect(alloc.Live()).To(BeZero())
	})

	DescribeTable("adjacent elements are swapped",
		func(values []string, expected []string) {
			q := newQueue(alloc, values...)
			defer q.Free()

			q.Swap()
			expectValidQueue(q, expected...)
		},
		Entry("empty queue", []string{}, []string{}),
		Entry("one element", []string{"1"}, []string{"1"}),
		Entry("even count", []string{"1", "2", "3", "4"}, []string{"2", "1", "4", "3"}),
		Entry("odd count", []string{"1", "2", "3", "4", "5"}, []string{"2", "1", "4", "3", "5"}),
	)

	Specify("element identities are kept", func() {
		q := newQueue(alloc, "1", "2")
		defer q.Free()

		var before []*strqueue.Element
		q.Do(func(e *strqueue.Element) bool {
			before = append(before, e)
			return true
		})

		q.Swap()

		var after []*strqueue.Element
		q.Do(func(e *strqueue.Element) bool {
			after = append(after, e)
			return true
		})

		Expect(after[0]).To(BeIdenticalTo(before[1]))
		Expect(after[1]).To(BeIdenticalTo(before[0]))
	})
})

var _ = Describe("reversing", func() {
	var alloc *harness.Allocator

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
	})

	AfterEach(func() {
		Expect(alloc.Live()).To(BeZero())
	})

	Specify("the order is reversed without allocating", func() {
		q := newQueue(alloc, "1", "2", "3")
		defer q.Free()

		allocs := alloc.Allocs()
		q.Reverse()

		expectValidQueue(q, "3", "2", "1")
		Expect(alloc.Allocs()).To(Equal(allocs))
	})

	Specify("reversing twice restores the order", func() {
		q := newQueue(alloc, "1", "2", "3", "4")
		defer q.Free()

		q.Reverse()
		q.Reverse()

		expectValidQueue(q, "1", "2", "3", "4")
	})

	Specify("an empty queue stays empty", func() {
		q := newQueue(alloc)
		defer q.Free()

		q.Reverse()
		expectValidQueue(q)
	})

	DescribeTable("groups of k are reversed",
		func(k int, values []string, expected []string) {
			q := newQueue(alloc, values...)
			defer q.Free()

			q.ReverseK(k)
			expectValidQueue(q, expected...)
		},
		Entry("k=1", 1, []string{"1", "2"}, []string{"1", "2"}),
		Entry("k=2", 2, []string{"1", "2", "3"}, []string{"2", "1", "3"}),
		Entry("k=3", 3, []string{"1", "2", "3", "4", "5", "6", "7"}, []string{"3", "2", "1", "6", "5", "4", "7"}),
	)
})

var _ = Describe("sorting", func() {
	var alloc *harness.Allocator

	BeforeEach(func() {
		alloc = harness.NewAllocator(1)
	})

	AfterEach(func() {
		Expect(alloc.Live()).To(BeZero())
	})

	DescribeTable("values are sorted in ascending order",
		func(values []string, expected []string) {
			q := newQueue(alloc, values...)
			defer q.Free()

			allocs := alloc.Allocs()
			q.Sort()

			expectValidQueue(q, expected...)
			Expect(alloc.Allocs()).To(Equal(allocs))
		},
		Entry("empty queue", []string{}, []string{}),
		Entry("one element", []string{"a"}, []string{"a"}),
		Entry("two elements", []string{"b", "a"}, []string{"a", "b"}),
		Entry("duplicates", []string{"c", "a", "b", "a"}, []string{"a", "a", "b", "c"}),
		Entry("byte order", []string{"b", "B", "", "ba"}, []string{"", "B", "b", "ba"}),
	)

	Specify("sorting then deleting duplicates", func() {
		q := newQueue(alloc, "c", "a", "c", "b", "a", "c")
		defer q.Free()

		q.Sort()
		Expect(q.DeleteDup()).To(Succeed())
		expectValidQueue(q, "b")
	})

	Specify("values are sorted in descending order", func() {
		q := newQueue(alloc, "b", "c", "a", "b")
		defer q.Free()

		q.SortDescending()
		expectValidQueue(q, "c", "b", "b", "a")
	})

	Specify("random input yields a sorted permutation", func() {
		rng := rand.New(rand.NewSource(42))

		for n := 0; n < 100; n += 9 {
			values := make([]string, n)
			for i := range values {
				values[i] = strconv.Itoa(rng.Intn(50))
			}

			q := newQueue(alloc, values...)
			q.Sort()

			expected := append([]string(nil), values...)
			sort.Strings(expected)

			expectValidQueue(q, expected...)
			Expect(sort.StringsAreSorted(q.Values())).To(BeTrue())

			q.Sort()
			expectValidQueue(q, expected...)

			Expect(q.Free()).To(Succeed())
		}
	})
})

var _ = Describe("random operations", func() {
	Specify("the ring stays valid and nothing leaks under allocation failures", func() {
		alloc := harness.NewAllocator(3)
		alloc.SetFailProbability(0.1)

		rng := rand.New(rand.NewSource(3))

		var q *strqueue.Queue
		var model []string

		for i := 0; i < 2000; i++ {
			if q == nil {
				var err error
				if q, err = strqueue.New(strqueue.WithAllocator(alloc)); err != nil {
					Expect(err).To(MatchError(harness.ErrInjected))
					continue
				}
				model = nil
			}

			v := strings.Repeat(string(rune('a'+rng.Intn(3))), 1+rng.Intn(2))

			switch rng.Intn(10) {
			case 0:
				if err := q.InsertHead(v); err == nil {
					model = append([]string{v}, model...)
				} else {
					Expect(err).To(MatchError(harness.ErrInjected))
				}

			case 1, 2:
				if err := q.InsertTail(v); err == nil {
					model = append(model, v)
				} else {
					Expect(err).To(MatchError(harness.ErrInjected))
				}

			case 3:
				e, err := q.RemoveHead(nil)
				if len(model) == 0 {
					Expect(err).To(MatchError(strqueue.ErrEmpty))
					break
				}
				Expect(err).NotTo(HaveOccurred())
				Expect(e.Value()).To(Equal(model[0]))
				Expect(e.Release()).To(Succeed())
				model = model[1:]

			case 4:
				e, err := q.RemoveTail(nil)
				if len(model) == 0 {
					Expect(err).To(MatchError(strqueue.ErrEmpty))
					break
				}
				Expect(err).NotTo(HaveOccurred())
				Expect(e.Value()).To(Equal(model[len(model)-1]))
				Expect(e.Release()).To(Succeed())
				model = model[:len(model)-1]

			case 5:
				q.Reverse()
				for l, r := 0, len(model)-1; l < r; l, r = l+1, r-1 {
					model[l], model[r] = model[r], model[l]
				}

			case 6:
				q.Swap()
				for j := 0; j+1 < len(model); j += 2 {
					model[j], model[j+1] = model[j+1], model[j]
				}

			case 7:
				q.Sort()
				sort.Strings(model)

			case 8:
				if len(model) == 0 {
					Expect(q.DeleteMid()).To(MatchError(strqueue.ErrEmpty))
					break
				}
				Expect(q.DeleteMid()).To(Succeed())
				mid := (len(model) - 1) / 2
				model = append(model[:mid], model[mid+1:]...)

			case 9:
				if rng.Intn(20) == 0 {
					Expect(q.Free()).To(Succeed())
					q = nil
				}
			}

			if q != nil {
				expectValidQueue(q, model...)
			}
		}

		Expect(q.Free()).To(Succeed())
		Expect(alloc.Live()).To(BeZero())
	})
})

// failingAllocator fails the allocation following failAt successful ones.
type failingAllocator struct {
	*harness.Allocator
	failAt int
	n      int
}

func (a *failingAllocator) Alloc(size int) ([]byte, error) {
	a.n++
	if a.n == a.failAt+1 {
		return nil, harness.ErrInjected
	}
	return a.Allocator.Alloc(size)
}
