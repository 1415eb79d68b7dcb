package strqueue

import (
	"go.uber.org/zap"
)

// Option is a queue configuration option.
type Option interface {
	apply(*queueOptions)
}

type queueOptions struct {
	alloc  Allocator
	logger *zap.Logger
}

func newDefaultQueueOptions() queueOptions {
	return queueOptions{
		alloc:  HeapAllocator{},
		logger: zap.NewNop(),
	}
}

// WithAllocator option configures the queue with the allocator providing
// storage for its head and elements.
//
// The nil value configures HeapAllocator.
func WithAllocator(alloc Allocator) Option {
	return funcOption(func(opts *queueOptions) {
		if alloc == nil {
			opts.alloc = HeapAllocator{}
			return
		}
		opts.alloc = alloc
	})
}

// WithLogger option configures the queue with a logger.
//
// The nil value disables logging.
func WithLogger(logger *zap.Logger) Option {
	return funcOption(func(opts *queueOptions) {
		if logger == nil {
			opts.logger = zap.NewNop()
			return
		}
		opts.logger = logger
	})
}

type funcOption func(*queueOptions)

func (o funcOption) apply(opts *queueOptions) {
	o(opts)
}
