package harness

import (
	"github.com/Cloud-Foundations/tricorder/go/tricorder"
	"github.com/Cloud-Foundations/tricorder/go/tricorder/units"
)

// RegisterMetrics publishes allocator statistics under dir.
func (a *Allocator) RegisterMetrics(dir string) error {
	if err := tricorder.RegisterMetric(dir+"/live-blocks",
		func() uint { return uint(a.Live()) },
		units.None, "number of allocated blocks not yet freed"); err != nil {
		return err
	}
	if err := tricorder.RegisterMetric(dir+"/live-bytes",
		func() int64 { return a.Bytes() },
		units.Byte, "number of allocated bytes not yet freed"); err != nil {
		return err
	}
	if err := tricorder.RegisterMetric(dir+"/allocations",
		func() uint64 { return a.Allocs() },
		units.None, "number of successful allocations"); err != nil {
		return err
	}
	return tricorder.RegisterMetric(dir+"/injected-failures",
		func() uint64 { return a.Failures() },
		units.None, "number of injected allocation failures")
}
