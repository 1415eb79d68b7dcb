package harness

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mgnsk/strqueue"
	"go.uber.org/zap"
)

// DefaultStringLimit is the default size of the buffer removed values are copied into.
const DefaultStringLimit = 1024

// ErrFailed is returned by Run and Close when any command failed.
var ErrFailed = errors.New("harness: commands failed")

// InterpOption is an interpreter configuration option.
type InterpOption func(*Interp)

// WithStringLimit sets the number of value bytes copied out by rh and rt.
func WithStringLimit(n int) InterpOption {
	return func(in *Interp) {
		if n > 0 {
			in.stringLimit = n
		}
	}
}

// WithEcho makes the interpreter echo every command before running it.
func WithEcho(echo bool) InterpOption {
	return func(in *Interp) {
		in.echo = echo
	}
}

// WithInterpLogger sets the logger for diagnostics.
func WithInterpLogger(logger *zap.Logger) InterpOption {
	return func(in *Interp) {
		if logger != nil {
			in.logger = logger
		}
	}
}

type command struct {
	minArgs, maxArgs int
	usage            string
	run              func(in *Interp, args []string)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":      {0, 0, "new", (*Interp).cmdNew},
		"free":     {0, 0, "free", (*Interp).cmdFree},
		"ih":       {1, 2, "ih str [n]", (*Interp).cmdInsertHead},
		"it":       {1, 2, "it str [n]", (*Interp).cmdInsertTail},
		"rh":       {0, 1, "rh [str]", (*Interp).cmdRemoveHead},
		"rt":       {0, 1, "rt [str]", (*Interp).cmdRemoveTail},
		"size":     {0, 1, "size [n]", (*Interp).cmdSize},
		"dm":       {0, 0, "dm", (*Interp).cmdDeleteMid},
		"dedup":    {0, 0, "dedup", (*Interp).cmdDeleteDup},
		"swap":     {0, 0, "swap", (*Interp).cmdSwap},
		"reverse":  {0, 0, "reverse", (*Interp).cmdReverse},
		"reverseK": {1, 1, "reverseK k", (*Interp).cmdReverseK},
		"descend":  {0, 0, "descend", (*Interp).cmdDescend},
		"sort":     {0, 0, "sort", (*Interp).cmdSort},
		"show":     {0, 0, "show", (*Interp).cmdShow},
		"malloc":   {1, 1, "malloc percent", (*Interp).cmdMalloc},
		"option":   {2, 2, "option name value", (*Interp).cmdOption},
		"help":     {0, 0, "help", (*Interp).cmdHelp},
	}
}

// Interp runs queue commands against a single queue.
type Interp struct {
	q           *strqueue.Queue
	alloc       *Allocator
	out         io.Writer
	logger      *zap.Logger
	stringLimit int
	echo        bool
	errors      int
}

// NewInterp creates an interpreter writing its output to out.
func NewInterp(alloc *Allocator, out io.Writer, opts ...InterpOption) *Interp {
	in := &Interp{
		alloc:       alloc,
		out:         out,
		logger:      zap.NewNop(),
		stringLimit: DefaultStringLimit,
	}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Errors returns the number of failed commands.
func (in *Interp) Errors() int {
	return in.errors
}

// Queue returns the current queue or nil.
func (in *Interp) Queue() *strqueue.Queue {
	return in.q
}

// Run executes commands read from r line by line until EOF or quit.
func (in *Interp) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if !in.Exec(sc.Text()) {
			break
		}
	}

	if err := sc.Err(); err != nil {
		return err
	}

	if in.errors > 0 {
		return fmt.Errorf("%w: %d", ErrFailed, in.errors)
	}

	return nil
}

// Exec executes a single command line. It returns false on quit.
func (in *Interp) Exec(line string) bool {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	if in.echo {
		fmt.Fprintf(in.out, "cmd> %s\n", strings.Join(fields, " "))
	}

	name, args := fields[0], fields[1:]
	if name == "quit" {
		return false
	}

	cmd, ok := commands[name]
	if !ok {
		in.fail("unknown command '%s'", name)
		return true
	}

	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		in.fail("usage: %s", cmd.usage)
		return true
	}

	cmd.run(in, args)

	return true
}

// Close frees the queue and reports leaked blocks.
func (in *Interp) Close() error {
	if in.q != nil {
		if err := in.q.Free(); err != nil {
			in.fail("free: %v", err)
		}
		in.q = nil
	}

	if leaks := in.alloc.Leaks(); len(leaks) > 0 {
		in.fail("%d blocks still allocated", len(leaks))
		for _, l := range leaks {
			in.logger.Warn("leaked block", zap.Uint64("seq", l.Seq), zap.Int("size", l.Size))
		}
	}

	if in.errors > 0 {
		return fmt.Errorf("%w: %d", ErrFailed, in.errors)
	}

	return nil
}

func (in *Interp) fail(format string, args ...any) {
	in.errors++
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(in.out, "ERROR: %s\n", msg)
	in.logger.Warn("command failed", zap.String("error", msg))
}

func (in *Interp) needQueue() bool {
	if in.q == nil {
		in.fail("calling with NULL queue")
		return false
	}
	return true
}

func (in *Interp) show() {
	if in.q == nil {
		fmt.Fprintln(in.out, "l = NULL")
		return
	}

	if err := in.q.Check(); err != nil {
		in.fail("%v", err)
		return
	}

	fmt.Fprintf(in.out, "l = [%s]\n", strings.Join(in.q.Values(), " "))
}

func (in *Interp) cmdNew(args []string) {
	if in.q != nil {
		if err := in.q.Free(); err != nil {
			in.fail("free: %v", err)
		}
		in.q = nil
	}

	q, err := strqueue.New(strqueue.WithAllocator(in.alloc), strqueue.WithLogger(in.logger))
	if err != nil {
		in.allocFailure(err)
		return
	}

	in.q = q
	in.show()
}

func (in *Interp) cmdFree(args []string) {
	if err := in.q.Free(); err != nil {
		in.fail("free: %v", err)
	}
	in.q = nil
	in.show()
}

func (in *Interp) cmdInsertHead(args []string) {
	in.insert(args, (*strqueue.Queue).InsertHead)
}

func (in *Interp) cmdInsertTail(args []string) {
	in.insert(args, (*strqueue.Queue).InsertTail)
}

func (in *Interp) insert(args []string, insert func(*strqueue.Queue, string) error) {
	if !in.needQueue() {
		return
	}

	n := 1
	if len(args) == 2 {
		var ok bool
		if n, ok = in.parseInt(args[1]); !ok {
			return
		}
	}

	for i := 0; i < n; i++ {
		size := in.q.Size()
		if err := insert(in.q, args[0]); err != nil {
			in.allocFailure(err)
			if in.q.Size() != size {
				in.fail("queue modified by failed insertion")
			}
			break
		}
	}

	in.show()
}

func (in *Interp) cmdRemoveHead(args []string) {
	in.removeBoundary(args, (*strqueue.Queue).RemoveHead)
}

func (in *Interp) cmdRemoveTail(args []string) {
	in.removeBoundary(args, (*strqueue.Queue).RemoveTail)
}

func (in *Interp) removeBoundary(args []string, remove func(*strqueue.Queue, []byte) (*strqueue.Element, error)) {
	if !in.needQueue() {
		return
	}

	buf := make([]byte, in.stringLimit+1)
	e, err := remove(in.q, buf)
	if err != nil {
		in.fail("%v", err)
		return
	}

	removed := string(buf[:bytes.IndexByte(buf, 0)])
	if removed != e.Value() && len(e.Value()) < in.stringLimit {
		in.fail("removed value '%s' does not match copied value '%s'", e.Value(), removed)
	}

	if len(args) == 1 && removed != args[0] {
		in.fail("removed value %s, expected %s", removed, args[0])
	} else {
		fmt.Fprintf(in.out, "Removed %s from queue\n", removed)
	}

	if err := e.Release(); err != nil {
		in.fail("release: %v", err)
	}

	in.show()
}

func (in *Interp) cmdSize(args []string) {
	if !in.needQueue() {
		return
	}

	n := in.q.Size()
	if len(args) == 1 {
		expected, ok := in.parseInt(args[0])
		if !ok {
			return
		}
		if n != expected {
			in.fail("computed queue size as %d, but correct value is %d", n, expected)
			return
		}
	}

	fmt.Fprintf(in.out, "Queue size = %d\n", n)
}

func (in *Interp) cmdDeleteMid(args []string) {
	if !in.needQueue() {
		return
	}

	if err := in.q.DeleteMid(); err != nil {
		in.fail("%v", err)
	}
	in.show()
}

func (in *Interp) cmdDeleteDup(args []string) {
	if !in.needQueue() {
		return
	}

	if !sortedAscending(in.q.Values()) {
		fmt.Fprintln(in.out, "Warning: queue is not sorted")
	}

	if err := in.q.DeleteDup(); err != nil {
		in.fail("%v", err)
	}
	in.show()
}

func (in *Interp) cmdSwap(args []string) {
	if !in.needQueue() {
		return
	}
	in.q.Swap()
	in.show()
}

func (in *Interp) cmdReverse(args []string) {
	if !in.needQueue() {
		return
	}
	in.q.Reverse()
	in.show()
}

func (in *Interp) cmdReverseK(args []string) {
	if !in.needQueue() {
		return
	}

	k, ok := in.parseInt(args[0])
	if !ok {
		return
	}

	in.q.ReverseK(k)
	in.show()
}

func (in *Interp) cmdDescend(args []string) {
	if !in.needQueue() {
		return
	}

	if _, err := in.q.Descend(); err != nil {
		in.fail("%v", err)
	}
	in.show()
}

func (in *Interp) cmdSort(args []string) {
	if !in.needQueue() {
		return
	}

	before := in.q.Size()
	in.q.Sort()

	values := in.q.Values()
	if len(values) != before {
		in.fail("sort changed the queue size from %d to %d", before, len(values))
	} else if !sortedAscending(values) {
		in.fail("queue not sorted in ascending order")
	}
	in.show()
}

func (in *Interp) cmdShow(args []string) {
	in.show()
}

func (in *Interp) cmdMalloc(args []string) {
	percent, ok := in.parseInt(args[0])
	if !ok {
		return
	}
	if percent < 0 || percent > 100 {
		in.fail("malloc failure percentage must be within [0, 100]")
		return
	}

	in.alloc.SetFailProbability(float64(percent) / 100)
}

func (in *Interp) cmdOption(args []string) {
	switch args[0] {
	case "echo":
		v, err := strconv.ParseBool(args[1])
		if err != nil {
			in.fail("invalid value '%s' for echo", args[1])
			return
		}
		in.echo = v

	case "length":
		n, ok := in.parseInt(args[1])
		if !ok {
			return
		}
		if n <= 0 {
			in.fail("length must be positive")
			return
		}
		in.stringLimit = n

	case "fail":
		n, ok := in.parseInt(args[1])
		if !ok {
			return
		}
		in.alloc.FailNext(n)

	default:
		in.fail("unknown option '%s'", args[0])
	}
}

func (in *Interp) cmdHelp(args []string) {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.usage)
	}
	sort.Strings(names)

	for _, u := range names {
		fmt.Fprintf(in.out, "\t%s\n", u)
	}
	fmt.Fprintln(in.out, "\tquit")
}

func (in *Interp) parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		in.fail("invalid number '%s'", s)
		return 0, false
	}
	return n, true
}

func (in *Interp) allocFailure(err error) {
	if errors.Is(err, ErrInjected) {
		fmt.Fprintln(in.out, "Warning: malloc failure")
		return
	}
	in.fail("%v", err)
}

func sortedAscending(values []string) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			return false
		}
	}
	return true
}
