// Package debug provides low-overhead tracing and invariant checks shared by
// the heap, environment, and evaluator.
package debug

import (
	"fmt"
	"os"
	"strings"

	"github.com/timandy/routine"
)

// Enabled gates whether Log actually writes anything. It is a variable,
// rather than a build-tag constant, because tinylisp is small enough that
// the branch cost of a disabled Log call is not worth a second build mode.
var Enabled = os.Getenv("TINYLISP_DEBUG") != ""

// Log prints a structured trace line to stderr when Enabled is true.
//
// context, if non-empty, is a printf-style (format, args...) pair describing
// the object the operation is happening to (an arena, a frame); it is
// rendered before operation so related lines can be grepped together.
func Log(context []any, operation, format string, args ...any) {
	if !Enabled {
		return
	}

	buf := new(strings.Builder)
	fmt.Fprintf(buf, "[g%04d", routine.Goid())
	if len(context) >= 1 {
		fmt.Fprintf(buf, ", "+context[0].(string), context[1:]...)
	}
	fmt.Fprintf(buf, "] %s: ", operation)
	fmt.Fprintf(buf, format, args...)
	buf.WriteByte('\n')

	_, _ = os.Stderr.WriteString(buf.String())
}

// Assert panics with a descriptive message if cond is false.
//
// Unlike Log, Assert always runs: it checks invariants rather than emitting
// diagnostics. Within tinylisp its only caller is Owner.Check. The panic
// message carries a call stack (skipping Assert's own frame) since an
// assertion failure here means an internal invariant broke, not a caller
// misuse a one-line message would explain.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		msg := fmt.Errorf("tinylisp: internal assertion failed: "+format, args...)
		panic(fmt.Sprintf("%s\n%s", msg, Stack(3)))
	}
}

// Owner records the goroutine that created a single-threaded-only value
// (a Heap) and lets later calls assert they're still being used from that
// same goroutine. Frames do not record an owner.
//
// This is the concrete form of the "not without external exclusion" policy:
// tinylisp never locks anything, it just catches the common slip of handing
// an interpreter instance to a second goroutine.
type Owner struct {
	goid int64
}

// NewOwner records the calling goroutine as the owner.
func NewOwner() Owner {
	return Owner{goid: routine.Goid()}
}

// Check asserts that the calling goroutine is the one that created o.
func (o Owner) Check() {
	Assert(o.goid == routine.Goid(),
		"value created on goroutine %d used from goroutine %d without external synchronization",
		o.goid, routine.Goid())
}
