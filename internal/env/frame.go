package env

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tinylisp/tinylisp/internal/debug"
	"github.com/tinylisp/tinylisp/internal/heap"
)

// Frame is a single lexical scope: a table of bindings plus a link to the
// enclosing scope. Frames are not heap-allocated blocks (spec §4.3: "a
// frame is not stored inside the arena; it has its own lifecycle") and are
// managed by reference count instead of by the collector.
//
// Frame implements heap.FrameHandle so a LAMBDA block can retain the frame
// it closes over without internal/heap needing to import this package.
type Frame struct {
	id     uuid.UUID
	table  *table[heap.Value]
	parent *Frame
	refs   int
}

// New creates a frame chained to parent (nil for a root/global frame), with
// an initial retain count of one, matching original_source/lisp.c's
// lisp_env_init setting retain_count = 1 on construction.
//
// Unlike lisp_env_init, New also retains parent itself: Release recursively
// releases the parent once this frame's count hits zero, so the chain link
// must be balanced by a matching retain here, or a frame's first Release
// would wrongly tear down an ancestor that other frames or lambdas still
// reference. original_source never does this retain (its own comment next
// to the matching release call reads "TODO: ref counting?"); this is the
// fix spec §9 asks for rather than a bug to reproduce.
func New(parent *Frame, capacity int) *Frame {
	if parent != nil {
		parent.Retain()
	}
	f := &Frame{id: uuid.New(), table: newTable[heap.Value](capacity), parent: parent, refs: 1}
	debug.Log([]any{"frame %s", f.id}, "new", "capacity %d, parent %v", capacity, parent != nil)
	return f
}

// Retain increments the frame's reference count. Called when a LAMBDA block
// captures this frame.
func (f *Frame) Retain() {
	f.refs++
	debug.Log([]any{"frame %s", f.id}, "retain", "refs now %d", f.refs)
}

// Release decrements the frame's reference count, recursively releasing the
// parent once it reaches zero. Per spec §4.4, frames cannot form reference
// cycles among themselves (only value cells, which the GC owns, can form
// cycles), so this recursion always terminates.
func (f *Frame) Release() {
	f.refs--
	debug.Log([]any{"frame %s", f.id}, "release", "refs now %d, keys %s", f.refs, f.dumpKeys())
	if f.refs <= 0 && f.parent != nil {
		f.parent.Release()
	}
}

// dumpKeys renders this frame's own bound keys as "{a b c}", the same
// brace-and-space-separated shape original_source/lisp.c's lisp_env_print
// produces. It exists only to make debug.Log output legible; tinylisp does
// not expose a frame-dump operation in its public API.
func (f *Frame) dumpKeys() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	f.table.each(func(key string, _ heap.Value) {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(key)
	})
	b.WriteByte('}')
	return b.String()
}

// Get resolves key in this frame only, without walking the parent chain.
func (f *Frame) Get(key string) (heap.Value, bool) {
	return f.table.get(key)
}

// Set binds key to value in this frame, inserting or overwriting.
func (f *Frame) Set(key string, value heap.Value) {
	f.table.set(key, value)
}

// Lookup resolves key by searching this frame, then its parent chain,
// matching spec §4.4's "on miss it walks the parent chain and retries".
// The bool reports whether key was bound anywhere in the chain; callers in
// operator position should treat an unbound symbol as an error, callers in
// operand position may treat it as NIL, per the spec's resolved ambiguity.
func (f *Frame) Lookup(key string) (heap.Value, bool) {
	for fr := f; fr != nil; fr = fr.parent {
		if v, ok := fr.table.get(key); ok {
			return v, true
		}
	}
	return heap.NilValue, false
}

// FindDefining walks the parent chain (starting at f, not skipping to the
// parent first) and returns the nearest frame in which key is already
// bound, or nil if it is unbound throughout the chain. Used by SET! to find
// which frame's binding to rewrite.
//
// original_source/lisp.c's equivalent has a documented bug: its search loop
// re-reads the outer `env` variable instead of advancing a `current`
// cursor, so it only ever checks the starting frame. This walks `fr`
// itself, which is the corrected behavior spec §9 calls for.
func (f *Frame) FindDefining(key string) *Frame {
	for fr := f; fr != nil; fr = fr.parent {
		if _, ok := fr.table.get(key); ok {
			return fr
		}
	}
	return nil
}

// CollectRoots pushes a pointer to every value cell reachable through this
// frame and its entire parent chain onto roots, so a collection that runs
// while this frame is the current scope can trace and rewrite all of them.
// The evaluator calls this once per eval entry with the current frame; it
// does not need to call it again for intermediate frames, since walking the
// chain here already reaches them.
func (f *Frame) CollectRoots(roots *heap.Roots) {
	for fr := f; fr != nil; fr = fr.parent {
		fr.table.eachPtr(func(_ string, v *heap.Value) {
			roots.Push(v)
		})
	}
}
