package tinylisp

import (
	"github.com/tinylisp/tinylisp/internal/env"
	"github.com/tinylisp/tinylisp/internal/heap"
)

// Interpreter owns a heap and a root environment frame: the embedder's unit
// of interpreter state, per spec §6's heap_init/env_init_default pairing.
// Not safe for concurrent use (spec §5); construct one per goroutine.
type Interpreter struct {
	Heap *heap.Heap
	Root *env.Frame
}

const rootFrameCapacity = 64

// New creates an interpreter with a fresh heap and a root frame populated
// with the built-in demonstration procedures (CAR, CDR, +, *).
func New(opts ...Option) *Interpreter {
	var cfg heap.Config
	for _, o := range opts {
		o.apply(&cfg)
	}

	in := &Interpreter{
		Heap: heap.New(cfg),
		Root: env.New(nil, rootFrameCapacity),
	}
	registerBuiltins(in.Heap, in.Root)
	return in
}

// Cons allocates a pair, pinning car/cdr as roots across the call.
func (in *Interpreter) Cons(car, cdr Value) (Value, error) {
	var roots heap.Roots
	v, err := in.Heap.Cons(car, cdr, &roots)
	if err != nil {
		return Nil, &HeapError{cause: err}
	}
	return v, nil
}

// Car returns the first element of a pair.
func (in *Interpreter) Car(v Value) Value { return in.Heap.Car(v) }

// Cdr returns the second element of a pair.
func (in *Interpreter) Cdr(v Value) Value { return in.Heap.Cdr(v) }

// AtIndex returns the i'th element (zero-based) of a proper list, or Nil if
// the list has no element at index i, per spec §6's at_index accessor.
func AtIndex(in *Interpreter, list Value, i int) Value {
	cur := list
	for ; i > 0 && cur.Kind == heap.KindPair; i-- {
		cur = in.Heap.Cdr(cur)
	}
	if cur.Kind != heap.KindPair {
		return Nil
	}
	return in.Heap.Car(cur)
}

// AsString returns a STRING value's payload.
func (in *Interpreter) AsString(v Value) string { return in.Heap.Bytes(v) }

// AsSymbol returns a SYMBOL value's upper-cased payload.
func (in *Interpreter) AsSymbol(v Value) string { return in.Heap.Bytes(v) }

// NewString allocates a STRING value.
func (in *Interpreter) NewString(s string) (Value, error) {
	var roots heap.Roots
	v, err := in.Heap.NewString(s, &roots)
	if err != nil {
		return Nil, &HeapError{cause: err}
	}
	return v, nil
}

// NewSymbol allocates a SYMBOL value. s is upper-cased by the caller (the
// reader folds case with x/text/cases before calling this).
func (in *Interpreter) NewSymbol(s string) (Value, error) {
	var roots heap.Roots
	v, err := in.Heap.NewSymbol(s, &roots)
	if err != nil {
		return Nil, &HeapError{cause: err}
	}
	return v, nil
}

// Proc constructs a builtin procedure value, registering fn with the
// interpreter's heap. Additional built-ins beyond the demonstration set are
// added by calling Root.Set with the result, per spec §6.
func (in *Interpreter) Proc(fn func(args Value, h *heap.Heap) (Value, error)) Value {
	return in.Heap.RegisterProc(fn)
}
