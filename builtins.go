package tinylisp

import (
	"github.com/tinylisp/tinylisp/internal/env"
	"github.com/tinylisp/tinylisp/internal/heap"
)

// registerBuiltins populates root with the demonstration procedure set spec
// §6 names: CAR, CDR, +, * (the last two add or multiply the integer
// payloads of their first two arguments; further arguments are ignored and
// argument kinds are not checked). Embedders add more by calling root.Set
// with a further in.Proc-constructed value.
func registerBuiltins(h *heap.Heap, root *env.Frame) {
	root.Set("CAR", h.RegisterProc(builtinCar))
	root.Set("CDR", h.RegisterProc(builtinCdr))
	root.Set("+", h.RegisterProc(builtinAdd))
	root.Set("*", h.RegisterProc(builtinMul))
}

func builtinCar(args Value, h *heap.Heap) (Value, error) {
	first, _, err := twoArgs(args, h, 1)
	if err != nil {
		return Nil, err
	}
	if first.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "CAR"}
	}
	return h.Car(first), nil
}

func builtinCdr(args Value, h *heap.Heap) (Value, error) {
	first, _, err := twoArgs(args, h, 1)
	if err != nil {
		return Nil, err
	}
	if first.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "CDR"}
	}
	return h.Cdr(first), nil
}

func builtinAdd(args Value, h *heap.Heap) (Value, error) {
	a, b, err := twoArgs(args, h, 2)
	if err != nil {
		return Nil, err
	}
	return heap.IntValue(a.Int() + b.Int()), nil
}

func builtinMul(args Value, h *heap.Heap) (Value, error) {
	a, b, err := twoArgs(args, h, 2)
	if err != nil {
		return Nil, err
	}
	return heap.IntValue(a.Int() * b.Int()), nil
}

// twoArgs walks args (a proper list) and returns its first `want` elements,
// erroring if fewer are present. want is 1 or 2; CAR/CDR only use the
// first result.
func twoArgs(args Value, h *heap.Heap, want int) (first, second Value, err error) {
	cur := args
	if cur.Kind != heap.KindPair {
		return Nil, Nil, &EvalError{code: errArity, Form: "builtin"}
	}
	first = h.Car(cur)
	if want == 1 {
		return first, Nil, nil
	}
	cur = h.Cdr(cur)
	if cur.Kind != heap.KindPair {
		return Nil, Nil, &EvalError{code: errArity, Form: "builtin"}
	}
	second = h.Car(cur)
	return first, second, nil
}
