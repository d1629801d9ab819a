// Package tinylisp implements the reader, evaluator, and printer for a
// small Lisp dialect over a Cheney-collected heap. See internal/heap for
// the value representation and collector, internal/env for lexically
// scoped environment frames, and internal/lexer for tokenization.
package tinylisp

import "github.com/tinylisp/tinylisp/internal/heap"

// Value is a tagged cell: the unit every S-expression, lambda, and
// evaluator result is represented as. It is an alias for heap.Value rather
// than a wrapper, since nothing about its representation is this package's
// to hide — internal/heap already keeps the block layout itself private.
type Value = heap.Value

// Nil is the empty list / false value.
var Nil = heap.NilValue

// Int constructs a self-evaluating integer value.
func Int(n int64) Value { return heap.IntValue(n) }

// Float constructs a self-evaluating float value.
func Float(x float64) Value { return heap.FloatValue(x) }

// IsFalse reports whether v is falsy in conditional context: exactly NIL or
// INT 0, per the evaluator's resolved IF semantics.
func IsFalse(v Value) bool { return v.IsFalse() }
