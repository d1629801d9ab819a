package tinylisp

import (
	"fmt"

	"github.com/pkg/errors"
)

// errCode enumerates tinylisp's distinct failure modes, grounded on the
// teacher's errParse/errCode pairing (see error.go): a closed set of
// sentinel causes, wrapped by a richer carrier type that adds the context
// particular to where it was raised.
type errCode int

const (
	errUnboundSet errCode = iota
	errNotAProcedure
	errArity
	errMalformedForm
)

var evalErrs = [...]error{
	errUnboundSet:    fmt.Errorf("assignment to unbound identifier"),
	errNotAProcedure: fmt.Errorf("not a procedure"),
	errArity:         fmt.Errorf("wrong number of arguments"),
	errMalformedForm: fmt.Errorf("malformed special form"),
}

// EvalError is returned by Eval when a form cannot be evaluated. Per spec
// §7, eval errors do not unwind the interpreter: the caller gets NIL plus
// this error back for the offending top-level form, and can continue
// feeding the interpreter further forms.
type EvalError struct {
	code errCode
	Form string // printed form at fault, for diagnostics.
}

// Unwrap implements error unwrapping via errors.Unwrap, so callers can
// errors.Is an EvalError against a stable sentinel.
func (e *EvalError) Unwrap() error { return evalErrs[e.code] }

// Error implements error.
func (e *EvalError) Error() string {
	return errors.Wrapf(e.Unwrap(), "tinylisp: eval error in %s", e.Form).Error()
}

// ReadError is returned by Read when the source text cannot be parsed into
// S-expressions. Offset is a byte offset into the source string.
type ReadError struct {
	Offset int
	cause  error
}

func (e *ReadError) Unwrap() error { return e.cause }

func (e *ReadError) Error() string {
	return errors.Wrapf(e.cause, "tinylisp: read error at offset %d", e.Offset).Error()
}

// HeapError wraps an allocation failure from internal/heap. Per spec §7,
// heap exhaustion is fatal to the interpreter instance: callers should not
// attempt to continue evaluating after seeing one.
type HeapError struct {
	cause error
}

func (e *HeapError) Unwrap() error { return e.cause }

func (e *HeapError) Error() string {
	return errors.Wrap(e.cause, "tinylisp: heap error").Error()
}
