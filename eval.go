package tinylisp

import (
	"github.com/tinylisp/tinylisp/internal/env"
	"github.com/tinylisp/tinylisp/internal/heap"
)

// lambdaFrameCapacity is the initial table size for a frame created by
// applying a LAMBDA; small, since most calls bind a handful of parameters.
const lambdaFrameCapacity = 8

// Eval evaluates form in frame, allocating through in's heap. Every
// allocating call along the way pins its live locals into a fresh Roots
// before calling into the heap, and frame.CollectRoots seeds that same
// Roots with every binding reachable from frame, per spec §4.2/§5's
// safe-point discipline.
func Eval(in *Interpreter, form Value, frame *env.Frame) (Value, error) {
	switch form.Kind {
	case heap.KindSymbol:
		v, ok := frame.Lookup(in.Heap.Bytes(form))
		if !ok {
			return Nil, nil // Unbound in operand position yields NIL, per spec §4.4.
		}
		return v, nil

	case heap.KindInt, heap.KindFloat, heap.KindString, heap.KindNil, heap.KindProc, heap.KindLambda:
		return form, nil

	case heap.KindPair:
		return evalPair(in, form, frame)

	default:
		return Nil, nil
	}
}

func evalPair(in *Interpreter, form Value, frame *env.Frame) (Value, error) {
	head := in.Heap.Car(form)
	if head.Kind == heap.KindSymbol {
		switch symbolIdent(in.Heap.Bytes(head)) {
		case identIf:
			return evalIf(in, form, frame)
		case identQuote:
			return evalQuote(form, in)
		case identDefine:
			return evalDefine(in, form, frame)
		case identSetBang:
			return evalSetBang(in, form, frame)
		case identLambda:
			return evalLambda(in, form, frame)
		}
	}
	return evalApplication(in, form, frame)
}

func evalIf(in *Interpreter, form Value, frame *env.Frame) (Value, error) {
	rest := in.Heap.Cdr(form)
	if rest.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "IF"}
	}
	pred, err := Eval(in, in.Heap.Car(rest), frame)
	if err != nil {
		return Nil, err
	}
	rest = in.Heap.Cdr(rest)
	if rest.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "IF"}
	}
	thenForm := in.Heap.Car(rest)
	rest = in.Heap.Cdr(rest)

	if !pred.IsFalse() {
		return Eval(in, thenForm, frame)
	}
	if rest.Kind != heap.KindPair {
		return Nil, nil // No else branch: falls through to NIL.
	}
	return Eval(in, in.Heap.Car(rest), frame)
}

func evalQuote(form Value, in *Interpreter) (Value, error) {
	rest := in.Heap.Cdr(form)
	if rest.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "QUOTE"}
	}
	return in.Heap.Car(rest), nil
}

func evalDefine(in *Interpreter, form Value, frame *env.Frame) (Value, error) {
	rest := in.Heap.Cdr(form)
	if rest.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "DEFINE"}
	}
	nameForm := in.Heap.Car(rest)
	if nameForm.Kind != heap.KindSymbol {
		return Nil, &EvalError{code: errMalformedForm, Form: "DEFINE"}
	}
	rest = in.Heap.Cdr(rest)
	if rest.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "DEFINE"}
	}
	value, err := Eval(in, in.Heap.Car(rest), frame)
	if err != nil {
		return Nil, err
	}
	frame.Set(in.Heap.Bytes(nameForm), value)
	return value, nil
}

func evalSetBang(in *Interpreter, form Value, frame *env.Frame) (Value, error) {
	rest := in.Heap.Cdr(form)
	if rest.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "SET!"}
	}
	nameForm := in.Heap.Car(rest)
	if nameForm.Kind != heap.KindSymbol {
		return Nil, &EvalError{code: errMalformedForm, Form: "SET!"}
	}
	name := in.Heap.Bytes(nameForm)
	defining := frame.FindDefining(name)
	if defining == nil {
		return Nil, &EvalError{code: errUnboundSet, Form: name}
	}
	rest = in.Heap.Cdr(rest)
	if rest.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "SET!"}
	}
	value, err := Eval(in, in.Heap.Car(rest), frame)
	if err != nil {
		return Nil, err
	}
	defining.Set(name, value)
	return value, nil
}

func evalLambda(in *Interpreter, form Value, frame *env.Frame) (Value, error) {
	rest := in.Heap.Cdr(form)
	if rest.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "LAMBDA"}
	}
	params := in.Heap.Car(rest)
	rest = in.Heap.Cdr(rest)
	if rest.Kind != heap.KindPair {
		return Nil, &EvalError{code: errMalformedForm, Form: "LAMBDA"}
	}
	body := in.Heap.Car(rest)

	var roots heap.Roots
	frame.CollectRoots(&roots)
	v, err := in.Heap.NewLambda(params, body, frame, &roots)
	if err != nil {
		return Nil, &HeapError{cause: err}
	}
	return v, nil
}

// evalApplication evaluates form's car as an operator and its cdr as a
// left-to-right argument list, then dispatches on the operator's kind.
func evalApplication(in *Interpreter, form Value, frame *env.Frame) (Value, error) {
	op, err := Eval(in, in.Heap.Car(form), frame)
	if err != nil {
		return Nil, err
	}

	var args []Value
	for cur := in.Heap.Cdr(form); cur.Kind == heap.KindPair; cur = in.Heap.Cdr(cur) {
		v, err := Eval(in, in.Heap.Car(cur), frame)
		if err != nil {
			return Nil, err
		}
		args = append(args, v)
	}

	argList, err := buildList(in, args)
	if err != nil {
		return Nil, err
	}

	switch op.Kind {
	case heap.KindProc:
		v, err := in.Heap.CallProc(op, argList)
		if err != nil {
			return Nil, &EvalError{code: errArity, Form: "application"}
		}
		return v, nil
	case heap.KindLambda:
		return applyLambda(in, op, argList)
	default:
		return Nil, &EvalError{code: errNotAProcedure, Form: "application"}
	}
}

// buildList conses vs into a proper list, right to left. At the point it
// conses vs[i], every element before it (vs[:i]) is still waiting its turn
// and is not yet reachable through list, so it must be pinned explicitly
// alongside list itself or a collection triggered by this Cons could move
// its block out from under the pending Go-slice copy.
func buildList(in *Interpreter, vs []Value) (Value, error) {
	list := Nil
	for i := len(vs) - 1; i >= 0; i-- {
		var roots heap.Roots
		roots.Push(&list)
		for j := range vs[:i] {
			roots.Push(&vs[j])
		}
		cell, err := in.Heap.Cons(vs[i], list, &roots)
		if err != nil {
			return Nil, &HeapError{cause: err}
		}
		list = cell
	}
	return list, nil
}

// applyLambda binds op's formal parameters to args in a fresh frame chained
// to op's captured frame, evaluates the body there, and releases the frame
// per spec §4.5's "evaluate the body in the new frame; release the frame".
func applyLambda(in *Interpreter, op, args Value) (Value, error) {
	params, body, captured := in.Heap.LambdaParts(op)
	capturedFrame, ok := captured.(*env.Frame)
	if !ok {
		return Nil, &EvalError{code: errMalformedForm, Form: "LAMBDA"}
	}

	callFrame := env.New(capturedFrame, lambdaFrameCapacity)
	defer callFrame.Release()

	p, a := params, args
	for {
		pIsPair := p.Kind == heap.KindPair
		aIsPair := a.Kind == heap.KindPair
		if !pIsPair && !aIsPair {
			break
		}
		if pIsPair != aIsPair {
			return Nil, &EvalError{code: errArity, Form: "lambda"}
		}
		name := in.Heap.Car(p)
		if name.Kind != heap.KindSymbol {
			return Nil, &EvalError{code: errMalformedForm, Form: "lambda"}
		}
		callFrame.Set(in.Heap.Bytes(name), in.Heap.Car(a))
		p, a = in.Heap.Cdr(p), in.Heap.Cdr(a)
	}

	return Eval(in, body, callFrame)
}
