package tinylisp

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tinylisp/tinylisp/internal/heap"
)

// Printer formats values against a specific interpreter's heap. Value alone
// can't implement fmt.Formatter directly the way the teacher's internal
// types do (stringer.go's Format methods), since printing a PAIR/STRING/
// SYMBOL value requires dereferencing a block through a Heap; Printer
// closes over that Heap the way a %v verb closes over nothing.
type Printer struct {
	Heap *heap.Heap
}

// Format implements fmt.Formatter for a (Printer, Value) pair via Fprint's
// %v convention: callers write fmt.Fprintf(w, "%v", printer.Wrap(v)).
type formatted struct {
	p *Printer
	v Value
}

// Wrap returns a value adapter that implements fmt.Formatter against p's
// heap, for use with the fmt verbs directly.
func (p *Printer) Wrap(v Value) fmt.Formatter { return formatted{p, v} }

func (f formatted) Format(s fmt.State, verb rune) {
	io.WriteString(s, f.p.Sprint(f.v))
}

// Sprint renders v to a string, per spec §4.6: pairs as "(a b c)" or
// "(a b . c)" when dotted, NIL as "NIL", strings quoted, symbols unquoted
// in upper case, numbers in decimal, and LAMBDA/PROC as opaque handles.
func (p *Printer) Sprint(v Value) string {
	buf := make([]byte, 0, 32)
	buf = p.appendValue(buf, v, false)
	return string(buf)
}

// Fprint writes v to w the way Sprint renders it.
func (p *Printer) Fprint(w io.Writer, v Value) error {
	_, err := io.WriteString(w, p.Sprint(v))
	return err
}

func (p *Printer) appendValue(buf []byte, v Value, isCdr bool) []byte {
	switch v.Kind {
	case heap.KindNil:
		return append(buf, "NIL"...)
	case heap.KindInt:
		return strconv.AppendInt(buf, v.Int(), 10)
	case heap.KindFloat:
		return strconv.AppendFloat(buf, v.Float(), 'g', -1, 64)
	case heap.KindString:
		buf = append(buf, '"')
		buf = append(buf, p.Heap.Bytes(v)...)
		return append(buf, '"')
	case heap.KindSymbol:
		return append(buf, p.Heap.Bytes(v)...)
	case heap.KindLambda:
		return append(buf, "#<lambda>"...)
	case heap.KindProc:
		return append(buf, "#<procedure>"...)
	case heap.KindPair:
		return p.appendPair(buf, v, isCdr)
	default:
		return append(buf, "#<invalid>"...)
	}
}

// appendPair prints a pair exactly as original_source/lisp.c's
// lisp_print_r does: "(" only at the head of a list (not when recursing
// through a cdr), a trailing " . x)" for a dotted tail, and a plain ")" for
// a proper tail, recursing through the cdr with the isCdr flag set so
// nested opens aren't repeated.
func (p *Printer) appendPair(buf []byte, v Value, isCdr bool) []byte {
	if !isCdr {
		buf = append(buf, '(')
	}
	buf = p.appendValue(buf, p.Heap.Car(v), false)

	cdr := p.Heap.Cdr(v)
	switch cdr.Kind {
	case heap.KindPair:
		buf = append(buf, ' ')
		buf = p.appendPair(buf, cdr, true)
	case heap.KindNil:
		buf = append(buf, ')')
	default:
		buf = append(buf, " . "...)
		buf = p.appendValue(buf, cdr, false)
		buf = append(buf, ')')
	}
	return buf
}
