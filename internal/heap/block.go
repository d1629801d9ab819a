// Package heap implements the value representation, arena allocator, and
// Cheney copying collector described in the spec's Heap & GC sections.
//
// Grounded on the teacher's internal/arena package for the bump-allocation
// shape, and on original_source/lisp.c for the block header and collector
// semantics. See DESIGN.md for the full rationale, in particular for why
// block references are byte offsets rather than unsafe.Pointers: a moving
// collector cannot leave a raw Go pointer into the arena valid across a
// compaction, but an offset survives just fine.
package heap

import (
	"encoding/binary"
	"math"
)

// Kind tags the eight value kinds from the spec's data model.
type Kind uint8

const (
	KindNil Kind = iota
	KindInt
	KindFloat
	KindString
	KindSymbol
	KindPair
	KindLambda
	KindProc
)

// String implements fmt.Stringer for debug output.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "NIL"
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindString:
		return "STRING"
	case KindSymbol:
		return "SYMBOL"
	case KindPair:
		return "PAIR"
	case KindLambda:
		return "LAMBDA"
	case KindProc:
		return "PROC"
	default:
		return "INVALID"
	}
}

// IsBlock reports whether values of this kind carry a Ref into the heap's
// active arena. NIL, INT, FLOAT, and PROC are immediate: move is a no-op
// on them, per the spec's edge-case policy.
func (k Kind) IsBlock() bool {
	switch k {
	case KindString, KindSymbol, KindPair, KindLambda:
		return true
	default:
		return false
	}
}

// Ref is an offset of a block's header within a Heap's active semi-space.
type Ref uint32

// Value is the tagged cell every S-expression, lambda, and intermediate
// evaluator result is represented as. It is a struct rather than a raw union
// because Go has no union type; bits is interpreted according to Kind by the
// Int/Float/ProcID accessors, matching the "16-byte-ish" tagged cell the
// spec describes (1 byte kind + 3 padding + 4 byte ref + 8 byte payload).
type Value struct {
	Kind Kind
	Ref  Ref
	bits uint64
}

// NilValue is the empty list / false value.
var NilValue = Value{Kind: KindNil}

// IntValue constructs a self-evaluating integer.
func IntValue(n int64) Value {
	return Value{Kind: KindInt, bits: uint64(n)}
}

// FloatValue constructs a self-evaluating float.
func FloatValue(x float64) Value {
	return Value{Kind: KindFloat, bits: math.Float64bits(x)}
}

// ProcValue constructs a built-in procedure value referring to slot id in
// the owning Heap's builtin registry.
func ProcValue(id int32) Value {
	return Value{Kind: KindProc, bits: uint64(uint32(id))}
}

// Int returns the integer payload. Only meaningful when Kind == KindInt.
func (v Value) Int() int64 { return int64(v.bits) }

// Float returns the float payload. Only meaningful when Kind == KindFloat.
func (v Value) Float() float64 { return math.Float64frombits(v.bits) }

// ProcID returns the builtin registry slot. Only meaningful when
// Kind == KindProc.
func (v Value) ProcID() int32 { return int32(uint32(v.bits)) }

// IsFalse implements the spec's resolved IF semantics: false is exactly
// {NIL, INT 0}; everything else, including FLOAT 0.0 and empty strings, is
// truthy.
func (v Value) IsFalse() bool {
	return v.Kind == KindNil || (v.Kind == KindInt && v.Int() == 0)
}

// Equal reports whether two values are the same atom or refer to the same
// block. It does not compare structurally through pairs; callers that need
// that walk the list themselves.
func (v Value) Equal(w Value) bool {
	return v.Kind == w.Kind && v.Ref == w.Ref && v.bits == w.bits
}

const encodedValueSize = 16

// encodeValue writes v into dst, which must be at least encodedValueSize
// bytes. Used for the car/cdr payload of PAIR blocks and the args/body
// payload of LAMBDA blocks.
func encodeValue(dst []byte, v Value) {
	dst[0] = byte(v.Kind)
	dst[1], dst[2], dst[3] = 0, 0, 0
	binary.LittleEndian.PutUint32(dst[4:8], uint32(v.Ref))
	binary.LittleEndian.PutUint64(dst[8:16], v.bits)
}

// decodeValue reads a Value previously written by encodeValue.
func decodeValue(src []byte) Value {
	return Value{
		Kind: Kind(src[0]),
		Ref:  Ref(binary.LittleEndian.Uint32(src[4:8])),
		bits: binary.LittleEndian.Uint64(src[8:16]),
	}
}

// blockFlags records collector state in a block's header.
type blockFlags uint8

const (
	flagMoved blockFlags = 1 << iota
	flagVisited
)

// headerSize is the on-arena size of a blockHeader: flags(1) + kind(1) +
// reserved(2) + dataSize(4) + forward(4).
const headerSize = 12

// blockHeader is the {gc_flags, kind, data_size} record the spec describes,
// plus a dedicated forwarding slot. The spec's reference source overwrites
// data_size with the forwarding address; §9 of the spec calls that an
// aliasing hazard and recommends a dedicated slot instead, which is what
// lets collect still size-iterate the from-space after a collection (used
// by the frame-release sweep in gc.go).
type blockHeader struct {
	Flags    blockFlags
	Kind     Kind
	DataSize uint32
	Forward  uint32
}

func putHeader(dst []byte, h blockHeader) {
	dst[0] = byte(h.Flags)
	dst[1] = byte(h.Kind)
	dst[2], dst[3] = 0, 0
	binary.LittleEndian.PutUint32(dst[4:8], h.DataSize)
	binary.LittleEndian.PutUint32(dst[8:12], h.Forward)
}

func getHeader(src []byte) blockHeader {
	return blockHeader{
		Flags:    blockFlags(src[0]),
		Kind:     Kind(src[1]),
		DataSize: binary.LittleEndian.Uint32(src[4:8]),
		Forward:  binary.LittleEndian.Uint32(src[8:12]),
	}
}
