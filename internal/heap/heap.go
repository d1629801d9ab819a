package heap

import (
	"fmt"

	"github.com/tinylisp/tinylisp/internal/debug"
	"github.com/tinylisp/tinylisp/internal/stats"
)

// FrameHandle is the subset of internal/env.Frame's lifecycle a Heap needs
// to manage a captured lambda environment, expressed as an interface so
// this package never imports internal/env (which itself imports heap for
// Value) — see DESIGN.md's internal/heap entry.
type FrameHandle interface {
	Retain()
	Release()
}

// Config holds the tunables spec §4.1's alloc contract leaves to the
// embedder: initial capacity and a growth ceiling past which allocation is
// a fatal HeapError rather than a further doubling.
type Config struct {
	InitialCapacity int
	GrowthCeiling   int // bytes; 0 means unlimited.
}

// ErrHeapExhausted is returned by allocation once the growth ceiling has
// been exceeded. Per spec §7, this is meant to be fatal to the interpreter
// instance.
type ErrHeapExhausted struct {
	Requested, Ceiling int
}

func (e *ErrHeapExhausted) Error() string {
	return fmt.Sprintf("tinylisp: heap exhausted: requested %d bytes past ceiling of %d", e.Requested, e.Ceiling)
}

const defaultCapacity = 4096

// Heap owns the pair of semi-spaces, the builtin procedure registry, and
// the captured-frame table for lambdas. It is not safe for concurrent use
// from multiple goroutines (spec §5); owner catches accidental sharing.
type Heap struct {
	spaces  [2]*arena
	active  int
	ceiling int
	owner   debug.Owner

	procs   []func(args Value, h *Heap) (Value, error)
	frames  []FrameHandle // indexed by the frameIdx packed into LAMBDA payloads.

	Stats stats.GC
}

// New creates a heap with the given configuration.
func New(cfg Config) *Heap {
	capacity := cfg.InitialCapacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Heap{
		spaces:  [2]*arena{newArena(capacity), newArena(capacity)},
		ceiling: cfg.GrowthCeiling,
		owner:   debug.NewOwner(),
		Stats:   stats.NewGC(),
	}
}

func (h *Heap) from() *arena { return h.spaces[h.active] }
func (h *Heap) to() *arena   { return h.spaces[1-h.active] }

// alloc is the shared entry point for every block-allocating constructor.
// It is the heap's safe point: if the request would overflow the active
// arena, it runs a collection (using roots, which must include every block
// reference the caller still needs) before retrying, and grows the arena
// only as a last resort; a request that would take the live bytes past a
// nonzero ceiling fails with ErrHeapExhausted instead.
func (h *Heap) alloc(roots *Roots, kind Kind, dataSize int) (Ref, error) {
	h.owner.Check()

	need := headerSize + dataSize
	if h.from().size+need > len(h.from().buf) {
		h.collect(roots)
	}
	if h.from().size+need > len(h.from().buf) {
		if h.ceiling > 0 && h.from().size+need > h.ceiling {
			return 0, &ErrHeapExhausted{Requested: need, Ceiling: h.ceiling}
		}
		h.from().grow(need)
	}
	return h.from().alloc(kind, dataSize), nil
}

// Cons allocates a new pair. roots pins any other live block references the
// caller holds (e.g. the cdr it is about to link in), since allocation may
// collect.
func (h *Heap) Cons(car, cdr Value, roots *Roots) (Value, error) {
	roots.Push(&car, &cdr)
	defer roots.pop(2)

	ref, err := h.alloc(roots, KindPair, 2*encodedValueSize)
	if err != nil {
		return NilValue, err
	}
	payload := h.from().payload(ref)
	encodeValue(payload[0:encodedValueSize], car)
	encodeValue(payload[encodedValueSize:2*encodedValueSize], cdr)
	return Value{Kind: KindPair, Ref: ref}, nil
}

// Car returns the first element of a pair.
func (h *Heap) Car(v Value) Value {
	payload := h.from().payload(v.Ref)
	return decodeValue(payload[0:encodedValueSize])
}

// Cdr returns the second element of a pair.
func (h *Heap) Cdr(v Value) Value {
	payload := h.from().payload(v.Ref)
	return decodeValue(payload[encodedValueSize : 2*encodedValueSize])
}

// SetCdr overwrites the cdr of an existing pair in place. Used by the list
// builder to link successive list elements without re-consing.
func (h *Heap) SetCdr(pair, cdr Value) {
	payload := h.from().payload(pair.Ref)
	encodeValue(payload[encodedValueSize:2*encodedValueSize], cdr)
}

// NewString allocates a NUL-terminated string block. dataSize covers the
// terminator, per spec §3.
func (h *Heap) NewString(s string, roots *Roots) (Value, error) {
	return h.newBytes(KindString, s, roots)
}

// NewSymbol allocates a NUL-terminated symbol block. Callers are expected to
// have already normalized s to upper case (the reader does this with its
// x/text/cases folding, see reader.go).
func (h *Heap) NewSymbol(s string, roots *Roots) (Value, error) {
	return h.newBytes(KindSymbol, s, roots)
}

func (h *Heap) newBytes(kind Kind, s string, roots *Roots) (Value, error) {
	ref, err := h.alloc(roots, kind, len(s)+1)
	if err != nil {
		return NilValue, err
	}
	payload := h.from().payload(ref)
	copy(payload, s)
	payload[len(s)] = 0
	return Value{Kind: kind, Ref: ref}, nil
}

// Bytes returns the string payload of a STRING/SYMBOL value, without the
// NUL terminator.
func (h *Heap) Bytes(v Value) string {
	payload := h.from().payload(v.Ref)
	return string(payload[:len(payload)-1])
}

// lambdaPayloadSize: args(16) + body(16) + frameIdx(4).
const lambdaPayloadSize = 2*encodedValueSize + 4

// NewLambda allocates a lambda block capturing frame, retaining it for as
// long as the lambda value is reachable (spec §4.4's "LAMBDA captures its
// defining frame by retaining it").
func (h *Heap) NewLambda(args, body Value, frame FrameHandle, roots *Roots) (Value, error) {
	roots.Push(&args, &body)
	defer roots.pop(2)

	ref, err := h.alloc(roots, KindLambda, lambdaPayloadSize)
	if err != nil {
		return NilValue, err
	}

	frame.Retain()
	idx := uint32(len(h.frames))
	h.frames = append(h.frames, frame)

	payload := h.from().payload(ref)
	encodeValue(payload[0:encodedValueSize], args)
	encodeValue(payload[encodedValueSize:2*encodedValueSize], body)
	putUint32(payload[2*encodedValueSize:], idx)

	return Value{Kind: KindLambda, Ref: ref}, nil
}

// LambdaParts returns a lambda's formal parameter list, body, and captured
// frame.
func (h *Heap) LambdaParts(v Value) (args, body Value, frame FrameHandle) {
	payload := h.from().payload(v.Ref)
	args = decodeValue(payload[0:encodedValueSize])
	body = decodeValue(payload[encodedValueSize : 2*encodedValueSize])
	idx := getUint32(payload[2*encodedValueSize:])
	return args, body, h.frames[idx]
}

// RegisterProc installs fn in the builtin registry and returns a PROC value
// that invokes it.
func (h *Heap) RegisterProc(fn func(args Value, h *Heap) (Value, error)) Value {
	id := int32(len(h.procs))
	h.procs = append(h.procs, fn)
	return ProcValue(id)
}

// CallProc invokes the builtin procedure named by v.
func (h *Heap) CallProc(v Value, args Value) (Value, error) {
	return h.procs[v.ProcID()](args, h)
}

func putUint32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func getUint32(src []byte) uint32 {
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
}
