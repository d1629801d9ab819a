package heap

import "github.com/tinylisp/tinylisp/internal/debug"

// arena is one semi-space: a contiguous byte buffer that blocks are
// bump-allocated into, back to back, with no free list.
//
// Grounded on the teacher's internal/arena.Arena: Next/size tracks the bump
// cursor, buf is sized to cap and doubled on Grow, exactly as
// internal/arena/arena.go's Alloc/Grow do. The difference is that this
// arena hands out byte offsets instead of *byte/unsafe.Pointer, because its
// contents get relocated wholesale by the collector in gc.go.
type arena struct {
	buf  []byte
	size int
}

func newArena(capacity int) *arena {
	return &arena{buf: make([]byte, capacity)}
}

// grow doubles the arena's capacity (or grows to fit need, whichever is
// larger), preserving bytes already written.
func (a *arena) grow(need int) {
	newCap := max(len(a.buf)*2, a.size+need)
	buf := make([]byte, newCap)
	copy(buf, a.buf[:a.size])
	a.buf = buf
}

// reset empties the arena for reuse as the next collection's destination.
func (a *arena) reset() {
	a.size = 0
}

// alloc bump-allocates a block of headerSize+dataSize bytes, writing the
// header immediately. It does not touch the payload: the caller must fill
// it before any further allocation can run a collection, per the heap's
// safe-point discipline (spec §4.1's "no allocation may intervene between
// acquiring the block and writing its children").
func (a *arena) alloc(kind Kind, dataSize int) Ref {
	need := headerSize + dataSize
	if a.size+need > len(a.buf) {
		a.grow(need)
	}

	off := a.size
	putHeader(a.buf[off:], blockHeader{Kind: kind, DataSize: uint32(dataSize)})
	a.size += need

	debug.Log([]any{"arena %p", a}, "alloc", "%s at %d, size %d", kind, off, dataSize)
	return Ref(off)
}

func (a *arena) header(r Ref) blockHeader {
	return getHeader(a.buf[r:])
}

func (a *arena) setHeader(r Ref, h blockHeader) {
	putHeader(a.buf[r:], h)
}

// payload returns the data area following the block's header.
func (a *arena) payload(r Ref) []byte {
	h := a.header(r)
	start := int(r) + headerSize
	return a.buf[start : start+int(h.DataSize)]
}
