package heap

import "github.com/tinylisp/tinylisp/internal/debug"

// collect runs a full Cheney two-finger copying collection, compacting
// every value reachable from roots into the inactive semi-space and then
// making that space active.
//
// Grounded on spec §4.2's algorithm and original_source/lisp.c's
// gc_move_word/gc_collect, with two corrections spec §9 calls for:
//   - forwarding goes into a dedicated header field (block.go's
//     blockHeader.Forward), not over DataSize, so DataSize survives and
//     the from-space can still be size-iterated afterward;
//   - the scan uses a single forward cursor that terminates the moment it
//     catches up to the allocation cursor, instead of the reference
//     source's non-terminating outer while(1).
func (h *Heap) collect(roots *Roots) {
	from, to := h.from(), h.to()
	to.reset()

	before := from.size
	h.Stats.Collections++

	for _, v := range roots.stack {
		*v = h.move(from, to, *v)
	}

	for cursor := 0; cursor < to.size; {
		hdr := to.header(Ref(cursor))
		if hdr.Flags&flagVisited == 0 {
			switch hdr.Kind {
			case KindPair:
				payload := to.payload(Ref(cursor))
				car := decodeValue(payload[0:encodedValueSize])
				cdr := decodeValue(payload[encodedValueSize : 2*encodedValueSize])
				car = h.move(from, to, car)
				cdr = h.move(from, to, cdr)
				// Re-fetch payload: moving children may have grown to's
				// backing array, invalidating the earlier slice header.
				payload = to.payload(Ref(cursor))
				encodeValue(payload[0:encodedValueSize], car)
				encodeValue(payload[encodedValueSize:2*encodedValueSize], cdr)
			case KindLambda:
				payload := to.payload(Ref(cursor))
				args := decodeValue(payload[0:encodedValueSize])
				body := decodeValue(payload[encodedValueSize : 2*encodedValueSize])
				args = h.move(from, to, args)
				body = h.move(from, to, body)
				payload = to.payload(Ref(cursor))
				encodeValue(payload[0:encodedValueSize], args)
				encodeValue(payload[encodedValueSize:2*encodedValueSize], body)
			}

			hdr.Flags |= flagVisited
			to.setHeader(Ref(cursor), hdr)
		}
		cursor += headerSize + int(hdr.DataSize)
	}

	h.releaseUnreachableFrames(from)

	h.active = 1 - h.active
	h.Stats.LiveBytes.Record(float64(to.size))
	h.Stats.BytesMoved.Record(float64(before - to.size))
	h.Stats.PauseSamples.Record(float64(before - to.size))

	debug.Log([]any{"heap %p", h}, "collect", "%d -> %d bytes", before, to.size)
}

// move implements the spec's "move" primitive: non-block kinds pass
// through unchanged; block kinds are forwarded once (a second move of an
// already-moved block just returns the recorded destination, which is what
// makes cycles safe) and copied into to.
func (h *Heap) move(from, to *arena, v Value) Value {
	if !v.Kind.IsBlock() {
		return v
	}

	hdr := from.header(v.Ref)
	if hdr.Flags&flagMoved == 0 {
		size := headerSize + int(hdr.DataSize)
		if to.size+size > len(to.buf) {
			to.grow(size)
		}
		dest := to.size
		copy(to.buf[dest:dest+size], from.buf[int(v.Ref):int(v.Ref)+size])
		// The copy starts unflagged, so the scan below visits it even if it
		// was already visited by an earlier collection.
		to.setHeader(Ref(dest), blockHeader{Kind: hdr.Kind, DataSize: hdr.DataSize})
		to.size += size

		hdr.Flags |= flagMoved
		hdr.Forward = uint32(dest)
		from.setHeader(v.Ref, hdr)
	}

	return Value{Kind: v.Kind, Ref: Ref(from.header(v.Ref).Forward), bits: v.bits}
}

// releaseUnreachableFrames walks the just-collected-from from-space (still
// size-iterable because Forward never clobbered DataSize) and releases the
// captured frame of every LAMBDA block that was never forwarded, i.e. was
// unreachable from this collection's roots. This is the piece that keeps
// spec §4.4's frame reference counts honest without a separate tracing
// pass: it falls out for free from preserving DataSize across a move.
func (h *Heap) releaseUnreachableFrames(from *arena) {
	for cursor := 0; cursor < from.size; {
		hdr := from.header(Ref(cursor))
		if hdr.Kind == KindLambda && hdr.Flags&flagMoved == 0 {
			payload := from.payload(Ref(cursor))
			idx := getUint32(payload[2*encodedValueSize:])
			if f := h.frames[idx]; f != nil {
				f.Release()
				h.frames[idx] = nil
			}
		}
		cursor += headerSize + int(hdr.DataSize)
	}
}
