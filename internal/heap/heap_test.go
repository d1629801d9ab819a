package heap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinylisp/tinylisp/internal/heap"
)

func TestConsCarCdr(t *testing.T) {
	t.Parallel()
	h := heap.New(heap.Config{})
	var roots heap.Roots

	a := heap.IntValue(1)
	b := heap.IntValue(2)
	pair, err := h.Cons(a, b, &roots)
	require.NoError(t, err)
	require.Equal(t, int64(1), h.Car(pair).Int())
	require.Equal(t, int64(2), h.Cdr(pair).Int())
}

func TestStringAndSymbolRoundTrip(t *testing.T) {
	t.Parallel()
	h := heap.New(heap.Config{})
	var roots heap.Roots

	s, err := h.NewString("hello", &roots)
	require.NoError(t, err)
	require.Equal(t, "hello", h.Bytes(s))

	sym, err := h.NewSymbol("FOO", &roots)
	require.NoError(t, err)
	require.Equal(t, "FOO", h.Bytes(sym))
}

// TestCollectionPreservesList builds a long list under a deliberately tiny
// initial arena, forcing many collections along the way, and checks the
// list's values survive every compaction unchanged: the GC-preservation
// property from spec §8.
func TestCollectionPreservesList(t *testing.T) {
	t.Parallel()
	h := heap.New(heap.Config{InitialCapacity: 64})

	const n = 500
	list := heap.NilValue
	for i := n - 1; i >= 0; i-- {
		var roots heap.Roots
		roots.Push(&list)
		cell, err := h.Cons(heap.IntValue(int64(i)), list, &roots)
		require.NoError(t, err)
		list = cell
	}

	cur := list
	for i := 0; i < n; i++ {
		require.Equal(t, heap.KindPair, cur.Kind)
		require.Equal(t, int64(i), h.Car(cur).Int())
		cur = h.Cdr(cur)
	}
	require.Equal(t, heap.KindNil, cur.Kind)
}

func TestHeapExhaustedPastCeiling(t *testing.T) {
	t.Parallel()
	h := heap.New(heap.Config{InitialCapacity: 64, GrowthCeiling: 256})

	// Keep every allocated string alive by re-rooting the whole slice each
	// time, so live bytes accumulate instead of being collected away.
	var live []heap.Value
	var err error
	for i := 0; i < 100 && err == nil; i++ {
		var roots heap.Roots
		for j := range live {
			roots.Push(&live[j])
		}
		var s heap.Value
		s, err = h.NewString("01234567890123456789", &roots)
		if err == nil {
			live = append(live, s)
		}
	}
	require.Error(t, err)
	var exhausted *heap.ErrHeapExhausted
	require.ErrorAs(t, err, &exhausted)
}

type fakeFrame struct{ released bool }

func (f *fakeFrame) Retain()  {}
func (f *fakeFrame) Release() { f.released = true }

func TestLambdaCapturesFrame(t *testing.T) {
	t.Parallel()
	h := heap.New(heap.Config{})
	var roots heap.Roots

	frame := &fakeFrame{}
	args, _ := h.NewSymbol("X", &roots)
	body := heap.IntValue(1)

	lam, err := h.NewLambda(args, body, frame, &roots)
	require.NoError(t, err)

	gotArgs, gotBody, gotFrame := h.LambdaParts(lam)
	require.Equal(t, "X", h.Bytes(gotArgs))
	require.Equal(t, int64(1), gotBody.Int())
	require.Same(t, frame, gotFrame.(*fakeFrame))
}
