package tinylisp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	tinylisp "github.com/tinylisp/tinylisp"
)

func TestReadAtoms(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, `42 3.5 "hi" foo`)
	require.NoError(t, err)
	require.Len(t, forms, 4)

	require.Equal(t, int64(42), forms[0].Int())
	require.Equal(t, 3.5, forms[1].Float())
	require.Equal(t, "hi", in.AsString(forms[2]))
	require.Equal(t, "FOO", in.AsSymbol(forms[3]))
}

func TestReadSymbolsAreUpperCased(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, "foo Foo FOO")
	require.NoError(t, err)
	require.Len(t, forms, 3)
	for _, f := range forms {
		require.Equal(t, "FOO", in.AsSymbol(f))
	}
}

func TestReadProperList(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, "(1 2 3)")
	require.NoError(t, err)
	require.Len(t, forms, 1)

	p := &tinylisp.Printer{Heap: in.Heap}
	require.Equal(t, "(1 2 3)", p.Sprint(forms[0]))
}

func TestReadQuoteSugar(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, "'x")
	require.NoError(t, err)
	require.Len(t, forms, 1)

	p := &tinylisp.Printer{Heap: in.Heap}
	require.Equal(t, "(QUOTE X)", p.Sprint(forms[0]))
}

func TestReadUnmatchedRParenIsError(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	_, err := tinylisp.Read(in, ")")
	require.Error(t, err)
}

func TestReadUnterminatedListIsError(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	_, err := tinylisp.Read(in, "(1 2")
	require.Error(t, err)
}

func TestReadMultipleTopLevelForms(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, "1 2 3")
	require.NoError(t, err)
	require.Len(t, forms, 3)
}

// TestRoundTrip exercises spec §8's reader round-trip property for a value
// constructible in surface syntax: read, print, re-read, compare.
func TestRoundTrip(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, "(1 2 (3 4) NIL)")
	require.NoError(t, err)

	p := &tinylisp.Printer{Heap: in.Heap}
	printed := p.Sprint(forms[0])

	forms2, err := tinylisp.Read(in, printed)
	require.NoError(t, err)
	require.Equal(t, printed, p.Sprint(forms2[0]))
}
