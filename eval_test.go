package tinylisp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	tinylisp "github.com/tinylisp/tinylisp"
)

// evalAll reads and evaluates every top-level form in src against a fresh
// interpreter, returning the results in order.
func evalAll(t *testing.T, src string) []tinylisp.Value {
	t.Helper()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, src)
	require.NoError(t, err)

	var results []tinylisp.Value
	for _, f := range forms {
		v, err := tinylisp.Eval(in, f, in.Root)
		require.NoError(t, err)
		results = append(results, v)
	}
	return results
}

func TestArithmetic(t *testing.T) {
	t.Parallel()
	results := evalAll(t, "(+ 1 2)")
	require.Len(t, results, 1)
	require.Equal(t, int64(3), results[0].Int())
}

func TestDefineAndReuse(t *testing.T) {
	t.Parallel()
	results := evalAll(t, "(define x 10) (+ x x)")
	require.Len(t, results, 2)
	require.Equal(t, int64(20), results[1].Int())
}

func TestLambdaApplication(t *testing.T) {
	t.Parallel()
	results := evalAll(t, "((lambda (x) (* x x)) 5)")
	require.Len(t, results, 1)
	require.Equal(t, int64(25), results[0].Int())
}

func TestIfTruthiness(t *testing.T) {
	t.Parallel()
	results := evalAll(t, "(if 0 1 2)")
	require.Equal(t, int64(2), results[0].Int())

	results = evalAll(t, "(if 1 1 2)")
	require.Equal(t, int64(1), results[0].Int())
}

func TestClosureCapture(t *testing.T) {
	t.Parallel()
	results := evalAll(t, `
		(define f (lambda (x) (lambda (y) (+ x y))))
		((f 3) 4)
	`)
	require.Len(t, results, 2)
	require.Equal(t, int64(7), results[1].Int())
}

func TestQuotedList(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, "'(a b c)")
	require.NoError(t, err)
	require.Len(t, forms, 1)

	v, err := tinylisp.Eval(in, forms[0], in.Root)
	require.NoError(t, err)

	p := &tinylisp.Printer{Heap: in.Heap}
	require.Equal(t, "(A B C)", p.Sprint(v))
}

func TestEnvironmentShadowing(t *testing.T) {
	t.Parallel()
	results := evalAll(t, `
		(define x 10)
		((lambda (x) x) 20)
		x
	`)
	require.Len(t, results, 3)
	require.Equal(t, int64(20), results[1].Int())
	require.Equal(t, int64(10), results[2].Int())
}

func TestSetBangRebindsDefiningFrame(t *testing.T) {
	t.Parallel()
	results := evalAll(t, `
		(define x 1)
		(define f (lambda () (set! x 2)))
		(f)
		x
	`)
	require.Equal(t, int64(2), results[3].Int())
}

func TestSetBangUnboundIsError(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, "(set! nope 1)")
	require.NoError(t, err)

	_, err = tinylisp.Eval(in, forms[0], in.Root)
	require.Error(t, err)
}

func TestApplyNonProcedureIsError(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, "(1 2 3)")
	require.NoError(t, err)

	_, err = tinylisp.Eval(in, forms[0], in.Root)
	require.Error(t, err)
}

func TestLambdaArityMismatchIsError(t *testing.T) {
	t.Parallel()
	in := tinylisp.New()
	forms, err := tinylisp.Read(in, "((lambda (x y) x) 1)")
	require.NoError(t, err)

	_, err = tinylisp.Eval(in, forms[0], in.Root)
	require.Error(t, err)
}
