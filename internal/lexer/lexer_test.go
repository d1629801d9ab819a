package lexer_test

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tinylisp/tinylisp/internal/lexer"
)

func scanAll(t *testing.T, src string) []lexer.Token {
	t.Helper()
	lx := lexer.New(src)
	var toks []lexer.Token
	for {
		tok, err := lx.Next()
		if err == io.EOF {
			return toks
		}
		require.NoError(t, err)
		toks = append(toks, tok)
	}
}

func TestBasicTokens(t *testing.T) {
	t.Parallel()
	src := `(+ 1 2.5 "hi" 'foo) ; a comment`
	toks := scanAll(t, src)

	kinds := make([]lexer.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []lexer.Kind{
		lexer.LParen, lexer.Symbol, lexer.Int, lexer.Float,
		lexer.String, lexer.Quote, lexer.Symbol, lexer.RParen,
	}, kinds)

	require.Equal(t, `"hi"`, toks[4].Text(src))
	require.Equal(t, "foo", toks[6].Text(src))
}

func TestUnterminatedString(t *testing.T) {
	t.Parallel()
	lx := lexer.New(`"abc`)
	_, err := lx.Next()
	require.Error(t, err)
	var lexErr *lexer.ErrLex
	require.ErrorAs(t, err, &lexErr)
}

func TestEmbeddedNewlineInString(t *testing.T) {
	t.Parallel()
	lx := lexer.New("\"abc\ndef\"")
	_, err := lx.Next()
	require.Error(t, err)
}

// TestTokenPositionsExact pins down every token's (Kind, Start, Len) triple,
// not just its Kind, since Text relies on Start/Len pointing at the right
// slice of src.
func TestTokenPositionsExact(t *testing.T) {
	t.Parallel()
	src := "(+ 1)"
	got := scanAll(t, src)
	want := []lexer.Token{
		{Kind: lexer.LParen, Start: 0, Len: 1},
		{Kind: lexer.Symbol, Start: 1, Len: 1},
		{Kind: lexer.Int, Start: 3, Len: 1},
		{Kind: lexer.RParen, Start: 4, Len: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestSymbolSpecialChars(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, "set! my-var? #hash")
	require.Len(t, toks, 3)
	for _, tok := range toks {
		require.Equal(t, lexer.Symbol, tok.Kind)
	}
}

func TestCommentToEndOfLine(t *testing.T) {
	t.Parallel()
	toks := scanAll(t, "1 ; ignored (a b)\n2")
	require.Len(t, toks, 2)
	require.Equal(t, lexer.Int, toks[0].Kind)
	require.Equal(t, lexer.Int, toks[1].Kind)
}
