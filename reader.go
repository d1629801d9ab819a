package tinylisp

import (
	"io"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tinylisp/tinylisp/internal/lexer"
)

// upper folds a symbol to upper case. Grounded on original_source/lisp.c's
// toupper loop, but done via x/text/cases, which is Unicode-aware. The lexer
// admits only ASCII letters in symbols, so identifiers read from source text
// never contain a non-ASCII letter for it to fold.
var upper = cases.Upper(language.Und)

// symbolIdent is the special-form name an application's car resolves to,
// used by Eval's form dispatch.
type symbolIdent string

const (
	identIf     symbolIdent = "IF"
	identQuote  symbolIdent = "QUOTE"
	identDefine symbolIdent = "DEFINE"
	identSetBang symbolIdent = "SET!"
	identLambda symbolIdent = "LAMBDA"
)

// Read tokenizes and parses text into the list of its top-level forms,
// allocating each form onto in's heap. A read error stops reading: the forms
// parsed before it are returned alongside the error, and the text after the
// failing form is not read.
func Read(in *Interpreter, text string) ([]Value, error) {
	p := &parser{in: in, lx: lexer.New(text), text: text}
	var forms []Value
	for {
		if err := p.advance(); err != nil {
			if err == io.EOF {
				return forms, nil
			}
			return forms, p.readErr(err)
		}
		form, err := p.parseForm()
		if err != nil {
			return forms, err
		}
		forms = append(forms, form)
	}
}

type parser struct {
	in   *Interpreter
	lx   *lexer.Lexer
	text string
	tok  lexer.Token
	atEOF bool
}

func (p *parser) advance() error {
	tok, err := p.lx.Next()
	if err != nil {
		p.atEOF = err == io.EOF
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) parseForm() (Value, error) {
	switch p.tok.Kind {
	case lexer.LParen:
		return p.parseList()
	case lexer.Quote:
		if err := p.advance(); err != nil {
			return Nil, p.readErr(err)
		}
		inner, err := p.parseForm()
		if err != nil {
			return Nil, err
		}
		quote, err := p.in.NewSymbol(string(identQuote))
		if err != nil {
			return Nil, err
		}
		tail, err := p.in.Cons(inner, Nil)
		if err != nil {
			return Nil, err
		}
		return p.in.Cons(quote, tail)
	case lexer.RParen:
		return Nil, &ReadError{Offset: p.tok.Start, cause: errUnexpectedRParen}
	case lexer.Int:
		n, err := strconv.ParseInt(p.tok.Text(p.text), 10, 64)
		if err != nil {
			return Nil, &ReadError{Offset: p.tok.Start, cause: err}
		}
		return Int(n), nil
	case lexer.Float:
		x, err := strconv.ParseFloat(p.tok.Text(p.text), 64)
		if err != nil {
			return Nil, &ReadError{Offset: p.tok.Start, cause: err}
		}
		return Float(x), nil
	case lexer.String:
		s := p.tok.Text(p.text)
		return p.in.NewString(s[1 : len(s)-1])
	case lexer.Symbol:
		return p.in.NewSymbol(upper.String(p.tok.Text(p.text)))
	default:
		return Nil, &ReadError{Offset: p.tok.Start, cause: errUnknownToken}
	}
}

// parseList builds a proper list out of forms up to the matching RPAREN.
// p.tok is the LPAREN on entry.
func (p *parser) parseList() (Value, error) {
	start := p.tok.Start
	var head, tail Value
	haveHead := false
	for {
		if err := p.advance(); err != nil {
			return Nil, &ReadError{Offset: start, cause: errUnterminatedList}
		}
		if p.tok.Kind == lexer.RParen {
			if !haveHead {
				return Nil, nil
			}
			return head, nil
		}

		elem, err := p.parseForm()
		if err != nil {
			return Nil, err
		}
		cell, err := p.in.Cons(elem, Nil)
		if err != nil {
			return Nil, err
		}
		if !haveHead {
			head = cell
			haveHead = true
		} else {
			p.in.Heap.SetCdr(tail, cell)
		}
		tail = cell
	}
}

var (
	errUnexpectedRParen = readSentinel("unexpected ')'")
	errUnterminatedList = readSentinel("unterminated list")
	errUnknownToken      = readSentinel("unknown token")
)

type readSentinel string

func (e readSentinel) Error() string { return string(e) }

func (p *parser) readErr(err error) error {
	if le, ok := err.(*lexer.ErrLex); ok {
		return &ReadError{Offset: le.Offset, cause: le.Unwrap()}
	}
	return &ReadError{Offset: p.tok.Start, cause: err}
}
