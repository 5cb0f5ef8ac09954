// Package lexer implements a self-contained lexical scanner for Python
// source text.
//
// The scanner partitions the input into comment, string, newline, and
// "other" tokens; it does not understand Python grammar beyond the lexical
// level. Its one job is to classify every byte of the input exactly once so
// that comments can be removed without ever touching the contents of string
// literals or the line structure of the surrounding code.
package lexer

import (
	"unicode/utf8"

	"github.com/walteh/pystrip/pkg/token"
)

// Lexer scans Python source bytes into tokens. The zero value is not usable;
// use New.
type Lexer struct {
	src  []byte
	off  int
	line int // 1-based
	col  int // 0-based byte column
}

// New creates a Lexer over src. The caller must not mutate src while the
// lexer is in use.
func New(src []byte) *Lexer {
	return &Lexer{src: src, line: 1}
}

// Tokenize scans src into a complete token stream terminated by an EOF
// token. It fails, returning no tokens at all, if the input is not valid
// UTF-8 or contains an unterminated string literal; a partial stream is
// never returned.
func Tokenize(src []byte) ([]token.Token, error) {
	if idx := firstInvalidUTF8(src); idx >= 0 {
		return nil, &TokenizeError{
			Msg: "invalid UTF-8 byte sequence",
			Pos: positionAt(src, idx),
		}
	}

	lx := New(src)
	var toks []token.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

// Next returns the next token. After the end of input it always returns an
// EOF token with an empty text.
func (lx *Lexer) Next() (token.Token, error) {
	if lx.eof() {
		pos := lx.pos()
		return token.Token{Kind: token.EOF, Start: pos, End: pos}, nil
	}

	switch {
	case lx.peek() == '#':
		return lx.scanComment(), nil
	case lx.atNewline():
		return lx.scanNewline(), nil
	case lx.atStringStart():
		return lx.scanString()
	default:
		return lx.scanOther(), nil
	}
}

func (lx *Lexer) eof() bool { return lx.off >= len(lx.src) }

func (lx *Lexer) peek() byte {
	if lx.eof() {
		return 0
	}
	return lx.src[lx.off]
}

func (lx *Lexer) peekAt(n int) byte {
	if lx.off+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off+n]
}

func (lx *Lexer) pos() token.Position {
	return token.Position{Line: lx.line, Column: lx.col, Offset: lx.off}
}

// bump advances past one byte, keeping the line/column counters current.
func (lx *Lexer) bump() byte {
	b := lx.src[lx.off]
	lx.off++
	if b == '\n' {
		lx.line++
		lx.col = 0
	} else {
		lx.col++
	}
	return b
}

func (lx *Lexer) atNewline() bool {
	b := lx.peek()
	return b == '\n' || (b == '\r' && lx.peekAt(1) == '\n')
}

func (lx *Lexer) make(kind token.Kind, start token.Position) token.Token {
	return token.Token{
		Kind:  kind,
		Text:  string(lx.src[start.Offset:lx.off]),
		Start: start,
		End:   lx.pos(),
	}
}

// scanComment consumes a '#' comment up to, but not including, the line
// terminator.
func (lx *Lexer) scanComment() token.Token {
	start := lx.pos()
	for !lx.eof() && lx.peek() != '\n' && !lx.atNewline() {
		lx.bump()
	}
	return lx.make(token.Comment, start)
}

// scanNewline consumes a single "\n" or "\r\n".
func (lx *Lexer) scanNewline() token.Token {
	start := lx.pos()
	if lx.peek() == '\r' {
		lx.bump()
	}
	lx.bump()
	return lx.make(token.Newline, start)
}

// scanOther consumes a maximal run of source text that is not a comment,
// string, or line terminator. A backslash immediately followed by a line
// break is a continuation and stays inside the run, so a logical line is
// never split by a token boundary there.
func (lx *Lexer) scanOther() token.Token {
	start := lx.pos()
	for !lx.eof() {
		b := lx.peek()
		if b == '\\' && (lx.peekAt(1) == '\n' || (lx.peekAt(1) == '\r' && lx.peekAt(2) == '\n')) {
			lx.bump()
			if lx.peek() == '\r' {
				lx.bump()
			}
			lx.bump()
			continue
		}
		if b == '#' || b == '\'' || b == '"' || b == '\n' || lx.atNewline() {
			break
		}
		if lx.atStringStart() {
			break
		}
		lx.bump()
	}
	return lx.make(token.Other, start)
}

// atStringStart reports whether the scanner sits at the start of a string
// literal: a quote, or 1-2 prefix letters (r, b, u, f in any case) directly
// followed by a quote. Prefix letters that are merely the tail of a longer
// identifier (as in foo_r"x") do not count; there the quote alone starts
// the literal, which matches how CPython splits the same text.
func (lx *Lexer) atStringStart() bool {
	b := lx.peek()
	if b == '\'' || b == '"' {
		return true
	}
	if !isPrefixLetter(b) {
		return false
	}
	if lx.off > 0 && isIdentContinue(lx.src[lx.off-1]) {
		return false
	}
	if b1 := lx.peekAt(1); b1 == '\'' || b1 == '"' {
		return true
	}
	if isPrefixLetter(lx.peekAt(1)) {
		if b2 := lx.peekAt(2); b2 == '\'' || b2 == '"' {
			return true
		}
	}
	return false
}

// scanString consumes a string literal, including any prefix letters. Inside
// any literal a backslash escapes the following character; this mirrors
// CPython's tokenizer, where even in raw strings an escaped quote does not
// terminate the literal. Triple-quoted literals may span line breaks,
// single-quoted ones may not.
func (lx *Lexer) scanString() (token.Token, error) {
	start := lx.pos()
	for isPrefixLetter(lx.peek()) {
		lx.bump()
	}
	quote := lx.bump()

	triple := false
	if lx.peek() == quote && lx.peekAt(1) == quote {
		lx.bump()
		lx.bump()
		triple = true
	} else if lx.peek() == quote {
		// Empty string.
		lx.bump()
		return lx.make(token.String, start), nil
	}

	for {
		if lx.eof() {
			msg := "unterminated string literal at end of file"
			if triple {
				msg = "unterminated triple-quoted string literal"
			}
			return token.Token{}, &TokenizeError{Msg: msg, Pos: start}
		}
		b := lx.peek()
		if b == '\\' {
			lx.bump()
			if lx.eof() {
				continue
			}
			if lx.peek() == '\r' && lx.peekAt(1) == '\n' {
				lx.bump()
			}
			lx.bump()
			continue
		}
		if !triple && (b == '\n' || (b == '\r' && lx.peekAt(1) == '\n')) {
			return token.Token{}, &TokenizeError{Msg: "unterminated string literal", Pos: start}
		}
		if b == quote {
			if !triple {
				lx.bump()
				return lx.make(token.String, start), nil
			}
			if lx.peekAt(1) == quote && lx.peekAt(2) == quote {
				lx.bump()
				lx.bump()
				lx.bump()
				return lx.make(token.String, start), nil
			}
		}
		lx.bump()
	}
}

func isPrefixLetter(b byte) bool {
	switch b {
	case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
		return true
	default:
		return false
	}
}

func isIdentContinue(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b >= utf8.RuneSelf
}

// firstInvalidUTF8 returns the byte offset of the first invalid UTF-8
// sequence in src, or -1 if src is valid.
func firstInvalidUTF8(src []byte) int {
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// positionAt computes the line/column position of a byte offset.
func positionAt(src []byte, off int) token.Position {
	pos := token.Position{Line: 1, Offset: off}
	for i := 0; i < off; i++ {
		if src[i] == '\n' {
			pos.Line++
			pos.Column = 0
		} else {
			pos.Column++
		}
	}
	return pos
}
