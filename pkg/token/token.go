// Package token defines the lexical token types produced by the Python scanner.
package token

import "fmt"

// Kind classifies a lexical token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// Comment is a '#' comment running to the end of the physical line,
	// newline excluded.
	Comment
	// String is a string or bytes literal, including any prefix letters and
	// quotes. Triple-quoted literals may span multiple lines.
	String
	// Newline is a single line terminator, either "\n" or "\r\n".
	Newline
	// Other is a maximal run of source text that is none of the above:
	// identifiers, keywords, numbers, operators, indentation, inline
	// whitespace, and backslash line continuations.
	Other
	// EOF marks the end of the input. Its text is always empty.
	EOF
)

func (k Kind) String() string {
	switch k {
	case Comment:
		return "Comment"
	case String:
		return "String"
	case Newline:
		return "Newline"
	case Other:
		return "Other"
	case EOF:
		return "EOF"
	default:
		return "Invalid"
	}
}

// Position is a location in the source text. Column and Offset count bytes,
// not runes.
type Position struct {
	// Line is the 1-based physical line number.
	Line int
	// Column is the 0-based byte column within the line.
	Column int
	// Offset is the byte offset from the start of the input.
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is one classified slice of the source. Tokens are immutable once
// produced; a complete token stream covers every input byte exactly once,
// with contiguous, non-overlapping spans.
type Token struct {
	Kind  Kind
	Text  string
	Start Position
	End   Position
}

// IsComment reports whether the token is a comment.
func (t Token) IsComment() bool { return t.Kind == Comment }

// IsEOF reports whether the token is the synthetic end-of-input marker.
func (t Token) IsEOF() bool { return t.Kind == EOF }
