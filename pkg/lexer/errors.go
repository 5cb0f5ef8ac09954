package lexer

import (
	"fmt"

	"github.com/walteh/pystrip/pkg/token"
)

// TokenizeError reports that the input could not be lexed: an unterminated
// string literal or a byte sequence that is not valid UTF-8. When a
// TokenizeError is returned no token stream is produced at all; the scanner
// never guesses its way past malformed input.
type TokenizeError struct {
	Msg string
	Pos token.Position
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}
