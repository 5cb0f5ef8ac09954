// Package strip implements the comment removal core: a pure transform from
// Python source bytes to source bytes with comments removed.
//
// The pipeline is a linear four-stage transform: lex, filter, reconstruct,
// normalize. It either succeeds for the whole input or fails atomically; no
// partial result is ever returned. The package holds no state between calls
// and is safe to use concurrently on independent inputs.
package strip

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/walteh/pystrip/pkg/lexer"
	"github.com/walteh/pystrip/pkg/token"
	"gitlab.com/tozd/go/errors"
)

// DefaultKeepPattern matches the common lint and type-checker directive
// comments that should survive stripping.
var DefaultKeepPattern = regexp.MustCompile(`(?i)^#\s*(pylint:|flake8:|type:|noqa:)`)

// trailingCutset is the set of characters trimmed from line ends.
const trailingCutset = " \t\r\v\f"

// Options configures a single Strip call.
type Options struct {
	// KeepPattern exempts comments from removal when it matches at the
	// start of the comment text (introducer '#' included). Nil keeps no
	// comments.
	KeepPattern *regexp.Regexp

	// RemoveEmptyLines drops lines that are empty, or whitespace-only,
	// after comment removal.
	RemoveEmptyLines bool
}

// DefaultOptions returns the standard configuration: keep lint directives,
// remove emptied lines.
func DefaultOptions() Options {
	return Options{
		KeepPattern:      DefaultKeepPattern,
		RemoveEmptyLines: true,
	}
}

// Strip removes comment tokens from Python source bytes.
//
// Empty input is a defined case and yields empty output. Any non-empty
// result is valid UTF-8 and ends with exactly one trailing newline. The
// error is a *lexer.TokenizeError (wrapped) when the input cannot be lexed.
func Strip(src []byte, opts Options) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}

	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, errors.Errorf("tokenizing source: %w", err)
	}

	kept := filterTokens(toks, opts.KeepPattern)
	text := reconstruct(kept)
	terminated := src[len(src)-1] == '\n'
	return normalizeLines(text, opts.RemoveEmptyLines, terminated), nil
}

// filterTokens drops comment tokens that do not match keep at the start of
// their text. Every other token passes through unchanged and in order; the
// filter never reorders and never fabricates tokens.
func filterTokens(toks []token.Token, keep *regexp.Regexp) []token.Token {
	kept := make([]token.Token, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind == token.Comment && !matchesAtStart(keep, tok.Text) {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}

// matchesAtStart reports whether re matches text starting at its first
// byte, regardless of whether the pattern itself is anchored.
func matchesAtStart(re *regexp.Regexp, text string) bool {
	if re == nil {
		return false
	}
	loc := re.FindStringIndex(text)
	return loc != nil && loc[0] == 0
}

// reconstruct serializes the filtered token stream back into source text.
// Token texts are exact source slices, so concatenation cannot fuse
// adjacent retained tokens: comments and strings always end at a quote or
// line boundary, and newlines are tokens of their own. Removing a trailing
// comment therefore never removes the newline that terminates its line, and
// a comment-only line leaves its newline behind for the normalizer.
func reconstruct(toks []token.Token) string {
	var sb strings.Builder
	for _, tok := range toks {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

// normalizeLines applies the line-level policy: split on line feeds,
// right-trim every line, drop emptied lines when removeEmpty is set, and
// terminate any non-empty result with exactly one newline. Whitespace-only
// lines and genuinely empty lines normalize to the same representation (an
// empty string), so both behave identically when empty lines are kept.
//
// terminated says whether the original input ended with a line feed. It
// decides whether the text after the last retained newline is a real line
// (a final unterminated line whose comment was removed) or nothing at all.
func normalizeLines(text string, removeEmpty, terminated bool) []byte {
	lines := strings.Split(text, "\n")
	if terminated && len(lines) > 0 && lines[len(lines)-1] == "" {
		// The final line feed terminates the last line rather than opening
		// a new empty one.
		lines = lines[:len(lines)-1]
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, trailingCutset)
		if removeEmpty && line == "" {
			continue
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return []byte{}
	}

	joined := strings.Join(out, "\n") + "\n"
	if !utf8.ValidString(joined) {
		// Substitution, not rejection, at this one boundary: the input was
		// validated, so this only guards against internal slicing defects.
		joined = strings.ToValidUTF8(joined, "�")
	}
	return []byte(joined)
}
