package strip_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/pystrip/pkg/lexer"
	"github.com/walteh/pystrip/pkg/strip"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name   string
		source string
		opts   strip.Options
		want   string
	}{
		{
			name:   "trailing comment removed",
			source: "x = 1  # set x\n",
			opts:   strip.DefaultOptions(),
			want:   "x = 1\n",
		},
		{
			name:   "comment only line disappears",
			source: "x = 1\n# gone\ny = 2\n",
			opts:   strip.DefaultOptions(),
			want:   "x = 1\ny = 2\n",
		},
		{
			name:   "blank line policy remove",
			source: "code1\n\n# c\n\ncode2",
			opts:   strip.DefaultOptions(),
			want:   "code1\ncode2\n",
		},
		{
			name:   "blank line policy keep",
			source: "code1\n\n# c\n\ncode2",
			opts:   strip.Options{KeepPattern: strip.DefaultKeepPattern, RemoveEmptyLines: false},
			want:   "code1\n\n\n\ncode2\n",
		},
		{
			name:   "lint directive kept verbatim",
			source: "import os  # noqa: F401\n",
			opts:   strip.DefaultOptions(),
			want:   "import os  # noqa: F401\n",
		},
		{
			name:   "pylint directive kept",
			source: "# pylint: disable=missing-docstring\nx = 1\n",
			opts:   strip.DefaultOptions(),
			want:   "# pylint: disable=missing-docstring\nx = 1\n",
		},
		{
			name:   "type comment kept case insensitive",
			source: "x = []  # TYPE: list[int]\n",
			opts:   strip.DefaultOptions(),
			want:   "x = []  # TYPE: list[int]\n",
		},
		{
			name:   "directive not at comment start removed",
			source: "x = 1  # see noqa: below\n",
			opts:   strip.DefaultOptions(),
			want:   "x = 1\n",
		},
		{
			name:   "nil keep pattern strips directives too",
			source: "import os  # noqa: F401\n",
			opts:   strip.Options{KeepPattern: nil, RemoveEmptyLines: true},
			want:   "import os\n",
		},
		{
			name:   "custom keep pattern",
			source: "# KEEP me\n# drop me\nx = 1\n",
			opts:   strip.Options{KeepPattern: regexp.MustCompile(`#\s*KEEP`), RemoveEmptyLines: true},
			want:   "# KEEP me\nx = 1\n",
		},
		{
			name:   "hash inside string survives",
			source: "url = 'http://example.com#anchor'  # link\n",
			opts:   strip.DefaultOptions(),
			want:   "url = 'http://example.com#anchor'\n",
		},
		{
			name:   "triple quoted docstring survives",
			source: "def f():\n    \"\"\"doc # not a comment\n    more\"\"\"\n    return 1  # done\n",
			opts:   strip.DefaultOptions(),
			want:   "def f():\n    \"\"\"doc # not a comment\n    more\"\"\"\n    return 1\n",
		},
		{
			name:   "raw string with hash survives",
			source: "p = r\"#\\d+\"  # pattern\n",
			opts:   strip.DefaultOptions(),
			want:   "p = r\"#\\d+\"\n",
		},
		{
			name:   "comment between bracketed continuation lines",
			source: "x = [1,  # first\n     2]\n",
			opts:   strip.DefaultOptions(),
			want:   "x = [1,\n     2]\n",
		},
		{
			name:   "backslash continuation preserved",
			source: "x = 1 + \\\n    2\n",
			opts:   strip.DefaultOptions(),
			want:   "x = 1 + \\\n    2\n",
		},
		{
			name:   "trailing whitespace trimmed",
			source: "x = 1   \ny = 2\t\n",
			opts:   strip.DefaultOptions(),
			want:   "x = 1\ny = 2\n",
		},
		{
			name:   "many trailing newlines collapse",
			source: "x = 1\n\n\n",
			opts:   strip.DefaultOptions(),
			want:   "x = 1\n",
		},
		{
			name:   "no trailing newline gains one",
			source: "x = 1",
			opts:   strip.DefaultOptions(),
			want:   "x = 1\n",
		},
		{
			name:   "crlf input normalized",
			source: "x = 1\r\n# c\r\ny = 2\r\n",
			opts:   strip.DefaultOptions(),
			want:   "x = 1\ny = 2\n",
		},
		{
			name:   "only comment removed empty result",
			source: "# lonely\n",
			opts:   strip.DefaultOptions(),
			want:   "",
		},
		{
			name:   "only comment keep empty lines",
			source: "# lonely",
			opts:   strip.Options{KeepPattern: strip.DefaultKeepPattern, RemoveEmptyLines: false},
			want:   "\n",
		},
		{
			name:   "indented comment line keep empty lines",
			source: "x = 1\n    # c\ny = 2\n",
			opts:   strip.Options{KeepPattern: strip.DefaultKeepPattern, RemoveEmptyLines: false},
			want:   "x = 1\n\ny = 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := strip.Strip([]byte(tt.source), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestStripEmptyInput(t *testing.T) {
	got, err := strip.Strip(nil, strip.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = strip.Strip([]byte{}, strip.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStripIdempotent(t *testing.T) {
	sources := []string{
		"x = 1  # gone\n\n\ndef f():\n    # body\n    return 'a#b'\n",
		"import os  # noqa: F401\n# pylint: disable=all\nprint(os.name)\n",
		"code1\n\n# c\n\ncode2",
	}

	for _, opts := range []strip.Options{
		strip.DefaultOptions(),
		{KeepPattern: strip.DefaultKeepPattern, RemoveEmptyLines: false},
	} {
		for _, source := range sources {
			once, err := strip.Strip([]byte(source), opts)
			require.NoError(t, err)
			twice, err := strip.Strip(once, opts)
			require.NoError(t, err)
			assert.Equal(t, string(once), string(twice))
		}
	}
}

// Inputs without comment introducers come through with only line
// normalization applied.
func TestStripNonCommentPreservation(t *testing.T) {
	source := "def f(x):\n    return x + 1\n\nprint(f(2))\n"
	got, err := strip.Strip([]byte(source), strip.Options{KeepPattern: nil, RemoveEmptyLines: false})
	require.NoError(t, err)
	assert.Equal(t, source, string(got))
}

// Whitespace-only lines and genuinely empty lines must produce identical
// output when empty lines are kept.
func TestStripBlankLineRepresentation(t *testing.T) {
	opts := strip.Options{KeepPattern: nil, RemoveEmptyLines: false}

	whitespaceOnly, err := strip.Strip([]byte("a = 1\n   \t\nb = 2\n"), opts)
	require.NoError(t, err)
	genuinelyEmpty, err := strip.Strip([]byte("a = 1\n\nb = 2\n"), opts)
	require.NoError(t, err)

	assert.Equal(t, string(genuinelyEmpty), string(whitespaceOnly))
	assert.Equal(t, "a = 1\n\nb = 2\n", string(whitespaceOnly))
}

// Stripped output re-lexes to the same retained classification.
func TestStripOutputRelexes(t *testing.T) {
	source := "x = 1  # gone\ns = 'a#b'  # also gone\n# bye\ny = 2\n"
	got, err := strip.Strip([]byte(source), strip.DefaultOptions())
	require.NoError(t, err)

	toks, err := lexer.Tokenize(got)
	require.NoError(t, err)
	for _, tok := range toks {
		assert.False(t, tok.IsComment(), "no comments may survive: %q", tok.Text)
	}
}

func TestStripTokenizationFailures(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "unterminated string", source: "x = 'abc\n"},
		{name: "unterminated triple quoted", source: "s = '''abc\n"},
		{name: "invalid utf8", source: "x = 1\n\xff\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := strip.Strip([]byte(tt.source), strip.DefaultOptions())
			require.Error(t, err)
			assert.Nil(t, got, "no partial output on failure")

			var terr *lexer.TokenizeError
			assert.ErrorAs(t, err, &terr)
		})
	}
}
