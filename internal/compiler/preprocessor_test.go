package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/iter"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

// layout renders the preprocessed stream of input with block markers spelled
// out.
func layout(input string, tabWidth int) (string, exc.Exception) {
	ctx := context.Background()
	rep := exc.NewReporter(nil)
	raw := newLexerTokens("/test.wd", iter.NewUnicodeString(input), rep)
	tokens, _ := iter.Collect(ctx, NewPreprocessor("/test.wd", raw, rep, tabWidth))
	if e := exc.FirstFatal(rep); e != nil {
		return "", e
	}
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch {
		case t.Synthetic && t.Type == syntax.TokenTypeCurlyOpen:
			parts = append(parts, "INDENT")
		case t.Synthetic && t.Type == syntax.TokenTypeCurlyClose:
			parts = append(parts, "DEDENT")
		case t.Type == syntax.TokenTypeNewline:
			parts = append(parts, "NL")
		case t.Type == syntax.TokenTypeEOF:
			parts = append(parts, "EOF")
		default:
			parts = append(parts, t.Value)
		}
	}
	return strings.Join(parts, " "), nil
}

func TestPreprocessor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		tabWidth int
		expected string
	}{
		{
			name:     "flat",
			input:    "a\nb\n",
			expected: "a NL b NL EOF",
		},
		{
			name:     "one block",
			input:    "while x\n    y\nz",
			expected: "while x INDENT y NL DEDENT z EOF",
		},
		{
			name:     "open blocks close at end of input",
			input:    "if a\n  if b\n    c",
			expected: "if a INDENT if b INDENT c DEDENT DEDENT EOF",
		},
		{
			name:     "blank and comment lines carry no layout",
			input:    "a\n\n   # note\n\nb",
			expected: "a NL b EOF",
		},
		{
			name:     "two statements in one block",
			input:    "while x\n  a\n  b\n",
			expected: "while x INDENT a NL b NL DEDENT EOF",
		},
		{
			name:     "line breaks inside brackets",
			input:    "x = [1,\n      2]\ny",
			expected: "x = [ 1 , 2 ] NL y EOF",
		},
		{
			name:     "explicit braces",
			input:    "while true { break }\nprint(1)",
			expected: "while true { break } NL print ( 1 ) EOF",
		},
		{
			name:     "tab stops",
			input:    "if a\n\tb\n    c",
			tabWidth: 4,
			expected: "if a INDENT b NL c DEDENT EOF",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "EOF",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			actual, e := layout(testCase.input, testCase.tabWidth)
			require.Nil(t, e)
			require.Equal(t, testCase.expected, actual)
		})
	}
}

func TestPreprocessorErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		tabWidth int
		code     string
		line     int32
		column   int32
		message  string
	}{
		{
			name:    "indented first line",
			input:   "  a",
			code:    exc.CodeInconsistentIndent,
			line:    1,
			column:  3,
			message: "unexpected indent",
		},
		{
			name:    "dedent to a column never opened",
			input:   "if a\n    b\n  c",
			code:    exc.CodeInconsistentIndent,
			line:    3,
			column:  3,
			message: "inconsistent dedent to column 3; open blocks are indented 0, 4",
		},
		{
			name:     "wide tabs",
			input:    "if a\n\tb\n    c",
			tabWidth: 8,
			code:     exc.CodeInconsistentIndent,
			line:     3,
			column:   5,
			message:  "inconsistent dedent to column 5; open blocks are indented 0, 8",
		},
		{
			name:    "dedent between nested blocks",
			input:   "if a\n  if b\n      c\n    d",
			code:    exc.CodeInconsistentIndent,
			line:    4,
			column:  5,
			message: "inconsistent dedent to column 5; open blocks are indented 0, 2, 6",
		},
		{
			name:    "stray closer",
			input:   "a)",
			code:    exc.CodeUnbalancedBracket,
			line:    1,
			column:  2,
			message: `unbalanced ")"`,
		},
		{
			name:   "mismatched closer",
			input:  "(a]",
			code:   exc.CodeUnbalancedBracket,
			line:   1,
			column: 3,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, e := layout(testCase.input, testCase.tabWidth)
			require.NotNil(t, e)
			require.Equal(t, testCase.code, e.Code())
			require.Equal(t, testCase.line, e.Location().Line)
			require.Equal(t, testCase.column, e.Location().Column)
			if testCase.message != "" {
				require.Equal(t, testCase.message, e.Message())
			}
		})
	}
}
