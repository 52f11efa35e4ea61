package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/fs"
	"gopkg.wendlang.org/wendc/internal/iter"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

type lexed struct {
	kind  syntax.TokenType
	value string
}

func lexString(t *testing.T, input string) ([]*syntax.Token, exc.Reporter) {
	t.Helper()
	ctx := context.Background()
	rep := exc.NewReporter(nil)
	tokens, err := iter.Collect(ctx, syntax.Iterator[*syntax.Token](newLexerTokens("/test.wd", iter.NewUnicodeString(input), rep)))
	require.NoError(t, err)
	return tokens, rep
}

func TestLexer(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []lexed
	}{
		{
			name:  "declaration",
			input: "num x = 3.25",
			expected: []lexed{
				{syntax.TokenTypeIdentifier, "num"},
				{syntax.TokenTypeWhitespace, " "},
				{syntax.TokenTypeIdentifier, "x"},
				{syntax.TokenTypeWhitespace, " "},
				{syntax.TokenTypeEqual, "="},
				{syntax.TokenTypeWhitespace, " "},
				{syntax.TokenTypeNumber, "3.25"},
			},
		},
		{
			name:  "comparisons",
			input: "a<=b!=c==d>e",
			expected: []lexed{
				{syntax.TokenTypeIdentifier, "a"},
				{syntax.TokenTypeLesserEqual, "<="},
				{syntax.TokenTypeIdentifier, "b"},
				{syntax.TokenTypeNotEqual, "!="},
				{syntax.TokenTypeIdentifier, "c"},
				{syntax.TokenTypeComparison, "=="},
				{syntax.TokenTypeIdentifier, "d"},
				{syntax.TokenTypeAngleClose, ">"},
				{syntax.TokenTypeIdentifier, "e"},
			},
		},
		{
			name:  "text keeps quotes and escapes",
			input: `"a\"b" 'c'`,
			expected: []lexed{
				{syntax.TokenTypeText, `"a\"b"`},
				{syntax.TokenTypeWhitespace, " "},
				{syntax.TokenTypeText, `'c'`},
			},
		},
		{
			name:  "comments and line breaks",
			input: "x # note\r\n\ty",
			expected: []lexed{
				{syntax.TokenTypeIdentifier, "x"},
				{syntax.TokenTypeWhitespace, " "},
				{syntax.TokenTypeComment, "# note"},
				{syntax.TokenTypeNewline, "\r\n"},
				{syntax.TokenTypeWhitespace, "\t"},
				{syntax.TokenTypeIdentifier, "y"},
			},
		},
		{
			name:  "leading fraction and unicode names",
			input: ".5 größe",
			expected: []lexed{
				{syntax.TokenTypeNumber, ".5"},
				{syntax.TokenTypeWhitespace, " "},
				{syntax.TokenTypeIdentifier, "größe"},
			},
		},
		{
			name:  "byte order mark is skipped",
			input: "\ufefftruex",
			expected: []lexed{
				{syntax.TokenTypeIdentifier, "truex"},
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			tokens, rep := lexString(t, testCase.input)
			require.Empty(t, rep.Reported())
			actual := make([]lexed, 0, len(tokens))
			for _, tok := range tokens {
				actual = append(actual, lexed{tok.Type, tok.Value})
			}
			require.Equal(t, testCase.expected, actual)
		})
	}
}

func TestLexerLocations(t *testing.T) {
	t.Parallel()

	tokens, rep := lexString(t, "a\n  bc")
	require.Empty(t, rep.Reported())
	require.Len(t, tokens, 4)
	require.Equal(t, syntax.Location{Line: 1, Column: 1, Offset: 0}, tokens[0].Span.Start)
	require.Equal(t, syntax.Location{Line: 2, Column: 1, Offset: 2}, tokens[2].Span.Start)
	require.Equal(t, syntax.Location{Line: 2, Column: 3, Offset: 4}, tokens[3].Span.Start)
	require.Equal(t, syntax.Location{Line: 2, Column: 5, Offset: 6}, tokens[3].Span.End)
}

func TestLexerErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		input  string
		code   string
		column int32
	}{
		{name: "unterminated text", input: `x = "abc`, code: exc.CodeUnterminatedText, column: 5},
		{name: "text across lines", input: "'a\nb'", code: exc.CodeUnterminatedText, column: 1},
		{name: "trailing dot", input: "1.", code: exc.CodeInvalidNumber, column: 1},
		{name: "letter suffix", input: "12ab", code: exc.CodeInvalidNumber, column: 1},
		{name: "stray character", input: "a @ b", code: exc.CodeUnexpectedCharacter, column: 3},
		{name: "lone bang", input: "!x", code: exc.CodeUnexpectedCharacter, column: 1},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, rep := lexString(t, testCase.input)
			e := exc.FirstFatal(rep)
			require.NotNil(t, e)
			require.Equal(t, testCase.code, e.Code())
			require.Equal(t, testCase.column, e.Location().Column)
			require.Equal(t, "/test.wd", e.Location().URI)
			require.True(t, exc.IsSyntax(e))
		})
	}
}

func TestLexerFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rep := exc.NewReporter(nil)
	f, err := NewLexerWend(rep).Lex(ctx, fs.NewFileString("/main.wd", "print(1)\n", syntax.FileKindWend))
	require.NoError(t, err)
	require.Equal(t, "/main.wd", f.Path(ctx))
	it, err := f.Tokens(ctx)
	require.NoError(t, err)
	tokens, err := iter.Collect(ctx, it)
	require.NoError(t, err)
	require.Len(t, tokens, 5)
	require.Equal(t, syntax.TokenTypeNewline, tokens[4].Type)
}
