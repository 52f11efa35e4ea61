package grammar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

// words turns a space separated list into tokens. NL is a newline, INDENT and
// DEDENT are synthetic block markers and a trailing EOF token is not added.
func words(text string) []*syntax.Token {
	var out []*syntax.Token
	col := int32(1)
	for _, w := range strings.Fields(text) {
		at := syntax.Location{Line: 1, Column: col, Offset: int64(col - 1)}
		end := syntax.Location{Line: 1, Column: col + int32(len(w)), Offset: int64(col - 1 + int32(len(w)))}
		t := &syntax.Token{Span: syntax.Span{Start: at, End: end}, Value: w}
		switch {
		case w == "NL":
			t.Type, t.Value = syntax.TokenTypeNewline, "\n"
		case w == "EOF":
			t.Type, t.Value = syntax.TokenTypeEOF, ""
		case w == "INDENT":
			t.Type, t.Value, t.Synthetic = syntax.TokenTypeCurlyOpen, "{", true
		case w == "DEDENT":
			t.Type, t.Value, t.Synthetic = syntax.TokenTypeCurlyClose, "}", true
		case w[0] == '"':
			t.Type = syntax.TokenTypeText
		case w[0] >= '0' && w[0] <= '9':
			t.Type = syntax.TokenTypeNumber
		case w[0] == '_' || (w[0] >= 'a' && w[0] <= 'z') || (w[0] >= 'A' && w[0] <= 'Z'):
			t.Type = syntax.TokenTypeIdentifier
		}
		out = append(out, t)
		col = col + int32(len(w)) + 1
	}
	return out
}

func find(n *Node, rule string) *Node {
	if n.Rule == rule {
		return n
	}
	for _, child := range n.Children {
		if found := find(child, rule); found != nil {
			return found
		}
	}
	return nil
}

func TestDefault(t *testing.T) {
	t.Parallel()

	g, err := Default()
	require.NoError(t, err)
	again, err := Default()
	require.NoError(t, err)
	require.Same(t, g, again)
	require.Equal(t, "wend", g.Name())
	require.Equal(t, "program", g.Start())
	require.True(t, g.IsKeyword("while"))
	require.True(t, g.IsKeyword("true"))
	require.False(t, g.IsKeyword("truex"))
	require.Contains(t, g.Rules(), "expression")
	require.Equal(t, "and", g.Keywords()[0])

	loaded, err := Load(Source())
	require.NoError(t, err)
	require.Equal(t, g.Rules(), loaded.Rules())
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		input  string
		reason string
	}{
		{
			name:   "undefined rule",
			input:  "start: a\nrules:\n  - name: a\n    expr: b",
			reason: `undefined rule "b"`,
		},
		{
			name:   "duplicate rule",
			input:  "start: a\nrules:\n  - name: a\n    expr: \"'x'\"\n  - name: a\n    expr: \"'y'\"",
			reason: "more than once",
		},
		{
			name:   "missing start",
			input:  "start: z\nrules:\n  - name: a\n    expr: \"'x'\"",
			reason: `start rule "z"`,
		},
		{
			name:   "unbalanced group",
			input:  "start: a\nrules:\n  - name: a\n    expr: \"('x'\"",
			reason: "expecting",
		},
		{
			name:   "unterminated literal",
			input:  "start: a\nrules:\n  - name: a\n    expr: \"'x\"",
			reason: "unterminated literal",
		},
		{
			name:   "empty alternative",
			input:  "start: a\nrules:\n  - name: a\n    expr: \"'x' /\"",
			reason: "empty expression",
		},
		{
			name:   "not yaml",
			input:  "rules: [",
			reason: "",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load([]byte(testCase.input))
			require.Error(t, err)
			require.True(t, exc.HasCode(err, exc.CodeInvalidGrammar), err.Error())
			require.Contains(t, err.Error(), testCase.reason)
		})
	}
}

func TestRuleText(t *testing.T) {
	t.Parallel()

	g, err := Load([]byte(`
start: a
rules:
  - name: a
    expr: "x:'a'* / ('b' c)+ !EOF"
  - name: c
    expr: "&NAME KEYWORD?"
`))
	require.NoError(t, err)
	text, ok := g.Rule("a")
	require.True(t, ok)
	require.Equal(t, "x:'a'* / ('b' c)+ !EOF", text)
	text, ok = g.Rule("c")
	require.True(t, ok)
	require.Equal(t, "&NAME KEYWORD?", text)
	_, ok = g.Rule("missing")
	require.False(t, ok)
}

func TestMatchPrecedence(t *testing.T) {
	t.Parallel()

	g, err := Default()
	require.NoError(t, err)
	tree, err := g.MatchRule("/test.wd", "expression", words("1 + 2 * 3"))
	require.NoError(t, err)

	additive := find(tree, "additive")
	require.NotNil(t, additive)
	ops := additive.Capture("ops")
	require.Len(t, ops, 1)
	require.Equal(t, "+", ops[0].Token.Value)
	require.Len(t, additive.Capture("first"), 1)

	rest := additive.Capture("rest")
	require.Len(t, rest, 1)
	require.Equal(t, "multiplicative", rest[0].Node.Rule)
	inner := rest[0].Node.Capture("ops")
	require.Len(t, inner, 1)
	require.Equal(t, "*", inner[0].Token.Value)
	require.Equal(t, int32(5), rest[0].Node.Span.Start.Column)
	require.Equal(t, int32(10), rest[0].Node.Span.End.Column)
}

func TestMatchKeywordBoundary(t *testing.T) {
	t.Parallel()

	g, err := Default()
	require.NoError(t, err)

	testCases := []struct {
		input string
		rule  string
	}{
		{input: "true", rule: "boolean_literal"},
		{input: "false", rule: "boolean_literal"},
		{input: "truex", rule: "identifier"},
		{input: "whilst", rule: "identifier"},
		{input: "42", rule: "numeric_literal"},
		{input: `"hi"`, rule: "string_literal"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			tree, err := g.MatchRule("/test.wd", "primary", words(testCase.input))
			require.NoError(t, err)
			require.Len(t, tree.Children, 1)
			require.Equal(t, testCase.rule, tree.Children[0].Rule)
		})
	}
}

func TestMatchProgram(t *testing.T) {
	t.Parallel()

	g, err := Default()
	require.NoError(t, err)
	tree, err := g.Match("/test.wd", words("while x INDENT y = y - 1 NL DEDENT print ( y ) EOF"))
	require.NoError(t, err)
	require.Equal(t, "program", tree.Rule)
	body := tree.Capture("body")
	require.Len(t, body, 2)
	require.NotNil(t, find(body[0].Node, "while_statement"))
	require.NotNil(t, find(body[1].Node, "call_suffix"))

	var out bytes.Buffer
	require.NoError(t, Dump(&out, tree))
	require.True(t, strings.HasPrefix(out.String(), "program [1:1-"))
	require.Contains(t, out.String(), "body: statement")
}

func TestMatchErrors(t *testing.T) {
	t.Parallel()

	g, err := Default()
	require.NoError(t, err)

	testCases := []struct {
		name     string
		input    string
		code     string
		message  string
		column   int32
		contains []string
	}{
		{
			name:    "missing value",
			input:   "x = EOF",
			code:    exc.CodeUnexpectedEOF,
			message: "unexpected end of input (expected expression)",
			column:  5,
		},
		{
			name:     "two expressions",
			input:    "x y EOF",
			code:     exc.CodeUnexpectedToken,
			message:  `unexpected "y" (expected one of: `,
			column:   3,
			contains: []string{"end of statement", "'('", "'='"},
		},
		{
			name:    "unexpected indent",
			input:   "x INDENT y DEDENT EOF",
			code:    exc.CodeUnexpectedToken,
			message: "unexpected indent (expected one of: ",
			column:  3,
		},
		{
			name:    "missing block",
			input:   "while x NL y EOF",
			code:    exc.CodeUnexpectedToken,
			message: "unexpected newline (expected one of: ",
			column:  9,
		},
		{
			name:    "bad declaration name",
			input:   "num while = 1 EOF",
			code:    exc.CodeUnexpectedToken,
			message: `unexpected "while" (expected identifier)`,
			column:  5,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := g.Match("/test.wd", words(testCase.input))
			require.Error(t, err)
			require.True(t, exc.IsSyntax(err))
			require.True(t, exc.HasCode(err, testCase.code), err.Error())
			var e exc.Exception
			require.ErrorAs(t, err, &e)
			require.True(t, strings.HasPrefix(e.Message(), testCase.message), e.Message())
			require.Equal(t, "/test.wd", e.Location().URI)
			require.Equal(t, testCase.column, e.Location().Column)
			for _, c := range testCase.contains {
				require.Contains(t, e.Message(), c)
			}
		})
	}
}
