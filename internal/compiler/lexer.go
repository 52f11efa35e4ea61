// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/iter"
	"gopkg.wendlang.org/wendc/internal/optional"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

const (
	lexerWendLookahead = 2
	byteOrderMark      = 0xFEFF
)

// LexerWend implements a tokenizer for Wend source text. It reports every
// token, including whitespace, comments, and line breaks. Layout is decided
// later by the preprocessor.
type LexerWend struct {
	reporter exc.Reporter
}

func NewLexerWend(reporter exc.Reporter) *LexerWend {
	return &LexerWend{reporter: reporter}
}

func (self *LexerWend) Lex(ctx context.Context, f syntax.File) (syntax.LexerFile, error) {
	return &lexerFileWend{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileWend struct {
	syntax.File
	reporter exc.Reporter
}

func (self *lexerFileWend) Tokens(ctx context.Context) (syntax.Iterator[*syntax.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	return newLexerTokens(self.File.Path(ctx), iter.NewUnicodeFileBody(ctx, b), self.reporter), nil
}

func newLexerTokens(uri string, points syntax.Iterator[syntax.CodePoint], reporter exc.Reporter) *lexerFileWendTokens {
	return &lexerFileWendTokens{
		uri:      uri,
		body:     iter.NewLookahead(points, lexerWendLookahead),
		reporter: reporter,
		loc:      syntax.Location{Line: 1, Column: 1, Offset: 0},
	}
}

type lexerFileWendTokens struct {
	uri      string
	body     syntax.Lookahead[syntax.CodePoint]
	reporter exc.Reporter
	// loc is the position of the next unread code point.
	loc  syntax.Location
	done bool
}

func (self *lexerFileWendTokens) Next(ctx context.Context) optional.Optional[*syntax.Token] {
	if self.done {
		return optional.None[*syntax.Token]()
	}
	start := self.loc
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		switch {
		case r == byteOrderMark && start.Offset == 0:
			start = self.loc
			continue
		case r == 0x00:
			return self.stop() // Treat null byte as EOF as it's not allowed.
		case r == ' ' || r == '\t':
			return self.readWhile(ctx, start, r, syntax.TokenTypeWhitespace, isBlank)
		case r == '\n':
			return self.newLineToken(start, "\n")
		case r == '\r':
			if n := self.peek(ctx); n.IsPresent() && n.Value() == '\n' {
				_ = self.next(ctx)
				return self.newLineToken(start, "\r\n")
			}
			return self.newLineToken(start, "\r")
		case r == '#':
			return self.readWhile(ctx, start, r, syntax.TokenTypeComment, func(r rune) bool {
				return r != '\n' && r != '\r'
			})
		case r == '"' || r == '\'':
			return self.readText(ctx, start, r)
		case isDigit(r):
			return self.readNumber(ctx, start, string(r))
		case r == '.':
			if n := self.peek(ctx); n.IsPresent() && isDigit(rune(n.Value())) {
				return self.readNumber(ctx, start, ".")
			}
			return self.fail(start, exc.CodeUnexpectedCharacter, "unexpected character '.'")
		case unicode.IsLetter(r) || r == '_':
			return self.readWhile(ctx, start, r, syntax.TokenTypeIdentifier, isIdentifierPart)
		}
		if kind, value, ok := self.readOperator(ctx, r); ok {
			return optional.Some(self.token(start, kind, value))
		}
		return self.fail(start, exc.CodeUnexpectedCharacter, fmt.Sprintf("unexpected character %q", r))
	}
	return self.stop()
}

var singleOperators = map[rune]syntax.TokenType{
	'(': syntax.TokenTypeParenOpen,
	')': syntax.TokenTypeParenClose,
	'[': syntax.TokenTypeSquareOpen,
	']': syntax.TokenTypeSquareClose,
	'{': syntax.TokenTypeCurlyOpen,
	'}': syntax.TokenTypeCurlyClose,
	',': syntax.TokenTypeComma,
	':': syntax.TokenTypeColon,
	';': syntax.TokenTypeSemicolon,
	'?': syntax.TokenTypeQuestion,
	'+': syntax.TokenTypePlus,
	'-': syntax.TokenTypeMinus,
	'*': syntax.TokenTypeStar,
	'/': syntax.TokenTypeSlash,
	'%': syntax.TokenTypePercent,
}

// readOperator consumes the rest of an operator that starts with r. The
// two character forms all end in '='.
func (self *lexerFileWendTokens) readOperator(ctx context.Context, r rune) (syntax.TokenType, string, bool) {
	if kind, ok := singleOperators[r]; ok {
		return kind, string(r), true
	}
	var single, double syntax.TokenType
	switch r {
	case '=':
		single, double = syntax.TokenTypeEqual, syntax.TokenTypeComparison
	case '<':
		single, double = syntax.TokenTypeAngleOpen, syntax.TokenTypeLesserEqual
	case '>':
		single, double = syntax.TokenTypeAngleClose, syntax.TokenTypeGreaterEqual
	case '!':
		single, double = syntax.TokenTypeUnknown, syntax.TokenTypeNotEqual
	default:
		return syntax.TokenTypeUnknown, "", false
	}
	if n := self.peek(ctx); n.IsPresent() && n.Value() == '=' {
		_ = self.next(ctx)
		return double, string(r) + "=", true
	}
	if single == syntax.TokenTypeUnknown {
		return single, "", false
	}
	return single, string(r), true
}

func (self *lexerFileWendTokens) readWhile(ctx context.Context, start syntax.Location, first rune, kind syntax.TokenType, keep func(rune) bool) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_, _ = builder.WriteRune(first)
	for n := self.peek(ctx); n.IsPresent() && keep(rune(n.Value())); n = self.peek(ctx) {
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
	return optional.Some(self.token(start, kind, builder.String()))
}

// readNumber reads digits with an optional fraction. The prefix is either
// the first digit or a leading '.', in which case the fraction is required.
func (self *lexerFileWendTokens) readNumber(ctx context.Context, start syntax.Location, prefix string) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	self.readDigits(ctx, &builder)
	if prefix != "." {
		if n := self.peek(ctx); n.IsPresent() && n.Value() == '.' {
			_ = self.next(ctx)
			_, _ = builder.WriteRune('.')
			if nn := self.peek(ctx); !nn.IsPresent() || !isDigit(rune(nn.Value())) {
				return self.fail(start, exc.CodeInvalidNumber, fmt.Sprintf("invalid number literal %q: expected digits after '.'", builder.String()))
			}
			self.readDigits(ctx, &builder)
		}
	}
	if n := self.peek(ctx); n.IsPresent() && (isIdentifierPart(rune(n.Value())) || n.Value() == '.') {
		_, _ = builder.WriteRune(rune(n.Value()))
		return self.fail(start, exc.CodeInvalidNumber, fmt.Sprintf("invalid number literal %q", builder.String()))
	}
	return optional.Some(self.token(start, syntax.TokenTypeNumber, builder.String()))
}

func (self *lexerFileWendTokens) readDigits(ctx context.Context, builder *strings.Builder) {
	for n := self.peek(ctx); n.IsPresent() && isDigit(rune(n.Value())); n = self.peek(ctx) {
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
}

// readText reads a quoted literal. The token keeps the quotes and any escape
// sequences exactly as written.
func (self *lexerFileWendTokens) readText(ctx context.Context, start syntax.Location, quote rune) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_, _ = builder.WriteRune(quote)
	for {
		n := self.peek(ctx)
		if !n.IsPresent() || n.Value() == '\n' || n.Value() == '\r' {
			return self.fail(start, exc.CodeUnterminatedText, "unterminated string literal")
		}
		_ = self.next(ctx)
		r := rune(n.Value())
		_, _ = builder.WriteRune(r)
		switch r {
		case quote:
			return optional.Some(self.token(start, syntax.TokenTypeText, builder.String()))
		case '\\':
			nn := self.peek(ctx)
			if !nn.IsPresent() || nn.Value() == '\n' || nn.Value() == '\r' {
				return self.fail(start, exc.CodeUnterminatedText, "unterminated string literal")
			}
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(nn.Value()))
		}
	}
}

func (self *lexerFileWendTokens) peek(ctx context.Context) optional.Optional[syntax.CodePoint] {
	return self.body.Lookahead(ctx, 1)
}

func (self *lexerFileWendTokens) next(ctx context.Context) optional.Optional[syntax.CodePoint] {
	n := self.body.Next(ctx)
	if n.IsPresent() {
		self.loc.Column = self.loc.Column + 1
		self.loc.Offset = self.loc.Offset + int64(utf8.RuneLen(rune(n.Value())))
	}
	return n
}

func (self *lexerFileWendTokens) newLineToken(start syntax.Location, v string) optional.Optional[*syntax.Token] {
	t := self.token(start, syntax.TokenTypeNewline, v)
	self.loc.Line = self.loc.Line + 1
	self.loc.Column = 1
	return optional.Some(t)
}

func (self *lexerFileWendTokens) token(start syntax.Location, kind syntax.TokenType, value string) *syntax.Token {
	return &syntax.Token{
		Span:  syntax.Span{Start: start, End: self.loc},
		Type:  kind,
		Value: value,
	}
}

func (self *lexerFileWendTokens) fail(loc syntax.Location, code string, message string) optional.Optional[*syntax.Token] {
	_ = self.reporter.Report(exc.New(exc.Location{URI: self.uri, Location: loc}, code, message))
	return self.stop()
}

func (self *lexerFileWendTokens) stop() optional.Optional[*syntax.Token] {
	self.done = true
	return optional.None[*syntax.Token]()
}

func (self *lexerFileWendTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
