// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package syntax

import "fmt"

type Token struct {
	Span  Span
	Type  TokenType
	Value string
	// Synthetic tokens are produced by layout processing rather than read
	// from the source text.
	Synthetic bool
}

func (t *Token) String() string {
	if t.Synthetic {
		return fmt.Sprintf("%s %s <synthetic %s>", t.Span.Start, t.Type, t.Value)
	}
	return fmt.Sprintf("%s %s %q", t.Span.Start, t.Type, t.Value)
}

type TokenType uint16

const (
	TokenTypeUnknown      TokenType = 0
	TokenTypeIdentifier   TokenType = 1
	TokenTypeNumber       TokenType = 2
	TokenTypeText         TokenType = 3
	TokenTypeComment      TokenType = 4
	TokenTypeCurlyOpen    TokenType = 5
	TokenTypeCurlyClose   TokenType = 6
	TokenTypeSquareOpen   TokenType = 7
	TokenTypeSquareClose  TokenType = 8
	TokenTypeParenOpen    TokenType = 9
	TokenTypeParenClose   TokenType = 10
	TokenTypePlus         TokenType = 11
	TokenTypeMinus        TokenType = 12
	TokenTypeStar         TokenType = 13
	TokenTypeSlash        TokenType = 14
	TokenTypePercent      TokenType = 15
	TokenTypeComma        TokenType = 16
	TokenTypeColon        TokenType = 17
	TokenTypeSemicolon    TokenType = 18
	TokenTypeQuestion     TokenType = 19
	TokenTypeEqual        TokenType = 20
	TokenTypeComparison   TokenType = 21
	TokenTypeNotEqual     TokenType = 22
	TokenTypeAngleOpen    TokenType = 23
	TokenTypeLesserEqual  TokenType = 24
	TokenTypeAngleClose   TokenType = 25
	TokenTypeGreaterEqual TokenType = 26
	TokenTypeWhitespace   TokenType = 27
	TokenTypeNewline      TokenType = 28
	TokenTypeEOF          TokenType = 29
)

var tokenTypeNames = [...]string{
	TokenTypeUnknown:      "Unknown",
	TokenTypeIdentifier:   "Identifier",
	TokenTypeNumber:       "Number",
	TokenTypeText:         "Text",
	TokenTypeComment:      "Comment",
	TokenTypeCurlyOpen:    "CurlyOpen",
	TokenTypeCurlyClose:   "CurlyClose",
	TokenTypeSquareOpen:   "SquareOpen",
	TokenTypeSquareClose:  "SquareClose",
	TokenTypeParenOpen:    "ParenOpen",
	TokenTypeParenClose:   "ParenClose",
	TokenTypePlus:         "Plus",
	TokenTypeMinus:        "Minus",
	TokenTypeStar:         "Star",
	TokenTypeSlash:        "Slash",
	TokenTypePercent:      "Percent",
	TokenTypeComma:        "Comma",
	TokenTypeColon:        "Colon",
	TokenTypeSemicolon:    "Semicolon",
	TokenTypeQuestion:     "Question",
	TokenTypeEqual:        "Equal",
	TokenTypeComparison:   "Comparison",
	TokenTypeNotEqual:     "NotEqual",
	TokenTypeAngleOpen:    "AngleOpen",
	TokenTypeLesserEqual:  "LesserEqual",
	TokenTypeAngleClose:   "AngleClose",
	TokenTypeGreaterEqual: "GreaterEqual",
	TokenTypeWhitespace:   "Whitespace",
	TokenTypeNewline:      "Newline",
	TokenTypeEOF:          "EOF",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", t)
}
