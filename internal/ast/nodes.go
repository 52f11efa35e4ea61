// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package ast defines the abstract syntax tree of a Wend program and builds
// it from a grammar match.
//
// The set of node kinds is closed. Every node implements Node through an
// unexported method, and Visitor has one method per kind, so a type that
// satisfies Visitor handles every kind.
package ast

import (
	"gopkg.wendlang.org/wendc/internal/syntax"
	"gopkg.wendlang.org/wendc/internal/types"
)

type Node interface {
	Span() syntax.Span
	Accept(v Visitor) error
	node()
}

type Statement interface {
	Node
	statement()
}

type Expression interface {
	Node
	expression()
}

type base struct {
	span syntax.Span
}

func (b base) Span() syntax.Span {
	return b.span
}

func (base) node() {}

type stmt struct{ base }

func (stmt) statement() {}

type exp struct{ base }

func (exp) expression() {}

// Program is the root of every tree.
type Program struct {
	base
	Body []Statement
}

type WhileStatement struct {
	stmt
	Test Expression
	Body []Statement
}

// IfStatement holds an if/elif chain. Tests[i] guards Consequents[i].
// Alternate is nil when there is no else arm and non-nil, possibly empty,
// when there is one.
type IfStatement struct {
	stmt
	Tests       []Expression
	Consequents [][]Statement
	Alternate   []Statement
}

// FromStatement is the counted loop
//
//	from i = start to end by step
//
// Increments run after each iteration of Body.
type FromStatement struct {
	stmt
	LoopVar    *Identifier
	Start      Expression
	End        Expression
	Increments []Statement
	Body       []Statement
}

type BreakStatement struct {
	stmt
}

type ContinueStatement struct {
	stmt
}

// ReturnStatement.Value is nil for a bare return.
type ReturnStatement struct {
	stmt
	Value Expression
}

// FunctionDeclaration.ReturnType is nil when no type was written.
type FunctionDeclaration struct {
	stmt
	ReturnType types.Type
	Name       *Identifier
	Params     []*Parameter
	Body       []Statement
}

// Required returns the number of leading parameters without a default.
func (f *FunctionDeclaration) Required() int {
	count := 0
	for _, p := range f.Params {
		if p.Default != nil {
			break
		}
		count = count + 1
	}
	return count
}

type VariableDeclaration struct {
	stmt
	Type types.Type
	Name *IdDecl
	Init Expression
}

type AssignmentStatement struct {
	stmt
	Target Expression
	Value  Expression
}

type ExpressionStatement struct {
	stmt
	Value Expression
}

type BinaryExpression struct {
	exp
	Op    Operator
	Left  Expression
	Right Expression
}

type UnaryExpression struct {
	exp
	Op      Operator
	Operand Expression
}

type TernaryExpression struct {
	exp
	Test    Expression
	IfTrue  Expression
	IfFalse Expression
}

type ListExpression struct {
	exp
	Elements []Expression
}

type SetExpression struct {
	exp
	Elements []Expression
}

type DictionaryExpression struct {
	exp
	Entries []*KeyValueExpression
}

type KeyValueExpression struct {
	base
	Key   Expression
	Value Expression
}

type Call struct {
	exp
	Callee Expression
	Args   []*Argument
}

type Argument struct {
	base
	Value Expression
}

type SubscriptedExpression struct {
	exp
	Base  Expression
	Index Expression
}

type Identifier struct {
	exp
	Name string
}

// IdDecl is the name introduced by a variable declaration.
type IdDecl struct {
	base
	Name string
}

// Parameter.Default is nil for a required parameter.
type Parameter struct {
	base
	Type    types.Type
	Name    *Identifier
	Default Expression
}

type BooleanLiteral struct {
	exp
	Value bool
}

type NumericLiteral struct {
	exp
	Value float64
}

// StringLiteral keeps the source text of the literal, quotes included.
// Escape sequences are not interpreted.
type StringLiteral struct {
	exp
	Raw string
}
