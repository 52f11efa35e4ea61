package ast

import (
	"google.golang.org/protobuf/types/known/structpb"

	"gopkg.wendlang.org/wendc/internal/types"
)

// Encode renders a tree as a protobuf Struct. Every node becomes an object
// with a "kind" field naming its Go type, a "span" field and one field per
// child. The encoding is meant for tools that inspect the tree out of
// process.
func Encode(n Node) (*structpb.Struct, error) {
	return structpb.NewStruct(encode(n))
}

func encode(n Node) map[string]any {
	out := map[string]any{
		"span": map[string]any{
			"start": n.Span().Start.String(),
			"end":   n.Span().End.String(),
		},
	}
	switch n := n.(type) {
	case *Program:
		out["kind"] = "Program"
		out["body"] = encodeStatements(n.Body)
	case *WhileStatement:
		out["kind"] = "WhileStatement"
		out["test"] = encodeExpression(n.Test)
		out["body"] = encodeStatements(n.Body)
	case *IfStatement:
		out["kind"] = "IfStatement"
		out["tests"] = encodeExpressions(n.Tests)
		consequents := make([]any, 0, len(n.Consequents))
		for _, c := range n.Consequents {
			consequents = append(consequents, encodeStatements(c))
		}
		out["consequents"] = consequents
		if n.Alternate != nil {
			out["alternate"] = encodeStatements(n.Alternate)
		}
	case *FromStatement:
		out["kind"] = "FromStatement"
		out["loopVar"] = encode(n.LoopVar)
		out["start"] = encodeExpression(n.Start)
		out["end"] = encodeExpression(n.End)
		out["increments"] = encodeStatements(n.Increments)
		out["body"] = encodeStatements(n.Body)
	case *BreakStatement:
		out["kind"] = "BreakStatement"
	case *ContinueStatement:
		out["kind"] = "ContinueStatement"
	case *ReturnStatement:
		out["kind"] = "ReturnStatement"
		if n.Value != nil {
			out["value"] = encodeExpression(n.Value)
		}
	case *FunctionDeclaration:
		out["kind"] = "FunctionDeclaration"
		if n.ReturnType != nil {
			out["returnType"] = encodeType(n.ReturnType)
		}
		out["name"] = encode(n.Name)
		params := make([]any, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, encode(p))
		}
		out["params"] = params
		out["body"] = encodeStatements(n.Body)
	case *VariableDeclaration:
		out["kind"] = "VariableDeclaration"
		out["type"] = encodeType(n.Type)
		out["name"] = encode(n.Name)
		out["init"] = encodeExpression(n.Init)
	case *AssignmentStatement:
		out["kind"] = "AssignmentStatement"
		out["target"] = encodeExpression(n.Target)
		out["value"] = encodeExpression(n.Value)
	case *ExpressionStatement:
		out["kind"] = "ExpressionStatement"
		out["value"] = encodeExpression(n.Value)
	case *BinaryExpression:
		out["kind"] = "BinaryExpression"
		out["op"] = n.Op.String()
		out["left"] = encodeExpression(n.Left)
		out["right"] = encodeExpression(n.Right)
	case *UnaryExpression:
		out["kind"] = "UnaryExpression"
		out["op"] = n.Op.String()
		out["operand"] = encodeExpression(n.Operand)
	case *TernaryExpression:
		out["kind"] = "TernaryExpression"
		out["test"] = encodeExpression(n.Test)
		out["ifTrue"] = encodeExpression(n.IfTrue)
		out["ifFalse"] = encodeExpression(n.IfFalse)
	case *ListExpression:
		out["kind"] = "ListExpression"
		out["elements"] = encodeExpressions(n.Elements)
	case *SetExpression:
		out["kind"] = "SetExpression"
		out["elements"] = encodeExpressions(n.Elements)
	case *DictionaryExpression:
		out["kind"] = "DictionaryExpression"
		entries := make([]any, 0, len(n.Entries))
		for _, e := range n.Entries {
			entries = append(entries, encode(e))
		}
		out["entries"] = entries
	case *KeyValueExpression:
		out["kind"] = "KeyValueExpression"
		out["key"] = encodeExpression(n.Key)
		out["value"] = encodeExpression(n.Value)
	case *Call:
		out["kind"] = "Call"
		out["callee"] = encodeExpression(n.Callee)
		arguments := make([]any, 0, len(n.Args))
		for _, a := range n.Args {
			arguments = append(arguments, encode(a))
		}
		out["args"] = arguments
	case *Argument:
		out["kind"] = "Argument"
		out["value"] = encodeExpression(n.Value)
	case *SubscriptedExpression:
		out["kind"] = "SubscriptedExpression"
		out["base"] = encodeExpression(n.Base)
		out["index"] = encodeExpression(n.Index)
	case *Identifier:
		out["kind"] = "Identifier"
		out["name"] = n.Name
	case *IdDecl:
		out["kind"] = "IdDecl"
		out["name"] = n.Name
	case *Parameter:
		out["kind"] = "Parameter"
		out["type"] = encodeType(n.Type)
		out["name"] = encode(n.Name)
		if n.Default != nil {
			out["default"] = encodeExpression(n.Default)
		}
	case *BooleanLiteral:
		out["kind"] = "BooleanLiteral"
		out["value"] = n.Value
	case *NumericLiteral:
		out["kind"] = "NumericLiteral"
		out["value"] = n.Value
	case *StringLiteral:
		out["kind"] = "StringLiteral"
		out["raw"] = n.Raw
	}
	return out
}

func encodeStatements(body []Statement) []any {
	out := make([]any, 0, len(body))
	for _, s := range body {
		out = append(out, encode(s))
	}
	return out
}

func encodeExpressions(exprs []Expression) []any {
	out := make([]any, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, encodeExpression(e))
	}
	return out
}

func encodeExpression(e Expression) any {
	if e == nil {
		return nil
	}
	return encode(e)
}

func encodeType(t types.Type) any {
	if t == nil {
		return nil
	}
	return t.String()
}
