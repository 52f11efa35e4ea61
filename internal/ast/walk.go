package ast

// Walk calls f for n and then for every node below it, in source order.
func Walk(n Node, f func(Node)) {
	if n == nil {
		return
	}
	f(n)
	switch n := n.(type) {
	case *Program:
		walkStatements(n.Body, f)
	case *WhileStatement:
		walkExpression(n.Test, f)
		walkStatements(n.Body, f)
	case *IfStatement:
		for offset, test := range n.Tests {
			walkExpression(test, f)
			walkStatements(n.Consequents[offset], f)
		}
		walkStatements(n.Alternate, f)
	case *FromStatement:
		Walk(n.LoopVar, f)
		walkExpression(n.Start, f)
		walkExpression(n.End, f)
		walkStatements(n.Increments, f)
		walkStatements(n.Body, f)
	case *ReturnStatement:
		walkExpression(n.Value, f)
	case *FunctionDeclaration:
		Walk(n.Name, f)
		for _, param := range n.Params {
			Walk(param, f)
		}
		walkStatements(n.Body, f)
	case *VariableDeclaration:
		Walk(n.Name, f)
		walkExpression(n.Init, f)
	case *AssignmentStatement:
		walkExpression(n.Target, f)
		walkExpression(n.Value, f)
	case *ExpressionStatement:
		walkExpression(n.Value, f)
	case *BinaryExpression:
		walkExpression(n.Left, f)
		walkExpression(n.Right, f)
	case *UnaryExpression:
		walkExpression(n.Operand, f)
	case *TernaryExpression:
		walkExpression(n.Test, f)
		walkExpression(n.IfTrue, f)
		walkExpression(n.IfFalse, f)
	case *ListExpression:
		walkExpressions(n.Elements, f)
	case *SetExpression:
		walkExpressions(n.Elements, f)
	case *DictionaryExpression:
		for _, entry := range n.Entries {
			Walk(entry, f)
		}
	case *KeyValueExpression:
		walkExpression(n.Key, f)
		walkExpression(n.Value, f)
	case *Call:
		walkExpression(n.Callee, f)
		for _, arg := range n.Args {
			Walk(arg, f)
		}
	case *Argument:
		walkExpression(n.Value, f)
	case *SubscriptedExpression:
		walkExpression(n.Base, f)
		walkExpression(n.Index, f)
	case *Parameter:
		Walk(n.Name, f)
		walkExpression(n.Default, f)
	}
}

func walkStatements(body []Statement, f func(Node)) {
	for _, s := range body {
		Walk(s, f)
	}
}

func walkExpressions(exprs []Expression, f func(Node)) {
	for _, e := range exprs {
		walkExpression(e, f)
	}
}

// walkExpression guards against a nil interface holding no node, which Walk
// cannot see through once the value is converted to Node.
func walkExpression(e Expression, f func(Node)) {
	if e == nil {
		return
	}
	Walk(e, f)
}
