// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package semantic checks a Wend program for scoping, control flow and type
// errors. Analysis stops at the first error.
package semantic

import (
	"fmt"

	"gopkg.wendlang.org/wendc/internal/ast"
	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/types"
)

// Info holds what analysis derived from a program. The program itself is not
// modified.
type Info struct {
	// Types maps every analysed expression to its type. A call of a
	// function without a return type maps to types.Void.
	Types map[ast.Expression]types.Type
	// Uses maps identifiers to the node that declared them. Calls of
	// predeclared functions are not recorded.
	Uses map[*ast.Identifier]ast.Node
}

func (i *Info) TypeOf(e ast.Expression) types.Type {
	return i.Types[e]
}

// Analyze checks program in a new root scope and returns the first error
// found.
func Analyze(program *ast.Program) (*Info, error) {
	a := &analyzer{
		info: &Info{
			Types: make(map[ast.Expression]types.Type),
			Uses:  make(map[*ast.Identifier]ast.Node),
		},
		scope: NewContext(),
	}
	if err := program.Accept(a); err != nil {
		return nil, err
	}
	return a.info, nil
}

type analyzer struct {
	info  *Info
	scope *Context
}

var _ ast.Visitor = (*analyzer)(nil)

func fail(n ast.Node, code string, format string, args ...any) error {
	return exc.Newf(exc.Location{Location: n.Span().Start}, code, format, args...)
}

func mismatch(n ast.Node, format string, args ...any) error {
	return fail(n, exc.CodeTypeMismatch, "type mismatch: "+format, args...)
}

// is reports whether t has kind k. The element type of an empty collection
// passes every check.
func is(t types.Type, k types.Kind) bool {
	return t.Kind() == k || t.Kind() == types.KindUnknown
}

func (self *analyzer) body(scope *Context, body []ast.Statement) error {
	outer := self.scope
	self.scope = scope
	defer func() {
		self.scope = outer
	}()
	for _, s := range body {
		if err := s.Accept(self); err != nil {
			return err
		}
	}
	return nil
}

func (self *analyzer) typeOf(e ast.Expression) (types.Type, error) {
	if err := e.Accept(self); err != nil {
		return nil, err
	}
	return self.info.Types[e], nil
}

// valueOf is typeOf for an expression whose result is used.
func (self *analyzer) valueOf(e ast.Expression) (types.Type, error) {
	t, err := self.typeOf(e)
	if err != nil {
		return nil, err
	}
	if t.Kind() == types.KindVoid {
		return nil, mismatch(e, "expression has no value")
	}
	return t, nil
}

func (self *analyzer) condition(e ast.Expression, what string) error {
	t, err := self.valueOf(e)
	if err != nil {
		return err
	}
	if !is(t, types.KindBoolean) {
		return mismatch(e, "%s condition must be bool, found %s", what, t)
	}
	return nil
}

func (self *analyzer) VisitProgram(n *ast.Program) error {
	for _, s := range n.Body {
		if err := s.Accept(self); err != nil {
			return err
		}
	}
	return nil
}

func (self *analyzer) VisitWhileStatement(n *ast.WhileStatement) error {
	if err := self.condition(n.Test, "while"); err != nil {
		return err
	}
	return self.body(self.scope.Loop(), n.Body)
}

func (self *analyzer) VisitIfStatement(n *ast.IfStatement) error {
	for offset, test := range n.Tests {
		what := "if"
		if offset > 0 {
			what = "elif"
		}
		if err := self.condition(test, what); err != nil {
			return err
		}
		if err := self.body(self.scope.Child(), n.Consequents[offset]); err != nil {
			return err
		}
	}
	if n.Alternate != nil {
		return self.body(self.scope.Child(), n.Alternate)
	}
	return nil
}

func (self *analyzer) VisitFromStatement(n *ast.FromStatement) error {
	for _, bound := range []ast.Expression{n.Start, n.End} {
		t, err := self.valueOf(bound)
		if err != nil {
			return err
		}
		if !is(t, types.KindNum) {
			return mismatch(bound, "loop bounds must be num, found %s", t)
		}
	}
	loop := self.scope.Loop()
	loop.Declare(n.LoopVar.Name, n)
	self.info.Types[n.LoopVar] = types.Num
	if err := self.body(loop, n.Increments); err != nil {
		return err
	}
	return self.body(loop, n.Body)
}

func (self *analyzer) VisitBreakStatement(n *ast.BreakStatement) error {
	if !self.scope.InLoop() {
		return fail(n, exc.CodeBreakOutsideLoop, "break statement outside loop")
	}
	return nil
}

func (self *analyzer) VisitContinueStatement(n *ast.ContinueStatement) error {
	if !self.scope.InLoop() {
		return fail(n, exc.CodeContinueOutsideLoop, "continue statement outside loop")
	}
	return nil
}

func (self *analyzer) VisitReturnStatement(n *ast.ReturnStatement) error {
	expected := self.scope.ReturnType()
	if expected == nil {
		return fail(n, exc.CodeReturnOutsideFunction, "return statement outside function")
	}
	if expected.Kind() == types.KindVoid {
		if n.Value != nil {
			return fail(n.Value, exc.CodeReturnTypeMismatch, "return type mismatch: function declares no return type")
		}
		return nil
	}
	if n.Value == nil {
		return fail(n, exc.CodeReturnTypeMismatch, "return type mismatch: missing value of type %s", expected)
	}
	t, err := self.valueOf(n.Value)
	if err != nil {
		return err
	}
	if !types.AssignableTo(t, expected) {
		return fail(n.Value, exc.CodeReturnTypeMismatch, "return type mismatch: expected %s, found %s", expected, t)
	}
	return nil
}

func (self *analyzer) VisitFunctionDeclaration(n *ast.FunctionDeclaration) error {
	if !self.scope.Declare(n.Name.Name, n) {
		return fail(n.Name, exc.CodeRedeclaration, "redeclaration of name %q", n.Name.Name)
	}
	defaulted := false
	for _, p := range n.Params {
		if p.Default == nil {
			if defaulted {
				return fail(p, exc.CodeRequiredParameterAfterDefault, "parameter %q without a default follows a parameter with one", p.Name.Name)
			}
			continue
		}
		defaulted = true
		t, err := self.valueOf(p.Default)
		if err != nil {
			return err
		}
		if !types.AssignableTo(t, p.Type) {
			return mismatch(p.Default, "default of parameter %q is %s, not %s", p.Name.Name, t, p.Type)
		}
	}
	returnType := n.ReturnType
	if returnType == nil {
		returnType = types.Void
	}
	fn := self.scope.Function(returnType)
	for _, p := range n.Params {
		if !fn.Declare(p.Name.Name, p) {
			return fail(p.Name, exc.CodeRedeclaration, "redeclaration of parameter %q", p.Name.Name)
		}
	}
	return self.body(fn, n.Body)
}

// VisitParameter has nothing to check on its own. Parameters are checked by
// the function that declares them.
func (self *analyzer) VisitParameter(n *ast.Parameter) error {
	return nil
}

func (self *analyzer) VisitVariableDeclaration(n *ast.VariableDeclaration) error {
	if !self.scope.Declare(n.Name.Name, n) {
		return fail(n.Name, exc.CodeRedeclaration, "redeclaration of name %q", n.Name.Name)
	}
	t, err := self.valueOf(n.Init)
	if err != nil {
		return err
	}
	if !types.AssignableTo(t, n.Type) {
		return mismatch(n.Init, "cannot use %s as %s in declaration of %q", t, n.Type, n.Name.Name)
	}
	return nil
}

func (self *analyzer) VisitIdDecl(n *ast.IdDecl) error {
	return nil
}

func (self *analyzer) VisitAssignmentStatement(n *ast.AssignmentStatement) error {
	switch target := n.Target.(type) {
	case *ast.Identifier:
		decl, ok := self.scope.Lookup(target.Name)
		if !ok {
			return self.undeclared(target)
		}
		if _, ok := decl.(*ast.FunctionDeclaration); ok {
			return mismatch(target, "cannot assign to function %q", target.Name)
		}
	case *ast.SubscriptedExpression:
	default:
		return mismatch(n.Target, "cannot assign to this expression")
	}
	want, err := self.valueOf(n.Target)
	if err != nil {
		return err
	}
	got, err := self.valueOf(n.Value)
	if err != nil {
		return err
	}
	if !types.AssignableTo(got, want) {
		return mismatch(n.Value, "cannot assign %s to %s", got, want)
	}
	return nil
}

func (self *analyzer) VisitExpressionStatement(n *ast.ExpressionStatement) error {
	_, err := self.typeOf(n.Value)
	return err
}

func (self *analyzer) undeclared(n *ast.Identifier) error {
	return fail(n, exc.CodeUndeclaredIdentifier, "identifier %q not declared", n.Name)
}

func (self *analyzer) VisitIdentifier(n *ast.Identifier) error {
	decl, ok := self.scope.Lookup(n.Name)
	if !ok {
		if _, ok := builtins[n.Name]; ok {
			return mismatch(n, "function %q used as a value", n.Name)
		}
		return self.undeclared(n)
	}
	self.info.Uses[n] = decl
	switch d := decl.(type) {
	case *ast.VariableDeclaration:
		self.info.Types[n] = d.Type
	case *ast.Parameter:
		self.info.Types[n] = d.Type
	case *ast.FromStatement:
		self.info.Types[n] = types.Num
	case *ast.FunctionDeclaration:
		return mismatch(n, "function %q used as a value", n.Name)
	default:
		return fail(n, exc.CodeUnknownFatal, "%q is bound to unexpected %T", n.Name, decl)
	}
	return nil
}

func (self *analyzer) VisitCall(n *ast.Call) error {
	callee, ok := n.Callee.(*ast.Identifier)
	if !ok {
		return fail(n.Callee, exc.CodeNotCallable, "only named functions can be called")
	}
	var result types.Type
	if decl, ok := self.scope.Lookup(callee.Name); ok {
		fn, ok := decl.(*ast.FunctionDeclaration)
		if !ok {
			return fail(callee, exc.CodeNotCallable, "%q is not a function", callee.Name)
		}
		self.info.Uses[callee] = fn
		if err := self.arguments(n, fn); err != nil {
			return err
		}
		result = fn.ReturnType
		if result == nil {
			result = types.Void
		}
	} else if b, ok := builtins[callee.Name]; ok {
		if len(n.Args) != 1 {
			return fail(n, exc.CodeArityMismatch, "%q takes 1 argument, found %d", b.name, len(n.Args))
		}
		t, err := self.valueOf(n.Args[0].Value)
		if err != nil {
			return err
		}
		if !b.accepts(t) {
			return mismatch(n.Args[0], "argument of %q must be %s, found %s", b.name, b.param, t)
		}
		result = b.result
	} else {
		return self.undeclared(callee)
	}
	self.info.Types[n] = result
	return nil
}

// arguments checks a call of a declared function. Missing trailing arguments
// take their parameter's default.
func (self *analyzer) arguments(n *ast.Call, fn *ast.FunctionDeclaration) error {
	required, total := fn.Required(), len(fn.Params)
	if len(n.Args) < required || len(n.Args) > total {
		want := fmt.Sprint(total)
		if required != total {
			want = fmt.Sprintf("%d to %d", required, total)
		}
		return fail(n, exc.CodeArityMismatch, "%q takes %s arguments, found %d", fn.Name.Name, want, len(n.Args))
	}
	for offset, arg := range n.Args {
		param := fn.Params[offset]
		t, err := self.valueOf(arg.Value)
		if err != nil {
			return err
		}
		if !types.AssignableTo(t, param.Type) {
			return mismatch(arg, "argument %q of %q is %s, not %s", param.Name.Name, fn.Name.Name, t, param.Type)
		}
	}
	return nil
}

func (self *analyzer) VisitArgument(n *ast.Argument) error {
	_, err := self.valueOf(n.Value)
	return err
}

func (self *analyzer) VisitBinaryExpression(n *ast.BinaryExpression) error {
	left, err := self.valueOf(n.Left)
	if err != nil {
		return err
	}
	right, err := self.valueOf(n.Right)
	if err != nil {
		return err
	}
	var result types.Type
	switch {
	case n.Op == ast.OperatorAdd:
		switch {
		case is(left, types.KindNum) && is(right, types.KindNum):
			result = types.Num
		case is(left, types.KindString) && is(right, types.KindString):
			result = types.String
		}
	case n.Op.IsArithmetic():
		if is(left, types.KindNum) && is(right, types.KindNum) {
			result = types.Num
		}
	case n.Op.IsOrdering():
		if (is(left, types.KindNum) && is(right, types.KindNum)) || (is(left, types.KindString) && is(right, types.KindString)) {
			result = types.Boolean
		}
	case n.Op == ast.OperatorEqual || n.Op == ast.OperatorNotEqual:
		if _, ok := types.Unify(left, right); ok {
			result = types.Boolean
		}
	case n.Op == ast.OperatorAnd || n.Op == ast.OperatorOr:
		if is(left, types.KindBoolean) && is(right, types.KindBoolean) {
			result = types.Boolean
		}
	}
	if result == nil {
		return mismatch(n, "operator %s is not defined for %s and %s", n.Op, left, right)
	}
	self.info.Types[n] = result
	return nil
}

func (self *analyzer) VisitUnaryExpression(n *ast.UnaryExpression) error {
	t, err := self.valueOf(n.Operand)
	if err != nil {
		return err
	}
	want := types.Num
	if n.Op == ast.OperatorNot {
		want = types.Boolean
	}
	if !is(t, want.Kind()) {
		return mismatch(n, "operator %s is not defined for %s", n.Op, t)
	}
	self.info.Types[n] = want
	return nil
}

func (self *analyzer) VisitTernaryExpression(n *ast.TernaryExpression) error {
	if err := self.condition(n.Test, "ternary"); err != nil {
		return err
	}
	ifTrue, err := self.valueOf(n.IfTrue)
	if err != nil {
		return err
	}
	ifFalse, err := self.valueOf(n.IfFalse)
	if err != nil {
		return err
	}
	t, ok := types.Unify(ifTrue, ifFalse)
	if !ok {
		return mismatch(n, "ternary branches are %s and %s", ifTrue, ifFalse)
	}
	self.info.Types[n] = t
	return nil
}

func (self *analyzer) elements(exprs []ast.Expression, what string) (types.Type, error) {
	elem := types.Unknown
	for _, e := range exprs {
		t, err := self.valueOf(e)
		if err != nil {
			return nil, err
		}
		unified, ok := types.Unify(elem, t)
		if !ok {
			return nil, mismatch(e, "%s elements must share one type, found %s and %s", what, elem, t)
		}
		elem = unified
	}
	return elem, nil
}

func (self *analyzer) VisitListExpression(n *ast.ListExpression) error {
	elem, err := self.elements(n.Elements, "list")
	if err != nil {
		return err
	}
	self.info.Types[n] = types.NewList(elem)
	return nil
}

func (self *analyzer) VisitSetExpression(n *ast.SetExpression) error {
	elem, err := self.elements(n.Elements, "set")
	if err != nil {
		return err
	}
	self.info.Types[n] = types.NewSet(elem)
	return nil
}

func (self *analyzer) VisitDictionaryExpression(n *ast.DictionaryExpression) error {
	keys := make([]ast.Expression, 0, len(n.Entries))
	values := make([]ast.Expression, 0, len(n.Entries))
	for _, entry := range n.Entries {
		keys = append(keys, entry.Key)
		values = append(values, entry.Value)
	}
	key, err := self.elements(keys, "dict key")
	if err != nil {
		return err
	}
	value, err := self.elements(values, "dict value")
	if err != nil {
		return err
	}
	self.info.Types[n] = types.NewDict(key, value)
	return nil
}

func (self *analyzer) VisitKeyValueExpression(n *ast.KeyValueExpression) error {
	if _, err := self.valueOf(n.Key); err != nil {
		return err
	}
	_, err := self.valueOf(n.Value)
	return err
}

func (self *analyzer) VisitSubscriptedExpression(n *ast.SubscriptedExpression) error {
	base, err := self.valueOf(n.Base)
	if err != nil {
		return err
	}
	index, err := self.valueOf(n.Index)
	if err != nil {
		return err
	}
	var result types.Type
	switch b := base.(type) {
	case *types.List:
		if is(index, types.KindNum) {
			result = b.Elem
		}
	case *types.Dict:
		if types.AssignableTo(index, b.Key) {
			result = b.Value
		}
	default:
		switch base.Kind() {
		case types.KindString:
			if is(index, types.KindNum) {
				result = types.String
			}
		case types.KindUnknown:
			result = types.Unknown
		}
	}
	if result == nil {
		return mismatch(n, "cannot index %s with %s", base, index)
	}
	self.info.Types[n] = result
	return nil
}

func (self *analyzer) VisitBooleanLiteral(n *ast.BooleanLiteral) error {
	self.info.Types[n] = types.Boolean
	return nil
}

func (self *analyzer) VisitNumericLiteral(n *ast.NumericLiteral) error {
	self.info.Types[n] = types.Num
	return nil
}

func (self *analyzer) VisitStringLiteral(n *ast.StringLiteral) error {
	self.info.Types[n] = types.String
	return nil
}
