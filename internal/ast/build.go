package ast

import (
	"fmt"
	"strconv"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/grammar"
	"gopkg.wendlang.org/wendc/internal/syntax"
	"gopkg.wendlang.org/wendc/internal/types"
)

// Build converts a parse tree matched by the program rule into a Program.
// It is purely structural: names are not resolved and nothing is type
// checked.
func Build(tree *grammar.Node) (*Program, error) {
	b := &builder{built: make(map[*grammar.Node]any)}
	v, err := b.build(tree)
	if err != nil {
		return nil, err
	}
	program, ok := v.(*Program)
	if !ok {
		return nil, exc.Newf(exc.Location{Location: tree.Span.Start}, exc.CodeUnknownFatal, "rule %q did not produce a program", tree.Rule)
	}
	return program, nil
}

// args carries the already built captures of one parse tree node. Token
// captures are passed through as *syntax.Token.
type args struct {
	node   *grammar.Node
	values map[string][]any
}

type builderFunc func(a *args) (any, error)

// builders maps a rule name to its constructor. A rule that is not listed
// is transparent and yields its single built child.
var builders = map[string]builderFunc{
	"program":              buildProgram,
	"block":                buildBlock,
	"while_statement":      buildWhile,
	"if_statement":         buildIf,
	"from_statement":       buildFrom,
	"function_declaration": buildFunction,
	"parameter":            buildParameter,
	"variable_declaration": buildVariable,
	"id_decl":              buildIdDecl,
	"break_statement":      buildBreak,
	"continue_statement":   buildContinue,
	"return_statement":     buildReturn,
	"assignment_statement": buildAssignment,
	"expression_statement": buildExpressionStatement,
	"num_type":             constant(types.Num),
	"string_type":          constant(types.String),
	"bool_type":            constant(types.Boolean),
	"list_type":            buildListType,
	"set_type":             buildSetType,
	"dict_type":            buildDictType,
	"ternary":              buildTernary,
	"logical_or":           buildBinary,
	"logical_and":          buildBinary,
	"comparison":           buildBinary,
	"additive":             buildBinary,
	"multiplicative":       buildBinary,
	"unary":                buildUnary,
	"postfix":              buildPostfix,
	"call_suffix":          buildCallSuffix,
	"argument":             buildArgument,
	"subscript_suffix":     buildSubscriptSuffix,
	"parenthesized":        buildParenthesized,
	"list_literal":         buildList,
	"set_literal":          buildSet,
	"dict_literal":         buildDict,
	"key_value":            buildKeyValue,
	"boolean_literal":      buildBoolean,
	"numeric_literal":      buildNumber,
	"string_literal":       buildString,
	"identifier":           buildIdentifier,
}

type builder struct {
	built map[*grammar.Node]any
}

func (self *builder) build(n *grammar.Node) (any, error) {
	if v, ok := self.built[n]; ok {
		return v, nil
	}
	fn, ok := builders[n.Rule]
	if !ok {
		v, err := self.transparent(n)
		if err != nil {
			return nil, err
		}
		self.built[n] = v
		return v, nil
	}
	a := &args{node: n, values: make(map[string][]any, len(n.Captures))}
	for label, matches := range n.Captures {
		for _, m := range matches {
			if m.Node == nil {
				a.values[label] = append(a.values[label], m.Token)
				continue
			}
			v, err := self.build(m.Node)
			if err != nil {
				return nil, err
			}
			a.values[label] = append(a.values[label], v)
		}
	}
	v, err := fn(a)
	if err != nil {
		return nil, err
	}
	self.built[n] = v
	return v, nil
}

func (self *builder) transparent(n *grammar.Node) (any, error) {
	var out any
	for _, child := range n.Children {
		v, err := self.build(child)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		if out != nil {
			return nil, internal(n, "rule %q yields more than one value", n.Rule)
		}
		out = v
	}
	return out, nil
}

func internal(n *grammar.Node, format string, v ...any) error {
	return exc.Newf(exc.Location{Location: n.Span.Start}, exc.CodeUnknownFatal, format, v...)
}

func one[T any](a *args, label string) (T, error) {
	var zero T
	values := a.values[label]
	if len(values) != 1 {
		return zero, internal(a.node, "rule %q: expected one %q, found %d", a.node.Rule, label, len(values))
	}
	return as[T](a, label, values[0])
}

// opt returns the zero value when label did not match.
func opt[T any](a *args, label string) (T, error) {
	var zero T
	values := a.values[label]
	switch len(values) {
	case 0:
		return zero, nil
	case 1:
		return as[T](a, label, values[0])
	default:
		return zero, internal(a.node, "rule %q: expected at most one %q, found %d", a.node.Rule, label, len(values))
	}
}

func many[T any](a *args, label string) ([]T, error) {
	values := a.values[label]
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		t, err := as[T](a, label, v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func as[T any](a *args, label string, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		return t, internal(a.node, "rule %q: %q is %T, not %T", a.node.Rule, label, v, t)
	}
	return t, nil
}

func has(a *args, label string) bool {
	return len(a.values[label]) > 0
}

func at(n *grammar.Node) base {
	return base{span: n.Span}
}

func atStmt(n *grammar.Node) stmt {
	return stmt{at(n)}
}

func atExp(n *grammar.Node) exp {
	return exp{at(n)}
}

func spanning(start syntax.Span, end syntax.Span) syntax.Span {
	return syntax.Span{Start: start.Start, End: end.End}
}

func constant(t types.Type) builderFunc {
	return func(a *args) (any, error) {
		return t, nil
	}
}

func buildProgram(a *args) (any, error) {
	body, err := many[Statement](a, "body")
	if err != nil {
		return nil, err
	}
	return &Program{base: at(a.node), Body: body}, nil
}

// block is the built value of a block rule. It is unwrapped by the statement
// that owns the block.
type block []Statement

func buildBlock(a *args) (any, error) {
	body, err := many[Statement](a, "body")
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = []Statement{}
	}
	return block(body), nil
}

func buildWhile(a *args) (any, error) {
	test, err := one[Expression](a, "test")
	if err != nil {
		return nil, err
	}
	body, err := one[block](a, "body")
	if err != nil {
		return nil, err
	}
	return &WhileStatement{stmt: atStmt(a.node), Test: test, Body: body}, nil
}

func buildIf(a *args) (any, error) {
	tests, err := many[Expression](a, "tests")
	if err != nil {
		return nil, err
	}
	blocks, err := many[block](a, "consequents")
	if err != nil {
		return nil, err
	}
	if len(tests) != len(blocks) {
		return nil, internal(a.node, "if chain has %d tests and %d blocks", len(tests), len(blocks))
	}
	consequents := make([][]Statement, 0, len(blocks))
	for _, b := range blocks {
		consequents = append(consequents, b)
	}
	alternate, err := opt[block](a, "alternate")
	if err != nil {
		return nil, err
	}
	return &IfStatement{stmt: atStmt(a.node), Tests: tests, Consequents: consequents, Alternate: alternate}, nil
}

func buildFrom(a *args) (any, error) {
	loopVar, err := one[*Identifier](a, "var")
	if err != nil {
		return nil, err
	}
	start, err := one[Expression](a, "start")
	if err != nil {
		return nil, err
	}
	end, err := one[Expression](a, "end")
	if err != nil {
		return nil, err
	}
	increments, err := many[Statement](a, "increments")
	if err != nil {
		return nil, err
	}
	body, err := one[block](a, "body")
	if err != nil {
		return nil, err
	}
	return &FromStatement{
		stmt:       atStmt(a.node),
		LoopVar:    loopVar,
		Start:      start,
		End:        end,
		Increments: increments,
		Body:       body,
	}, nil
}

func buildFunction(a *args) (any, error) {
	returnType, err := opt[types.Type](a, "return_type")
	if err != nil {
		return nil, err
	}
	name, err := one[*Identifier](a, "name")
	if err != nil {
		return nil, err
	}
	params, err := many[*Parameter](a, "params")
	if err != nil {
		return nil, err
	}
	body, err := one[block](a, "body")
	if err != nil {
		return nil, err
	}
	return &FunctionDeclaration{
		stmt:       atStmt(a.node),
		ReturnType: returnType,
		Name:       name,
		Params:     params,
		Body:       body,
	}, nil
}

func buildParameter(a *args) (any, error) {
	t, err := one[types.Type](a, "type")
	if err != nil {
		return nil, err
	}
	name, err := one[*Identifier](a, "name")
	if err != nil {
		return nil, err
	}
	def, err := opt[Expression](a, "default")
	if err != nil {
		return nil, err
	}
	return &Parameter{base: at(a.node), Type: t, Name: name, Default: def}, nil
}

func buildVariable(a *args) (any, error) {
	t, err := one[types.Type](a, "type")
	if err != nil {
		return nil, err
	}
	name, err := one[*IdDecl](a, "name")
	if err != nil {
		return nil, err
	}
	init, err := one[Expression](a, "init")
	if err != nil {
		return nil, err
	}
	return &VariableDeclaration{stmt: atStmt(a.node), Type: t, Name: name, Init: init}, nil
}

func buildIdDecl(a *args) (any, error) {
	name, err := one[*syntax.Token](a, "name")
	if err != nil {
		return nil, err
	}
	return &IdDecl{base: at(a.node), Name: name.Value}, nil
}

func buildBreak(a *args) (any, error) {
	return &BreakStatement{stmt: atStmt(a.node)}, nil
}

func buildContinue(a *args) (any, error) {
	return &ContinueStatement{stmt: atStmt(a.node)}, nil
}

func buildReturn(a *args) (any, error) {
	value, err := opt[Expression](a, "value")
	if err != nil {
		return nil, err
	}
	return &ReturnStatement{stmt: atStmt(a.node), Value: value}, nil
}

func buildAssignment(a *args) (any, error) {
	target, err := one[Expression](a, "target")
	if err != nil {
		return nil, err
	}
	value, err := one[Expression](a, "value")
	if err != nil {
		return nil, err
	}
	return &AssignmentStatement{stmt: atStmt(a.node), Target: target, Value: value}, nil
}

func buildExpressionStatement(a *args) (any, error) {
	value, err := one[Expression](a, "value")
	if err != nil {
		return nil, err
	}
	return &ExpressionStatement{stmt: atStmt(a.node), Value: value}, nil
}

func buildListType(a *args) (any, error) {
	elem, err := one[types.Type](a, "elem")
	if err != nil {
		return nil, err
	}
	return types.NewList(elem), nil
}

func buildSetType(a *args) (any, error) {
	elem, err := one[types.Type](a, "elem")
	if err != nil {
		return nil, err
	}
	return types.NewSet(elem), nil
}

func buildDictType(a *args) (any, error) {
	key, err := one[types.Type](a, "key")
	if err != nil {
		return nil, err
	}
	value, err := one[types.Type](a, "value")
	if err != nil {
		return nil, err
	}
	return types.NewDict(key, value), nil
}

func buildTernary(a *args) (any, error) {
	test, err := one[Expression](a, "test")
	if err != nil {
		return nil, err
	}
	if !has(a, "if_true") {
		return test, nil
	}
	ifTrue, err := one[Expression](a, "if_true")
	if err != nil {
		return nil, err
	}
	ifFalse, err := one[Expression](a, "if_false")
	if err != nil {
		return nil, err
	}
	return &TernaryExpression{exp: atExp(a.node), Test: test, IfTrue: ifTrue, IfFalse: ifFalse}, nil
}

// buildBinary folds one precedence level left to right, so a - b - c is
// (a - b) - c.
func buildBinary(a *args) (any, error) {
	left, err := one[Expression](a, "first")
	if err != nil {
		return nil, err
	}
	ops, err := many[*syntax.Token](a, "ops")
	if err != nil {
		return nil, err
	}
	rest, err := many[Expression](a, "rest")
	if err != nil {
		return nil, err
	}
	if len(ops) != len(rest) {
		return nil, internal(a.node, "rule %q has %d operators and %d operands", a.node.Rule, len(ops), len(rest))
	}
	for offset, op := range ops {
		operator, ok := binaryOperators[op.Value]
		if !ok {
			return nil, internal(a.node, "unknown binary operator %q", op.Value)
		}
		right := rest[offset]
		left = &BinaryExpression{
			exp:   exp{base{span: spanning(left.Span(), right.Span())}},
			Op:    operator,
			Left:  left,
			Right: right,
		}
	}
	return left, nil
}

func buildUnary(a *args) (any, error) {
	operand, err := one[Expression](a, "operand")
	if err != nil {
		return nil, err
	}
	op, err := opt[*syntax.Token](a, "op")
	if err != nil {
		return nil, err
	}
	if op == nil {
		return operand, nil
	}
	operator, ok := unaryOperators[op.Value]
	if !ok {
		return nil, internal(a.node, "unknown unary operator %q", op.Value)
	}
	return &UnaryExpression{exp: atExp(a.node), Op: operator, Operand: operand}, nil
}

type callSuffix struct {
	span syntax.Span
	args []*Argument
}

type subscriptSuffix struct {
	span  syntax.Span
	index Expression
}

// buildPostfix applies calls and subscripts to the primary in source order,
// so f(x)[0] is a subscript of a call.
func buildPostfix(a *args) (any, error) {
	result, err := one[Expression](a, "base")
	if err != nil {
		return nil, err
	}
	suffixes, err := many[any](a, "suffixes")
	if err != nil {
		return nil, err
	}
	for _, suffix := range suffixes {
		switch s := suffix.(type) {
		case *callSuffix:
			result = &Call{
				exp:    exp{base{span: spanning(result.Span(), s.span)}},
				Callee: result,
				Args:   s.args,
			}
		case *subscriptSuffix:
			result = &SubscriptedExpression{
				exp:   exp{base{span: spanning(result.Span(), s.span)}},
				Base:  result,
				Index: s.index,
			}
		default:
			return nil, internal(a.node, "unexpected postfix suffix %T", suffix)
		}
	}
	return result, nil
}

func buildCallSuffix(a *args) (any, error) {
	arguments, err := many[*Argument](a, "args")
	if err != nil {
		return nil, err
	}
	return &callSuffix{span: a.node.Span, args: arguments}, nil
}

func buildArgument(a *args) (any, error) {
	value, err := one[Expression](a, "value")
	if err != nil {
		return nil, err
	}
	return &Argument{base: at(a.node), Value: value}, nil
}

func buildSubscriptSuffix(a *args) (any, error) {
	index, err := one[Expression](a, "index")
	if err != nil {
		return nil, err
	}
	return &subscriptSuffix{span: a.node.Span, index: index}, nil
}

func buildParenthesized(a *args) (any, error) {
	return one[Expression](a, "inner")
}

func buildList(a *args) (any, error) {
	elements, err := many[Expression](a, "elements")
	if err != nil {
		return nil, err
	}
	return &ListExpression{exp: atExp(a.node), Elements: elements}, nil
}

func buildSet(a *args) (any, error) {
	elements, err := many[Expression](a, "elements")
	if err != nil {
		return nil, err
	}
	return &SetExpression{exp: atExp(a.node), Elements: elements}, nil
}

func buildDict(a *args) (any, error) {
	entries, err := many[*KeyValueExpression](a, "entries")
	if err != nil {
		return nil, err
	}
	return &DictionaryExpression{exp: atExp(a.node), Entries: entries}, nil
}

func buildKeyValue(a *args) (any, error) {
	key, err := one[Expression](a, "key")
	if err != nil {
		return nil, err
	}
	value, err := one[Expression](a, "value")
	if err != nil {
		return nil, err
	}
	return &KeyValueExpression{base: at(a.node), Key: key, Value: value}, nil
}

// buildBoolean relies on the grammar having matched the exact text true or
// false; a longer name never reaches this rule.
func buildBoolean(a *args) (any, error) {
	value, err := one[*syntax.Token](a, "value")
	if err != nil {
		return nil, err
	}
	return &BooleanLiteral{exp: atExp(a.node), Value: value.Value == "true"}, nil
}

func buildNumber(a *args) (any, error) {
	value, err := one[*syntax.Token](a, "value")
	if err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(value.Value, 64)
	if err != nil {
		return nil, exc.Wrap(exc.Location{Location: value.Span.Start}, exc.CodeInvalidNumber, fmt.Errorf("invalid number literal %q", value.Value))
	}
	return &NumericLiteral{exp: atExp(a.node), Value: f}, nil
}

func buildString(a *args) (any, error) {
	value, err := one[*syntax.Token](a, "value")
	if err != nil {
		return nil, err
	}
	return &StringLiteral{exp: atExp(a.node), Raw: value.Value}, nil
}

func buildIdentifier(a *args) (any, error) {
	name, err := one[*syntax.Token](a, "name")
	if err != nil {
		return nil, err
	}
	return &Identifier{exp: atExp(a.node), Name: name.Value}, nil
}
