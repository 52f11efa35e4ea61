package semantic_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.wendlang.org/wendc/internal/ast"
	"gopkg.wendlang.org/wendc/internal/compiler"
	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/semantic"
	"gopkg.wendlang.org/wendc/internal/types"
)

func analyze(t *testing.T, lines ...string) (*ast.Program, *semantic.Info, error) {
	t.Helper()
	program, err := compiler.ParseSyntax(context.Background(), strings.Join(lines, "\n")+"\n")
	require.NoError(t, err)
	info, err := semantic.Analyze(program)
	return program, info, err
}

func TestAnalyzeValid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		lines []string
	}{
		{
			name:  "break inside loop",
			lines: []string{"while true { break }"},
		},
		{
			name:  "shadowing in an inner block",
			lines: []string{"num x = 1", "if true", "    string x = 'inner'", "    print(x)", "num y = x + 1"},
		},
		{
			name:  "counted loop",
			lines: []string{"from i = 0 to 3 by i = i + 1", "    if i == 2", "        continue", "    print(i)"},
		},
		{
			name: "recursion",
			lines: []string{
				"def num fact(num n)",
				"    if n <= 1",
				"        return 1",
				"    return n * fact(n - 1)",
				"print(fact(5))",
			},
		},
		{
			name: "defaults",
			lines: []string{
				"def greet(string who = 'world', num times = 1)",
				"    print('hi ' + who)",
				"greet()",
				"greet('you')",
				"greet('you', 2)",
			},
		},
		{
			name: "empty collections take the declared type",
			lines: []string{
				"list<num> xs = []",
				"xs = [1, 2]",
				"dict<string, list<num>> d = {}",
				"d['a'] = xs",
				"set<string> s = {'a', 'b'}",
				"num n = len(d) + len(s) + abs(-1)",
				"string msg = str(n) + 'abc'[0]",
			},
		},
		{
			name:  "return inside a loop inside a function",
			lines: []string{"def f()", "    while true", "        return"},
		},
		{
			name:  "ternary and logic",
			lines: []string{"bool b = not (1 < 2) or 'a' >= 'b' and [1] != []", "num m = b ? 1 : 2"},
		},
		{
			name:  "functions see outer names",
			lines: []string{"num limit = 10", "def bool over(num v)", "    return v > limit"},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, info, err := analyze(t, testCase.lines...)
			require.NoError(t, err)
			require.NotNil(t, info)
		})
	}
}

func TestAnalyzeErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		lines   []string
		code    string
		line    int32
		column  int32
		message string
	}{
		{
			name:    "break at top level",
			lines:   []string{"break"},
			code:    exc.CodeBreakOutsideLoop,
			line:    1,
			column:  1,
			message: "break statement outside loop",
		},
		{
			name:    "continue at top level",
			lines:   []string{"num x = 1", "continue"},
			code:    exc.CodeContinueOutsideLoop,
			line:    2,
			column:  1,
			message: "continue statement outside loop",
		},
		{
			name:   "loops do not extend into functions",
			lines:  []string{"while true", "    def f()", "        break"},
			code:   exc.CodeBreakOutsideLoop,
			line:   3,
			column: 9,
		},
		{
			name:    "return at top level",
			lines:   []string{"return"},
			code:    exc.CodeReturnOutsideFunction,
			message: "return statement outside function",
			line:    1,
			column:  1,
		},
		{
			name:    "redeclaration in one scope",
			lines:   []string{"num x = 1", "num x = 2"},
			code:    exc.CodeRedeclaration,
			line:    2,
			column:  5,
			message: `redeclaration of name "x"`,
		},
		{
			name:   "function and variable share a name",
			lines:  []string{"num f = 1", "def f()", "    return"},
			code:   exc.CodeRedeclaration,
			line:   2,
			column: 5,
		},
		{
			name:    "duplicate parameter",
			lines:   []string{"def f(num a, string a)", "    return"},
			code:    exc.CodeRedeclaration,
			message: `redeclaration of parameter "a"`,
			line:    1,
			column:  21,
		},
		{
			name:    "required parameter after default",
			lines:   []string{"def f(num a = 1, num b)", "    return"},
			code:    exc.CodeRequiredParameterAfterDefault,
			message: `parameter "b" without a default follows a parameter with one`,
			line:    1,
			column:  18,
		},
		{
			name:    "undeclared",
			lines:   []string{"print(y)"},
			code:    exc.CodeUndeclaredIdentifier,
			message: `identifier "y" not declared`,
			line:    1,
			column:  7,
		},
		{
			name:  "block scope ends with the block",
			lines: []string{"if true", "    num y = 1", "print(y)"},
			code:  exc.CodeUndeclaredIdentifier,
			line:  3,
		},
		{
			name:  "loop variable ends with the loop",
			lines: []string{"from i = 0 to 1", "    print(i)", "print(i)"},
			code:  exc.CodeUndeclaredIdentifier,
			line:  3,
		},
		{
			name:  "assignment to undeclared",
			lines: []string{"x = 1"},
			code:  exc.CodeUndeclaredIdentifier,
		},
		{
			name:    "declared type differs",
			lines:   []string{`num x = "hello"`},
			code:    exc.CodeTypeMismatch,
			message: `type mismatch: cannot use string as num in declaration of "x"`,
			line:    1,
			column:  9,
		},
		{
			name:    "operands differ",
			lines:   []string{"num x = 1 + 'a'"},
			code:    exc.CodeTypeMismatch,
			message: "type mismatch: operator + is not defined for num and string",
		},
		{
			name:  "while needs a bool",
			lines: []string{"while 1", "    break"},
			code:  exc.CodeTypeMismatch,
		},
		{
			name:  "elif needs a bool",
			lines: []string{"if true { } elif 'a' { }"},
			code:  exc.CodeTypeMismatch,
		},
		{
			name:  "mixed list",
			lines: []string{"list<num> xs = [1, 'a']"},
			code:  exc.CodeTypeMismatch,
		},
		{
			name:    "void used as a value",
			lines:   []string{"def f()", "    return", "num y = f()"},
			code:    exc.CodeTypeMismatch,
			message: "type mismatch: expression has no value",
		},
		{
			name:  "builtin used as a value",
			lines: []string{"num n = len"},
			code:  exc.CodeTypeMismatch,
		},
		{
			name:  "assignment to a function",
			lines: []string{"def f()", "    return", "f = 1"},
			code:  exc.CodeTypeMismatch,
		},
		{
			name:  "index with the wrong key",
			lines: []string{"dict<string, num> d = {}", "print(d[1])"},
			code:  exc.CodeTypeMismatch,
		},
		{
			name:  "builtin argument",
			lines: []string{"print(abs('x'))"},
			code:  exc.CodeTypeMismatch,
		},
		{
			name:  "missing return value",
			lines: []string{"def num f()", "    return"},
			code:  exc.CodeReturnTypeMismatch,
		},
		{
			name:  "value from a function without a return type",
			lines: []string{"def f()", "    return 1"},
			code:  exc.CodeReturnTypeMismatch,
		},
		{
			name:    "wrong return type",
			lines:   []string{"def num f()", "    return 'a'"},
			code:    exc.CodeReturnTypeMismatch,
			message: "return type mismatch: expected num, found string",
			line:    2,
			column:  12,
		},
		{
			name:    "too few arguments",
			lines:   []string{"def f(num a, num b = 1)", "    return", "f()"},
			code:    exc.CodeArityMismatch,
			message: `"f" takes 1 to 2 arguments, found 0`,
		},
		{
			name:    "builtin arity",
			lines:   []string{"print(1, 2)"},
			code:    exc.CodeArityMismatch,
			message: `"print" takes 1 argument, found 2`,
		},
		{
			name:    "call of a variable",
			lines:   []string{"num x = 1", "x(1)"},
			code:    exc.CodeNotCallable,
			message: `"x" is not a function`,
		},
		{
			name:    "call of a call",
			lines:   []string{"def num f(num a)", "    return a", "f(1)(2)"},
			code:    exc.CodeNotCallable,
			message: "only named functions can be called",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, info, err := analyze(t, testCase.lines...)
			require.Nil(t, info)
			require.Error(t, err)
			require.True(t, exc.IsSemantic(err), err.Error())
			var e exc.Exception
			require.ErrorAs(t, err, &e)
			require.Equal(t, testCase.code, e.Code(), err.Error())
			if testCase.message != "" {
				require.Equal(t, testCase.message, e.Message())
			}
			if testCase.line != 0 {
				require.Equal(t, testCase.line, e.Location().Line)
			}
			if testCase.column != 0 {
				require.Equal(t, testCase.column, e.Location().Column)
			}
		})
	}
}

func TestAnalyzeStopsAtFirstError(t *testing.T) {
	t.Parallel()

	_, _, err := analyze(t, "break", "return", "print(y)")
	require.Equal(t, "1:1 -- SemanticError W0202: break statement outside loop", err.Error())
}

func TestInfo(t *testing.T) {
	t.Parallel()

	program, info, err := analyze(t,
		"num x = 3 + 4",
		"def string name(num n)",
		"    return str(n)",
		"print(name(x))",
		"list<num> xs = []",
		"from i = 0 to len(xs)",
		"    print(i)",
	)
	require.NoError(t, err)

	decl := program.Body[0].(*ast.VariableDeclaration)
	require.True(t, types.Identical(types.Num, info.TypeOf(decl.Init)))

	fn := program.Body[1].(*ast.FunctionDeclaration)
	call := program.Body[2].(*ast.ExpressionStatement).Value.(*ast.Call)
	require.True(t, types.Identical(types.Void, info.TypeOf(call)))
	inner := call.Args[0].Value.(*ast.Call)
	require.True(t, types.Identical(types.String, info.TypeOf(inner)))
	require.Same(t, fn, info.Uses[inner.Callee.(*ast.Identifier)])
	arg := inner.Args[0].Value.(*ast.Identifier)
	require.Same(t, decl, info.Uses[arg])

	empty := program.Body[3].(*ast.VariableDeclaration)
	require.Equal(t, "list<unknown>", info.TypeOf(empty.Init).String())

	loop := program.Body[4].(*ast.FromStatement)
	require.True(t, types.Identical(types.Num, info.TypeOf(loop.LoopVar)))
	use := loop.Body[0].(*ast.ExpressionStatement).Value.(*ast.Call).Args[0].Value.(*ast.Identifier)
	require.Same(t, loop, info.Uses[use])
}

func TestShadowingStaysInBlock(t *testing.T) {
	t.Parallel()

	program, info, err := analyze(t,
		"num x = 1",
		"if true",
		"    string x = 'inner'",
		"    print(x)",
		"num y = x + 1",
	)
	require.NoError(t, err)

	outer := program.Body[0].(*ast.VariableDeclaration)
	branch := program.Body[1].(*ast.IfStatement)
	inner := branch.Consequents[0][0].(*ast.VariableDeclaration)
	innerUse := branch.Consequents[0][1].(*ast.ExpressionStatement).Value.(*ast.Call).Args[0].Value.(*ast.Identifier)
	require.Same(t, inner, info.Uses[innerUse])
	require.True(t, types.Identical(types.String, info.TypeOf(innerUse)))

	sum := program.Body[2].(*ast.VariableDeclaration).Init.(*ast.BinaryExpression)
	outerUse := sum.Left.(*ast.Identifier)
	require.Same(t, outer, info.Uses[outerUse])
	require.True(t, types.Identical(types.Num, info.TypeOf(outerUse)))

	_, _, err = analyze(t,
		"num x = 1",
		"if true",
		"    string x = 'inner'",
		"string y = x",
	)
	require.True(t, exc.HasCode(err, exc.CodeTypeMismatch), "%v", err)
}

func TestBuiltins(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"abs", "len", "print", "str"}, semantic.Builtins())
}
