package semantic

import (
	"gopkg.wendlang.org/wendc/internal/types"
)

// builtin is a function every program can call without declaring it. Each
// takes exactly one argument.
type builtin struct {
	name    string
	accepts func(types.Type) bool
	// param describes accepted arguments in diagnostics.
	param  string
	result types.Type
}

func anyValue(t types.Type) bool {
	return t.Kind() != types.KindVoid
}

var builtins = map[string]*builtin{
	"print": {name: "print", accepts: anyValue, param: "any value", result: types.Void},
	"str":   {name: "str", accepts: anyValue, param: "any value", result: types.String},
	"len": {
		name: "len",
		accepts: func(t types.Type) bool {
			return types.IsCollection(t) || t.Kind() == types.KindString || t.Kind() == types.KindUnknown
		},
		param:  "a list, set, dict or string",
		result: types.Num,
	},
	"abs": {
		name: "abs",
		accepts: func(t types.Type) bool {
			return t.Kind() == types.KindNum || t.Kind() == types.KindUnknown
		},
		param:  "num",
		result: types.Num,
	},
}

// Builtins returns the names of the predeclared functions.
func Builtins() []string {
	return []string{"abs", "len", "print", "str"}
}
