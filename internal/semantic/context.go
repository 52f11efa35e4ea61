package semantic

import (
	"gopkg.wendlang.org/wendc/internal/ast"
	"gopkg.wendlang.org/wendc/internal/types"
)

// Context is one lexical scope. It owns its bindings and refers to its
// parent only to resolve names. Flags are copied from the parent when a
// child is created and overridden for loop and function bodies.
type Context struct {
	parent     *Context
	bindings   map[string]ast.Node
	inLoop     bool
	returnType types.Type
}

// NewContext returns a root scope: not in a loop and not in a function.
func NewContext() *Context {
	return &Context{bindings: make(map[string]ast.Node)}
}

// Child returns a scope that inherits both flags.
func (c *Context) Child() *Context {
	return &Context{
		parent:     c,
		bindings:   make(map[string]ast.Node),
		inLoop:     c.inLoop,
		returnType: c.returnType,
	}
}

// Loop returns the scope of a loop body.
func (c *Context) Loop() *Context {
	child := c.Child()
	child.inLoop = true
	return child
}

// Function returns the scope of a function body. returnType is types.Void
// for a function declared without one. Loops outside the function do not
// extend into it.
func (c *Context) Function(returnType types.Type) *Context {
	child := c.Child()
	child.inLoop = false
	child.returnType = returnType
	return child
}

func (c *Context) Parent() *Context {
	return c.parent
}

func (c *Context) InLoop() bool {
	return c.inLoop
}

// ReturnType is nil outside of any function.
func (c *Context) ReturnType() types.Type {
	return c.returnType
}

// Declare binds name in this scope. It reports false, and changes nothing,
// when the name is already bound here. Bindings in enclosing scopes are
// shadowed.
func (c *Context) Declare(name string, n ast.Node) bool {
	if _, ok := c.bindings[name]; ok {
		return false
	}
	c.bindings[name] = n
	return true
}

// LookupLocal resolves name in this scope only.
func (c *Context) LookupLocal(name string) (ast.Node, bool) {
	n, ok := c.bindings[name]
	return n, ok
}

// Lookup resolves name from this scope outward to the root.
func (c *Context) Lookup(name string) (ast.Node, bool) {
	for scope := c; scope != nil; scope = scope.parent {
		if n, ok := scope.bindings[name]; ok {
			return n, true
		}
	}
	return nil, false
}
