package parser

import "strconv"

// Context carries the scope-aware state that the grammar threads
// through recursive descent (§4.I): the active namespace stack,
// using-directive stack, local-namespace stack (for function-scope
// structs, synthesised into `fn::__localN`), a type-alias stack, the
// function currently being parsed (for return-path verification), and
// the set of instances declared in the current scope (for redefinition
// checks).
//
// A consolidated state struct with push/pop stacks; speculative parsing
// backtracks through Cursor's Mark/ResetTo, not through this struct.
type Context struct {
	namespaceStack []string // qualified namespace path components, joined with "::"
	usingStack     []string // namespaces pushed by `using namespace`, in declaration order
	localNamespace []string // synthesised fn::__localN names, nested
	typeAliases    []map[string]string
	declared       []map[string]bool
	localCounter   int
	currentFunc    *funcScope
}

type funcScope struct {
	name        string
	returnsVoid bool
	bodySeen    bool
}

// NewContext returns a Context with the global namespace on the stack.
func NewContext() *Context {
	return &Context{
		namespaceStack: []string{""},
		typeAliases:    []map[string]string{{}},
		declared:       []map[string]bool{{}},
	}
}

// CurrentNamespace returns the fully-qualified current namespace path
// ("" for global).
func (ctx *Context) CurrentNamespace() string {
	return ctx.namespaceStack[len(ctx.namespaceStack)-1]
}

// PushNamespace enters a nested namespace.
func (ctx *Context) PushNamespace(name string) {
	cur := ctx.CurrentNamespace()
	full := name
	if cur != "" {
		full = cur + "::" + name
	}
	ctx.namespaceStack = append(ctx.namespaceStack, full)
}

// PopNamespace leaves the innermost namespace.
func (ctx *Context) PopNamespace() {
	if len(ctx.namespaceStack) > 1 {
		ctx.namespaceStack = ctx.namespaceStack[:len(ctx.namespaceStack)-1]
	}
}

// PushLocalNamespace synthesises and enters `fn::__localN` for a
// function-scope struct declaration (§6).
func (ctx *Context) PushLocalNamespace() string {
	name := "__local" + strconv.Itoa(ctx.localCounter)
	ctx.localCounter++
	ctx.localNamespace = append(ctx.localNamespace, name)
	ctx.PushNamespace(name)
	return name
}

// PopLocalNamespace leaves a synthesised local namespace.
func (ctx *Context) PopLocalNamespace() {
	if len(ctx.localNamespace) > 0 {
		ctx.localNamespace = ctx.localNamespace[:len(ctx.localNamespace)-1]
	}
	ctx.PopNamespace()
}

// PushUsing records a `using namespace N;` directive, visible until
// PopUsing (reverse-declaration-order lookup happens in the runtime
// package, not here; the parser just tracks scope extent).
func (ctx *Context) PushUsing(name string) { ctx.usingStack = append(ctx.usingStack, name) }

// PopUsingTo truncates the using stack back to the given length,
// called when a block that declared using-directives exits.
func (ctx *Context) PopUsingTo(n int) { ctx.usingStack = ctx.usingStack[:n] }

// UsingDepth returns the current using-directive stack length, to be
// paired with a later PopUsingTo.
func (ctx *Context) UsingDepth() int { return len(ctx.usingStack) }

// PushScope enters a new block scope for alias/declared tracking.
func (ctx *Context) PushScope() {
	ctx.typeAliases = append(ctx.typeAliases, map[string]string{})
	ctx.declared = append(ctx.declared, map[string]bool{})
}

// PopScope leaves the innermost block scope.
func (ctx *Context) PopScope() {
	if len(ctx.typeAliases) > 1 {
		ctx.typeAliases = ctx.typeAliases[:len(ctx.typeAliases)-1]
		ctx.declared = ctx.declared[:len(ctx.declared)-1]
	}
}

// DefineAlias records a `using Alias = T;` / `typedef T Alias;` binding
// visible in the current and nested scopes.
func (ctx *Context) DefineAlias(alias, target string) {
	ctx.typeAliases[len(ctx.typeAliases)-1][alias] = target
}

// ResolveAlias walks the alias stack from innermost to outermost scope.
func (ctx *Context) ResolveAlias(name string) (string, bool) {
	for i := len(ctx.typeAliases) - 1; i >= 0; i-- {
		if t, ok := ctx.typeAliases[i][name]; ok {
			return t, true
		}
	}
	return "", false
}

// DeclareInstance records name as declared in the current scope,
// returning false if it was already declared there (redefinition).
func (ctx *Context) DeclareInstance(name string) bool {
	scope := ctx.declared[len(ctx.declared)-1]
	if scope[name] {
		return false
	}
	scope[name] = true
	return true
}

// EnterFunction begins tracking a function body for all-paths-return
// verification.
func (ctx *Context) EnterFunction(name string, returnsVoid bool) {
	ctx.currentFunc = &funcScope{name: name, returnsVoid: returnsVoid}
}

// LeaveFunction stops tracking the current function.
func (ctx *Context) LeaveFunction() { ctx.currentFunc = nil }

// CurrentFunctionReturnsVoid reports whether the function currently
// being parsed has a void return type (bare `return;` is always legal;
// only non-void functions require all-paths-return verification).
func (ctx *Context) CurrentFunctionReturnsVoid() bool {
	return ctx.currentFunc == nil || ctx.currentFunc.returnsVoid
}
