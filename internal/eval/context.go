// Package eval tree-walks a parsed Program against a runtime namespace
// tree: one handler per expression/statement variant, a uniform call
// contract shared by host and script functions, and jump-signal
// propagation for break/continue/return.
//
// Dispatch runs on ast.Node via one function per kind; control-flow
// statements carry exitSignal/continueSignal-style flags, generalized
// here into a single JumpKind.
package eval

import "github.com/cflat-go/cflat/internal/runtime"

// JumpKind is the control-flow signal propagated out of statement
// execution until consumed by the enclosing loop, switch, or function
// (§4.J).
type JumpKind int

const (
	JumpNone JumpKind = iota
	JumpBreak
	JumpContinue
	JumpReturn
)

// CallFrame is one entry of the evaluator's call stack, exposed to the
// execution hook and to runtime error messages.
type CallFrame struct {
	FunctionName string
	Line         int
}

// Context is Cflat's ExecutionContext (§3): the value stack, call stack,
// return-value stack, jump signal, and the namespace/using/alias stacks
// shared with the parser's ParsingContext, but resolved to runtime
// objects instead of parse-time names.
type Context struct {
	Stack        *runtime.EnvironmentStack
	CallStack    []CallFrame
	ReturnValues []*runtime.Value
	Jump         JumpKind

	BlockLevel int
	ScopeLevel int

	Namespace      *runtime.Namespace
	NamespaceStack []*runtime.Namespace

	// This is the current method-dispatch receiver, non-nil only while
	// evaluating a method body.
	This *runtime.Value
}

// NewContext returns a fresh execution context rooted at the global
// namespace.
func NewContext(global *runtime.Namespace) *Context {
	return &Context{
		Stack:     runtime.NewEnvironmentStack(),
		Namespace: global,
	}
}

// PushNamespace enters ns for the duration of a block (namespace decl,
// function body in a namespace, …).
func (c *Context) PushNamespace(ns *runtime.Namespace) {
	c.NamespaceStack = append(c.NamespaceStack, c.Namespace)
	c.Namespace = ns
}

// PopNamespace restores the namespace active before the matching
// PushNamespace.
func (c *Context) PopNamespace() {
	n := len(c.NamespaceStack)
	if n == 0 {
		return
	}
	c.Namespace = c.NamespaceStack[n-1]
	c.NamespaceStack = c.NamespaceStack[:n-1]
}

// PushUsing records a using-directive against the current namespace,
// visible until the enclosing block calls PopUsing (§4.D: "lookup never
// returns a symbol from a using-directive that has gone out of block
// scope").
func (c *Context) PushUsing(ns *runtime.Namespace) {
	c.Namespace.AddUsingDirective(ns)
}

// PopUsing removes the most recently declared using-directive from the
// current namespace.
func (c *Context) PopUsing() {
	c.Namespace.PopUsingDirective()
}

// EnterBlock increments the block/scope level counters for a new lexical
// block (§3 "block level governs using-directive visibility").
func (c *Context) EnterBlock() (blockLevel, scopeLevel int) {
	c.BlockLevel++
	c.ScopeLevel++
	return c.BlockLevel, c.ScopeLevel
}

// LeaveBlock restores the counters after a block exits, releasing scoped
// instances and running destructors via release.
func (c *Context) LeaveBlock(savedBlockLevel, savedScopeLevel int, release func(level int) error) error {
	if err := release(savedScopeLevel + 1); err != nil {
		return err
	}
	c.BlockLevel = savedBlockLevel
	c.ScopeLevel = savedScopeLevel
	return nil
}

// PushCall enters a new call-stack frame.
func (c *Context) PushCall(name string, line int) {
	c.CallStack = append(c.CallStack, CallFrame{FunctionName: name, Line: line})
}

// PopCall leaves the current call-stack frame.
func (c *Context) PopCall() {
	n := len(c.CallStack)
	if n == 0 {
		return
	}
	c.CallStack = c.CallStack[:n-1]
}

// SetLine updates the current frame's line, for diagnostics attributing
// a runtime error to the statement being executed.
func (c *Context) SetLine(line int) {
	if n := len(c.CallStack); n > 0 {
		c.CallStack[n-1].Line = line
	}
}

// CurrentLine returns the line of the innermost call frame, or 0 when
// the call stack is empty (top-level script code).
func (c *Context) CurrentLine() int {
	if n := len(c.CallStack); n > 0 {
		return c.CallStack[n-1].Line
	}
	return 0
}

// CallStackCopy returns a defensive copy of the call stack, for the
// execution hook (§4.J: "an immutable view of the call stack").
func (c *Context) CallStackCopy() []CallFrame {
	cp := make([]CallFrame, len(c.CallStack))
	copy(cp, c.CallStack)
	return cp
}

// PushReturnSlot makes out the active return-value target for nested
// calls with struct returns (§3 "a return-value stack to support nested
// calls with struct returns").
func (c *Context) PushReturnSlot(out *runtime.Value) {
	c.ReturnValues = append(c.ReturnValues, out)
}

// PopReturnSlot removes the most recently pushed return-value target.
func (c *Context) PopReturnSlot() {
	n := len(c.ReturnValues)
	if n == 0 {
		return
	}
	c.ReturnValues = c.ReturnValues[:n-1]
}

// ReturnSlot returns the active return-value target, or nil.
func (c *Context) ReturnSlot() *runtime.Value {
	if n := len(c.ReturnValues); n > 0 {
		return c.ReturnValues[n-1]
	}
	return nil
}
