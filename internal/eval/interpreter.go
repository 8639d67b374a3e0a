package eval

import (
	"fmt"
	"io"

	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/ident"
	"github.com/cflat-go/cflat/internal/overload"
	"github.com/cflat-go/cflat/internal/runtime"
)

// RuntimeError is a category-C runtime error (§7): null pointer access,
// out-of-range index, division by zero, missing trampoline, or a custom
// error raised from host code. The environment façade (internal/cflat)
// renders it into the fixed "[Runtime Error] '<program>' -- Line <n>:
// <message>" format; eval itself only carries the line and message.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func runtimeErrorf(line int, format string, args ...any) *RuntimeError {
	return &RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// ScriptFunction is the closure a script-defined FunctionDecl compiles
// to (§4.J "Function bodies defined in scripts are stored as a closure
// capturing the parse-time using-directive list, the owning namespace,
// and the statement body"). It is stored as a *runtime.Function's Body.
type ScriptFunction struct {
	Decl  *ast.FunctionDecl
	Owner *runtime.Namespace
	Using []*runtime.Namespace
}

// Interpreter is Cflat's tree-walking evaluator: the runtime namespace
// tree it mutates, the overload-resolution engine, host output, and the
// static-local storage map (§4.I "block-scope static preserves storage
// across re-entries via a keyed long-lived slot").
//
// Holds an output io.Writer, an execution context (whose call stack
// supplies the line for error reporting), and registry maps rooted at
// the namespace tree rather than a flat function/class registry.
type Interpreter struct {
	Global   *runtime.Namespace
	Overload *overload.Engine
	Output   io.Writer

	ctx *Context

	builtins map[string]*runtime.Type
	statics  map[*ast.VarDecl]*runtime.Value
	localNS  int // next function-scope struct disambiguation index, mirrors parser's

	Hook func([]CallFrame)
}

// New creates an Interpreter with a fresh global namespace seeded with
// the built-in scalar types every program needs regardless of host
// registration.
func New(output io.Writer) *Interpreter {
	global := runtime.NewGlobalNamespace()
	i := &Interpreter{
		Global:   global,
		Overload: overload.New(),
		Output:   output,
		ctx:      NewContext(global),
		builtins: make(map[string]*runtime.Type),
		statics:  make(map[*ast.VarDecl]*runtime.Value),
	}
	i.registerBuiltinTypes()
	return i
}

func (i *Interpreter) registerBuiltinTypes() {
	add := func(name string, size int) {
		t := runtime.NewBuiltIn(name, size)
		i.builtins[name] = t
		i.Global.Types.Add(t)
	}
	add("bool", 1)
	add("char", 1)
	add("short", 2)
	add("int", 4)
	add("unsigned int", 4)
	i.builtins["unsigned"] = i.builtins["unsigned int"] // "unsigned" is shorthand for "unsigned int"
	add("long", 8)
	add("float", 4)
	add("double", 8)

	voidType := runtime.NewVoid()
	i.builtins["void"] = voidType
	i.Global.Types.Add(voidType)
}

// Context returns the active execution context (exposed for the
// internal/cflat façade to drive Load/EvaluateExpression/VoidFunctionCall).
func (i *Interpreter) Context() *Context { return i.ctx }

// Run executes every top-level statement of prog in the global
// namespace, in order, per §2 "J walks that program, mutating the
// execution context and its instance/namespace state."
func (i *Interpreter) Run(prog *ast.Program) error {
	i.ctx.PushCall(prog.Name, 0)
	defer i.ctx.PopCall()
	for _, stmt := range prog.Statements {
		if _, err := i.execStatement(stmt); err != nil {
			return err
		}
		if i.ctx.Jump != JumpNone {
			break
		}
	}
	return nil
}

// EvalExpression evaluates a single top-level expression (§4.K
// evaluate_expression) in the interpreter's current namespace/using
// context, returning its value.
func (i *Interpreter) EvalExpression(expr ast.Expression) (*runtime.Value, error) {
	return i.eval(expr)
}

// Call invokes fn with the given receiver and arguments, for the
// environment façade's void_function_call and host-side calls into
// registered or script-defined functions (§4.K).
func (i *Interpreter) Call(fn *runtime.Function, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return i.callFunction(i.ctx.CurrentLine(), fn, this, args)
}

// ClearStatics empties the block-scope static storage map, for
// reset_statics (§4.K): the next execution of any `static` local
// re-initializes from its declaration instead of reusing prior storage.
func (i *Interpreter) ClearStatics() {
	i.statics = make(map[*ast.VarDecl]*runtime.Value)
}

func (i *Interpreter) runHook() {
	if i.Hook != nil {
		i.Hook(i.ctx.CallStackCopy())
	}
}

// lookupType resolves a (possibly qualified) type name against the
// built-in table first, then the current namespace (with parent
// fallback), then its using-directives (§4.D, §4.I type-usage
// resolution).
func (i *Interpreter) lookupType(name string) (*runtime.Type, bool) {
	if t, ok := i.builtins[name]; ok {
		return t, true
	}
	if t, ok := i.ctx.Namespace.GetType(name, true); ok {
		return t, true
	}
	if t, ok := i.ctx.Namespace.LookupTypeViaUsing(name); ok {
		return t, true
	}
	return nil, false
}

// resolveTypeUsage converts a parser-built ast.TypeUsage into a
// resolved runtime.TypeUsage by looking up its base name (§4.I
// resolution order: alias stack, local-namespace stack, active
// namespace with parent/using fallback — aliases are modeled here via
// the namespace's own TypesHolder.LookupAlias, checked first).
func (i *Interpreter) resolveTypeUsage(line int, tu ast.TypeUsage) (runtime.TypeUsage, error) {
	if alias, ok := i.ctx.Namespace.Types.LookupAlias(ident.Intern(tu.BaseName)); ok {
		resolved := alias.Usage
		resolved.PointerLevel += tu.PointerLevel
		resolved.Reference = tu.Reference
		if tu.Const {
			resolved.Const = true
		}
		resolved.ConstPointer = tu.ConstPointer
		return resolved, nil
	}

	base, ok := i.lookupType(tu.BaseName)
	if !ok {
		return runtime.TypeUsage{}, runtimeErrorf(line, "undefined type '%s'", tu.BaseName)
	}

	if len(tu.TemplateArgs) > 0 {
		args := make([]runtime.TypeUsage, len(tu.TemplateArgs))
		for idx, a := range tu.TemplateArgs {
			ru, err := i.resolveTypeUsage(line, a)
			if err != nil {
				return runtime.TypeUsage{}, err
			}
			args[idx] = ru
		}
		if inst, ok := i.ctx.Namespace.Types.GetTemplate(ident.Intern(tu.BaseName), args); ok {
			base = inst
		}
	}

	return runtime.TypeUsage{
		BaseType:     base,
		PointerLevel: tu.PointerLevel,
		Const:        tu.Const,
		ConstPointer: tu.ConstPointer,
		Reference:    tu.Reference,
	}, nil
}
