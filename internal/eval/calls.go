package eval

import (
	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/ident"
	"github.com/cflat-go/cflat/internal/runtime"
)

// evalCall resolves and invokes a free function, a method (when Callee
// is a MemberAccess), or a function-pointer value, per §4.J "Call".
func (i *Interpreter) evalCall(n *ast.CallExpr) (*runtime.Value, error) {
	args := make([]*runtime.Value, len(n.Args))
	argUsages := make([]runtime.TypeUsage, len(n.Args))
	for idx, a := range n.Args {
		v, err := i.eval(a)
		if err != nil {
			return nil, err
		}
		args[idx] = v
		argUsages[idx] = v.Usage
	}

	switch callee := n.Callee.(type) {
	case *ast.MemberAccess:
		owner, err := i.eval(callee.Owner)
		if err != nil {
			return nil, err
		}
		receiver := owner
		if owner.Usage.IsPointer() {
			addr := owner.AsAddr()
			if addr.Target == nil {
				return nil, runtimeErrorf(n.Line(), "null pointer access ('%s')", callee.Member)
			}
			receiver = addr.Target
		}
		if receiver.Usage.BaseType == nil || receiver.Usage.BaseType.Category != runtime.StructOrClass {
			return nil, runtimeErrorf(n.Line(), "'%s' is not callable on a non-object value", callee.Member)
		}
		mu, ok := receiver.Usage.BaseType.FindMethodUsage(ident.Intern(callee.Member), argUsages, i.perfectMatch, i.compatibleMatch)
		if !ok {
			return nil, runtimeErrorf(n.Line(), "no matching method '%s'", callee.Member)
		}
		return i.callFunction(n.Line(), mu.Method, receiver, args)

	case *ast.Identifier:
		fn, ok := i.resolveFreeFunction(callee.Name, argUsages)
		if !ok {
			return nil, runtimeErrorf(n.Line(), "no matching function '%s'", callee.Name)
		}
		return i.callFunction(n.Line(), fn, nil, args)

	default:
		calleeVal, err := i.eval(n.Callee)
		if err != nil {
			return nil, err
		}
		fn, ok := calleeVal.Data().(*runtime.Function)
		if !ok {
			return nil, runtimeErrorf(n.Line(), "expression is not callable")
		}
		return i.callFunction(n.Line(), fn, nil, args)
	}
}

// resolveFreeFunction looks up name in the current namespace first,
// falling back to using-directives (§4.D, §4.F three-pass ranking).
func (i *Interpreter) resolveFreeFunction(name string, argUsages []runtime.TypeUsage) (*runtime.Function, bool) {
	id := ident.Intern(name)
	if fn := i.ctx.Namespace.Functions.Lookup(id, argUsages, i.Overload.MatchRank); fn != nil {
		return fn, true
	}
	for _, fn := range i.ctx.Namespace.LookupFunctionViaUsing(name) {
		if perfect, compatible, variadicOK := i.Overload.MatchRank(fn.Params, argUsages); perfect || compatible || variadicOK {
			return fn, true
		}
	}
	return nil, false
}

// callFunction is the uniform call contract (§4.J, §6): dispatch to a
// host trampoline or a script-defined closure.
func (i *Interpreter) callFunction(line int, fn *runtime.Function, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if fn.Call != nil {
		return i.callHostFunction(line, fn, this, args)
	}
	sf, ok := fn.Body.(*ScriptFunction)
	if !ok || sf.Decl.Body == nil {
		return nil, runtimeErrorf(line, "function '%s' has no body", fn.Name.String())
	}
	return i.callScriptFunction(line, fn, sf, this, args)
}

func (i *Interpreter) callHostFunction(line int, fn *runtime.Function, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	callArgs := args
	if this != nil {
		callArgs = append([]*runtime.Value{this}, args...)
	}
	out := runtime.NewHeap(fn.ReturnType)
	if err := fn.Call(callArgs, out); err != nil {
		if re, ok := err.(*RuntimeError); ok {
			return nil, re
		}
		return nil, runtimeErrorf(line, "%s", err.Error())
	}
	return out, nil
}

// callScriptFunction enters the function's owning namespace, restores
// its captured using-directives, binds `this` and parameters into a
// fresh lexical scope, executes the body, and tears everything back
// down in reverse (§3, §4.J).
func (i *Interpreter) callScriptFunction(line int, fn *runtime.Function, sf *ScriptFunction, this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	savedNS := i.ctx.Namespace
	savedThis := i.ctx.This

	i.ctx.Namespace = sf.Owner
	for _, u := range sf.Using {
		i.ctx.Namespace.AddUsingDirective(u)
	}
	i.ctx.This = this
	i.ctx.PushCall(fn.Name.String(), line)

	out := runtime.NewHeap(fn.ReturnType)
	i.ctx.PushReturnSlot(out)

	leave := i.enterLexicalScope()
	for idx, p := range fn.Params {
		if idx >= len(args) {
			break
		}
		var argVal *runtime.Value
		if p.Usage.Reference {
			argVal = args[idx]
		} else {
			argVal = i.ctx.Stack.Push(p.Usage)
			argVal.SetData(i.convertForParam(p.Usage, args[idx]))
		}
		i.ctx.Namespace.Instances.Declare(&runtime.Instance{Name: p.Name, Usage: p.Usage, Value: argVal, ScopeLevel: i.ctx.ScopeLevel})
	}

	_, err := i.execStatement(sf.Decl.Body)
	if i.ctx.Jump == JumpReturn {
		i.ctx.Jump = JumpNone
	}
	if cerr := leave(); err == nil {
		err = cerr
	}

	for range sf.Using {
		i.ctx.Namespace.PopUsingDirective()
	}
	i.ctx.PopReturnSlot()
	i.ctx.PopCall()
	i.ctx.This = savedThis
	i.ctx.Namespace = savedNS

	if err != nil {
		return nil, err
	}
	return out, nil
}

// convertForParam prepares an argument's payload for a by-value
// parameter: a field-wise struct copy, or a scalar/pointer conversion
// to the parameter's declared representation (§4.F).
func (i *Interpreter) convertForParam(usage runtime.TypeUsage, arg *runtime.Value) any {
	if usage.IsPointer() {
		return arg.AsAddr()
	}
	if usage.BaseType != nil && usage.BaseType.Category == runtime.StructOrClass {
		if si := arg.AsStruct(); si != nil {
			return copyStruct(si)
		}
	}
	if usage.IsFloatingPoint() {
		return arg.AsFloat64()
	}
	if usage.BaseType != nil && usage.BaseType.ID.String() == "bool" {
		return arg.AsBool()
	}
	return arg.AsInt64()
}

// copyStruct field-copies src's payload into a fresh StructInstance of
// the same type (§3 value semantics for by-value struct parameters and
// plain assignment without a registered operator=). Nested struct
// members are shared by reference rather than recursively copied — a
// deliberate simplification.
func copyStruct(src *runtime.StructInstance) *runtime.StructInstance {
	dst := runtime.NewStructInstance(src.Type)
	for offset, field := range dst.Fields {
		if sf, ok := src.Field(offset); ok {
			field.SetData(sf.Data())
		}
	}
	return dst
}

// runDestructor invokes t's destructor (if any) on a scope-released
// instance, per §3's releaseInstances contract.
func (i *Interpreter) runDestructor(inst *runtime.Instance) error {
	if inst.Usage.BaseType == nil {
		return nil
	}
	dtor := inst.Usage.BaseType.Destructor()
	if dtor == nil {
		return nil
	}
	_, err := i.callFunction(i.ctx.CurrentLine(), dtor, inst.Value, nil)
	return err
}

// evalObjectConstruction selects and invokes a constructor overload for
// `TypeUsage(args…)` (§4.J).
func (i *Interpreter) evalObjectConstruction(n *ast.ObjectConstructionExpr) (*runtime.Value, error) {
	usage, err := i.resolveTypeUsage(n.Line(), n.Type)
	if err != nil {
		return nil, err
	}
	if usage.BaseType == nil || usage.BaseType.Category != runtime.StructOrClass {
		return nil, runtimeErrorf(n.Line(), "'%s' is not a constructible type", n.Type.String())
	}

	args := make([]*runtime.Value, len(n.Args))
	argUsages := make([]runtime.TypeUsage, len(n.Args))
	for idx, a := range n.Args {
		v, err := i.eval(a)
		if err != nil {
			return nil, err
		}
		args[idx] = v
		argUsages[idx] = v.Usage
	}

	instVal := runtime.NewHeap(usage)
	if len(args) == 0 {
		if ctor := usage.BaseType.DefaultConstructor(); ctor != nil {
			if _, err := i.callFunction(n.Line(), ctor, instVal, nil); err != nil {
				return nil, err
			}
		}
		return instVal, nil
	}

	mu, ok := usage.BaseType.FindMethodUsage(usage.BaseType.ID, argUsages, i.perfectMatch, i.compatibleMatch)
	if !ok {
		return nil, runtimeErrorf(n.Line(), "no matching constructor for '%s'", n.Type.String())
	}
	if _, err := i.callFunction(n.Line(), mu.Method, instVal, args); err != nil {
		return nil, err
	}
	return instVal, nil
}

// evalArrayInit evaluates a standalone `{ e1, e2, … }` brace
// initializer, inferring the element type from its first element
// (§4.I — used outside a declaration's already-known target type).
func (i *Interpreter) evalArrayInit(n *ast.ArrayInitExpr) (*runtime.Value, error) {
	if len(n.Elements) == 0 {
		return nil, runtimeErrorf(n.Line(), "empty array initializer has no inferrable element type")
	}
	first, err := i.eval(n.Elements[0])
	if err != nil {
		return nil, err
	}
	arr := i.newArrayValue(first.Usage, len(n.Elements), false)
	elems, _ := arr.Data().([]*runtime.Value)
	elems[0].SetData(first.Data())
	for idx := 1; idx < len(n.Elements); idx++ {
		v, err := i.eval(n.Elements[idx])
		if err != nil {
			return nil, err
		}
		elems[idx].SetData(v.Data())
	}
	return arr, nil
}

// evalAggregateInit is reached only when a brace initializer appears
// somewhere other than a variable declaration's initializer, where no
// target struct type can be inferred (§4.I); execVarDecl's
// initAggregateInto handles the declaration-context form directly.
func (i *Interpreter) evalAggregateInit(n *ast.AggregateInitExpr) (*runtime.Value, error) {
	return nil, runtimeErrorf(n.Line(), "aggregate initializer requires a declared target type")
}
