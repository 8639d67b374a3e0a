package cflat

import (
	"github.com/cflat-go/cflat/internal/ident"
	"github.com/cflat-go/cflat/internal/preproc"
	"github.com/cflat-go/cflat/internal/runtime"
)

// Namespace resolves or creates "a::b::c" under the global namespace,
// for host code that registers types/functions/variables into a
// specific namespace rather than the global one (§4.K register_*).
func (e *Environment) Namespace(path string) *runtime.Namespace {
	return e.interp.Global.RequestNamespace(path)
}

// RegisterType adds t to ns (the global namespace if ns is nil).
func (e *Environment) RegisterType(ns *runtime.Namespace, t *runtime.Type) {
	e.namespaceOrGlobal(ns).Types.Add(t)
}

// RegisterTypedef defines alias as usage in ns (the global namespace if
// ns is nil), unscoped (visible for the environment's lifetime).
func (e *Environment) RegisterTypedef(ns *runtime.Namespace, alias string, usage runtime.TypeUsage) {
	e.namespaceOrGlobal(ns).Types.DefineAlias(alias, usage, nil)
}

// RegisterFunction adds fn to ns (the global namespace if ns is nil).
// Host-provided fn.Call must follow the uniform trampoline contract
// (§6): args[0] is `this` for methods, remaining slots are parameters
// in declaration order, followed by a raw tail for variadic calls.
func (e *Environment) RegisterFunction(ns *runtime.Namespace, fn *runtime.Function) {
	e.namespaceOrGlobal(ns).Functions.Add(fn)
}

// RegisterVariable declares name as a host-owned variable in ns (the
// global namespace if ns is nil), backed by value.
func (e *Environment) RegisterVariable(ns *runtime.Namespace, name string, usage runtime.TypeUsage, value *runtime.Value) {
	e.namespaceOrGlobal(ns).Instances.Declare(&runtime.Instance{
		Name:  ident.Intern(name),
		Usage: usage,
		Value: value,
	})
}

// RegisterPerfectMatchPair marks a and b as mutually perfect-matching
// for overload resolution (§4.K "custom perfect-match pairs"), e.g. a
// host-registered `MyString` type that should rank as a perfect match
// against `const char*` arguments.
func (e *Environment) RegisterPerfectMatchPair(a, b *runtime.Type) {
	e.interp.Overload.RegisterPerfectMatchPair(a, b)
}

// RegisterMacro defines a `#define`-equivalent macro programmatically,
// available to every subsequent Load call's preprocessing pass (§4.K).
func (e *Environment) RegisterMacro(m *preproc.Macro) {
	e.pre.DefineMacro(m)
}

func (e *Environment) namespaceOrGlobal(ns *runtime.Namespace) *runtime.Namespace {
	if ns == nil {
		return e.interp.Global
	}
	return ns
}

// GetType resolves a (possibly qualified) type name against the global
// namespace (§4.K).
func (e *Environment) GetType(qualifiedName string) (*runtime.Type, bool) {
	return e.interp.Global.GetType(qualifiedName, true)
}

// GetFunction returns the first overload registered under name (§4.K);
// use GetFunctions to inspect the full overload set.
func (e *Environment) GetFunction(qualifiedName string) (*runtime.Function, bool) {
	fns := e.interp.Global.GetFunctions(qualifiedName, true)
	if len(fns) == 0 {
		return nil, false
	}
	return fns[0], true
}

// GetFunctions returns every overload registered under name (§4.K).
func (e *Environment) GetFunctions(qualifiedName string) []*runtime.Function {
	return e.interp.Global.GetFunctions(qualifiedName, true)
}

// GetVariable resolves a (possibly qualified) variable or static-member
// name against the global namespace (§4.K).
func (e *Environment) GetVariable(qualifiedName string) (*runtime.Value, bool) {
	inst, ok := e.interp.Global.RetrieveInstance(qualifiedName, true)
	if !ok {
		return nil, false
	}
	return inst.Value, true
}

// GetNamespace resolves "a::b::c" against existing namespaces without
// creating missing nodes (§4.K); use Namespace to create-or-get.
func (e *Environment) GetNamespace(path string) (*runtime.Namespace, bool) {
	return e.interp.Global.GetNamespace(path)
}

// SetVariable overwrites a resolved variable's payload in place (§4.K).
// Reports false if no variable resolves under qualifiedName.
func (e *Environment) SetVariable(qualifiedName string, data any) bool {
	v, ok := e.GetVariable(qualifiedName)
	if !ok {
		return false
	}
	v.SetData(data)
	return true
}
