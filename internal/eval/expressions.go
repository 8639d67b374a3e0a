package eval

import (
	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/ident"
	"github.com/cflat-go/cflat/internal/runtime"
)

func (i *Interpreter) evalIntLiteral(n *ast.IntLiteral) (*runtime.Value, error) {
	name := "int"
	if n.IsUnsigned {
		name = "unsigned int"
	}
	usage := runtime.TypeUsage{BaseType: i.builtins[name]}
	return runtime.NewExternal(usage, n.Value), nil
}

func (i *Interpreter) evalFloatLiteral(n *ast.FloatLiteral) (*runtime.Value, error) {
	name := "double"
	var data any = n.Value
	if n.IsFloat32 {
		name = "float"
		data = float32(n.Value)
	}
	usage := runtime.TypeUsage{BaseType: i.builtins[name]}
	return runtime.NewExternal(usage, data), nil
}

func (i *Interpreter) evalStringLiteral(n *ast.StringLiteral) (*runtime.Value, error) {
	usage := runtime.TypeUsage{BaseType: i.builtins["char"], PointerLevel: 1, Const: true}
	return runtime.NewExternal(usage, n.Value), nil
}

func (i *Interpreter) evalCharLiteral(n *ast.CharLiteral) (*runtime.Value, error) {
	usage := runtime.TypeUsage{BaseType: i.builtins["char"]}
	return runtime.NewExternal(usage, byte(n.Value)), nil
}

func (i *Interpreter) evalBoolLiteral(n *ast.BoolLiteral) (*runtime.Value, error) {
	usage := runtime.TypeUsage{BaseType: i.builtins["bool"]}
	return runtime.NewExternal(usage, n.Value), nil
}

func (i *Interpreter) evalNullPtrLiteral(n *ast.NullPtrLiteral) (*runtime.Value, error) {
	usage := runtime.TypeUsage{BaseType: i.builtins["void"], PointerLevel: 1}
	return runtime.NewExternal(usage, runtime.Addr{}), nil
}

// evalIdentifier resolves a variable/enum-value access via
// retrieveInstance, with using-directive fallback on an unqualified
// leaf (§4.D, §4.J "VariableAccess").
func (i *Interpreter) evalIdentifier(n *ast.Identifier) (*runtime.Value, error) {
	if inst, ok := i.ctx.Namespace.RetrieveInstance(n.Name, true); ok {
		return inst.Value, nil
	}
	if inst, ok := i.ctx.Namespace.LookupViaUsing(n.Name); ok {
		return inst.Value, nil
	}
	if i.ctx.This != nil && i.ctx.This.Usage.BaseType != nil {
		if member, offset, ok := i.ctx.This.Usage.BaseType.FindMember(ident.Intern(n.Name)); ok {
			if si := i.ctx.This.AsStruct(); si != nil {
				if field, ok := si.Field(offset); ok {
					_ = member
					return field, nil
				}
			}
		}
	}
	return nil, runtimeErrorf(n.Line(), "undefined variable '%s'", n.Name)
}

// evalMemberAccess evaluates `owner.member`/`owner->member` (§4.J):
// dereference through one pointer level when the owner is a pointer,
// look the member up across the derived/base chain, and return its
// slot directly so the caller can both read and assign through it.
func (i *Interpreter) evalMemberAccess(n *ast.MemberAccess) (*runtime.Value, error) {
	owner, err := i.eval(n.Owner)
	if err != nil {
		return nil, err
	}

	target := owner
	if owner.Usage.IsPointer() {
		addr := owner.AsAddr()
		if addr.Target == nil {
			return nil, runtimeErrorf(n.Line(), "null pointer access ('%s')", n.Member)
		}
		target = addr.Target
	}

	si := target.AsStruct()
	if si == nil || target.Usage.BaseType == nil {
		return nil, runtimeErrorf(n.Line(), "'%s' is not a struct or class value", n.Member)
	}

	member, offset, ok := target.Usage.BaseType.FindMember(ident.Intern(n.Member))
	if !ok {
		return nil, runtimeErrorf(n.Line(), "no member named '%s'", n.Member)
	}
	field, ok := si.Field(offset)
	if !ok {
		return nil, runtimeErrorf(n.Line(), "no member named '%s'", n.Member)
	}
	_ = member
	return field, nil
}

// evalArrayElementAccess computes an index into an array or a pointer
// (§4.J: bounds-checked for arrays, raw offset for pointers).
func (i *Interpreter) evalArrayElementAccess(n *ast.ArrayElementAccess) (*runtime.Value, error) {
	base, err := i.eval(n.Base)
	if err != nil {
		return nil, err
	}
	idxVal, err := i.eval(n.Index)
	if err != nil {
		return nil, err
	}
	idx := int(idxVal.AsInt64())

	if base.Usage.IsArray() {
		elems, _ := base.Data().([]*runtime.Value)
		if idx < 0 || idx >= len(elems) {
			return nil, runtimeErrorf(n.Line(), "invalid array index: size %d, index %d", len(elems), idx)
		}
		return elems[idx], nil
	}

	if base.Usage.IsPointer() {
		addr := base.AsAddr()
		if addr.Elems != nil {
			target := addr.Index + idx
			if target < 0 || target >= len(addr.Elems) {
				return nil, runtimeErrorf(n.Line(), "invalid array index: size %d, index %d", len(addr.Elems), target)
			}
			return addr.Elems[target], nil
		}
		if addr.Target == nil {
			return nil, runtimeErrorf(n.Line(), "null pointer access ('[]')")
		}
		return addr.Target, nil
	}

	return nil, runtimeErrorf(n.Line(), "'%s' is not indexable", n.Base.String())
}

// evalConditional evaluates only the selected branch of `cond ? a : b`.
func (i *Interpreter) evalConditional(n *ast.ConditionalExpression) (*runtime.Value, error) {
	cond, err := i.eval(n.Condition)
	if err != nil {
		return nil, err
	}
	if cond.AsBool() {
		return i.eval(n.Then)
	}
	return i.eval(n.Else)
}

// newArrayValue allocates an array's backing element slots; the
// container itself carries the element slice as its payload (§4.E: the
// bump-allocator model treats one declared variable as one stack/heap
// acquisition regardless of its element count).
func (i *Interpreter) newArrayValue(elemUsage runtime.TypeUsage, n int, onStack bool) *runtime.Value {
	elems := make([]*runtime.Value, n)
	for idx := range elems {
		elems[idx] = runtime.NewHeap(elemUsage)
	}
	usage := elemUsage
	usage.ArraySize = n
	if onStack {
		v := i.ctx.Stack.Push(usage)
		v.SetData(elems)
		return v
	}
	v := runtime.NewHeap(usage)
	v.SetData(elems)
	return v
}

// arrayToPointer performs array-to-pointer decay (§4.F rule 1a).
func arrayToPointer(v *runtime.Value) *runtime.Value {
	elems, _ := v.Data().([]*runtime.Value)
	usage := v.Usage.ElementUsage().Pointed()
	idx := 0
	var target *runtime.Value
	if len(elems) > 0 {
		target = elems[0]
	}
	return runtime.NewExternal(usage, runtime.Addr{Target: target, Elems: elems, Index: idx})
}
