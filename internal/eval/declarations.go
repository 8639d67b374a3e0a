package eval

import (
	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/ident"
	"github.com/cflat-go/cflat/internal/runtime"
)

// declareLocal binds name to v in the current namespace's instance
// table at the active scope level, for lookup by evalIdentifier and
// release by enterLexicalScope's cleanup.
func (i *Interpreter) declareLocal(name string, usage runtime.TypeUsage, v *runtime.Value) {
	i.ctx.Namespace.Instances.Declare(&runtime.Instance{
		Name:       ident.Intern(name),
		Usage:      usage,
		Value:      v,
		ScopeLevel: i.ctx.ScopeLevel,
	})
}

// allocLocal acquires storage for a declared variable: Stack for an
// ordinary local (released when its block exits), Heap for a
// block-scope static (persists across re-entries, §4.I).
func (i *Interpreter) allocLocal(usage runtime.TypeUsage, onStack bool) *runtime.Value {
	if onStack {
		return i.ctx.Stack.Push(usage)
	}
	return runtime.NewHeap(usage)
}

// execVarDecl implements `Type name[ = init];`, `auto`, array
// declarators, and block-scope `static` storage (§4.I).
func (i *Interpreter) execVarDecl(s *ast.VarDecl) error {
	if s.IsStatic {
		if v, ok := i.statics[s]; ok {
			i.declareLocal(s.Name, v.Usage, v)
			return nil
		}
	}

	if s.IsAuto {
		if s.Init == nil {
			return runtimeErrorf(s.Line(), "'auto' variable '%s' requires an initializer", s.Name)
		}
		initVal, err := i.eval(s.Init)
		if err != nil {
			return err
		}
		v := i.allocLocal(initVal.Usage, !s.IsStatic)
		v.SetData(initVal.Data())
		i.declareLocal(s.Name, initVal.Usage, v)
		if s.IsStatic {
			i.statics[s] = v
		}
		return nil
	}

	usage, err := i.resolveTypeUsage(s.Line(), s.Type)
	if err != nil {
		return err
	}

	if usage.Reference {
		if s.Init == nil {
			return runtimeErrorf(s.Line(), "reference '%s' requires an initializer", s.Name)
		}
		target, err := i.resolveLValue(s.Init)
		if err != nil {
			return err
		}
		i.declareLocal(s.Name, usage, target)
		return nil
	}

	if s.ArraySize != nil {
		sizeVal, err := i.eval(s.ArraySize)
		if err != nil {
			return err
		}
		n := int(sizeVal.AsInt64())
		arr := i.newArrayValue(usage, n, !s.IsStatic)
		if s.Init != nil {
			if err := i.initArrayFrom(s.Line(), arr, s.Init); err != nil {
				return err
			}
		}
		i.declareLocal(s.Name, arr.Usage, arr)
		if s.IsStatic {
			i.statics[s] = arr
		}
		return nil
	}

	if agg, ok := s.Init.(*ast.AggregateInitExpr); ok && usage.BaseType != nil && usage.BaseType.Category == runtime.StructOrClass {
		v := i.allocLocal(usage, !s.IsStatic)
		if err := i.initAggregateInto(s.Line(), v, agg); err != nil {
			return err
		}
		i.declareLocal(s.Name, usage, v)
		if s.IsStatic {
			i.statics[s] = v
		}
		return nil
	}

	v := i.allocLocal(usage, !s.IsStatic)
	if s.Init != nil {
		initVal, err := i.eval(s.Init)
		if err != nil {
			return err
		}
		if err := i.assignInto(s.Line(), v, initVal); err != nil {
			return err
		}
	} else if usage.BaseType != nil && usage.BaseType.Category == runtime.StructOrClass && !usage.IsPointer() {
		if ctor := usage.BaseType.DefaultConstructor(); ctor != nil {
			if _, err := i.callFunction(s.Line(), ctor, v, nil); err != nil {
				return err
			}
		}
	}
	i.declareLocal(s.Name, usage, v)
	if s.IsStatic {
		i.statics[s] = v
	}
	return nil
}

// initArrayFrom fills an allocated array's element slots from a brace
// initializer or a string literal (char arrays), per §4.I.
func (i *Interpreter) initArrayFrom(line int, arr *runtime.Value, init ast.Expression) error {
	elems, _ := arr.Data().([]*runtime.Value)
	switch lit := init.(type) {
	case *ast.ArrayInitExpr:
		for idx, elExpr := range lit.Elements {
			if idx >= len(elems) {
				break
			}
			v, err := i.eval(elExpr)
			if err != nil {
				return err
			}
			if err := i.assignInto(line, elems[idx], v); err != nil {
				return err
			}
		}
		return nil
	case *ast.StringLiteral:
		for idx := range elems {
			var b byte
			if idx < len(lit.Value) {
				b = lit.Value[idx]
			}
			elems[idx].SetData(b)
		}
		return nil
	default:
		return runtimeErrorf(line, "unsupported array initializer")
	}
}

// initAggregateInto writes a struct's members from a `{ .member = e }`
// or positional brace initializer directly into its field slots (§4.I).
func (i *Interpreter) initAggregateInto(line int, v *runtime.Value, agg *ast.AggregateInitExpr) error {
	si := v.AsStruct()
	t := v.Usage.BaseType
	if si == nil || t == nil {
		return runtimeErrorf(line, "aggregate initializer applied to a non-struct value")
	}

	named := false
	for _, name := range agg.MemberNames {
		if name != "" {
			named = true
			break
		}
	}

	if named {
		for idx, name := range agg.MemberNames {
			if name == "" {
				continue
			}
			val, err := i.eval(agg.Values[idx])
			if err != nil {
				return err
			}
			_, offset, ok := t.FindMember(ident.Intern(name))
			if !ok {
				return runtimeErrorf(line, "no member named '%s'", name)
			}
			field, _ := si.Field(offset)
			field.SetData(val.Data())
		}
		return nil
	}

	for idx, valExpr := range agg.Values {
		if idx >= len(t.Members) {
			break
		}
		val, err := i.eval(valExpr)
		if err != nil {
			return err
		}
		field, _ := si.Field(t.Members[idx].Offset)
		field.SetData(val.Data())
	}
	return nil
}

func (i *Interpreter) execUsingNamespace(s *ast.UsingNamespaceStatement) error {
	ns, ok := i.ctx.Namespace.GetNamespace(s.Namespace)
	if !ok {
		ns, ok = i.Global.GetNamespace(s.Namespace)
	}
	if !ok {
		return runtimeErrorf(s.Line(), "undefined namespace '%s'", s.Namespace)
	}
	i.ctx.PushUsing(ns)
	return nil
}

func (i *Interpreter) execUsingAlias(s *ast.UsingAliasStatement) error {
	usage, err := i.resolveTypeUsage(s.Line(), s.Type)
	if err != nil {
		return err
	}
	level := i.ctx.ScopeLevel
	i.ctx.Namespace.Types.DefineAlias(s.Alias, usage, &level)
	return nil
}

func (i *Interpreter) execTypedef(s *ast.TypedefStatement) error {
	usage, err := i.resolveTypeUsage(s.Line(), s.Type)
	if err != nil {
		return err
	}
	i.ctx.Namespace.Types.DefineAlias(s.Alias, usage, nil)
	return nil
}

func (i *Interpreter) execNamespaceDecl(s *ast.NamespaceDecl) error {
	ns := i.ctx.Namespace.RequestNamespace(s.Name)
	i.ctx.PushNamespace(ns)
	defer i.ctx.PopNamespace()
	for _, stmt := range s.Statements {
		if _, err := i.execStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// execStructDecl registers a struct/class type with its bases, members
// (at C++ single-inheritance layout offsets), and methods (§4.B).
func (i *Interpreter) execStructDecl(s *ast.StructDecl) error {
	t := runtime.NewStruct(s.Name, i.ctx.Namespace)
	i.ctx.Namespace.Types.Add(t)

	offset := 0
	for _, b := range s.Bases {
		baseType, ok := i.lookupType(b.Name)
		if !ok {
			return runtimeErrorf(s.Line(), "undefined base class '%s'", b.Name)
		}
		t.RegisterBase(baseType, offset)
		offset += baseType.Size()
	}
	for _, f := range s.Fields {
		usage, err := i.resolveTypeUsage(s.Line(), f.Type)
		if err != nil {
			return err
		}
		t.RegisterMember(f.Name, usage, offset)
		offset += usage.Size()
	}
	t.SetSize(offset, 0)

	childNS := i.ctx.Namespace.RequestNamespace(s.Name)
	for _, m := range s.Methods {
		fn, err := i.buildFunction(m, childNS)
		if err != nil {
			return err
		}
		t.RegisterMethod(fn)
	}
	return nil
}

// execEnumDecl registers an enum or enum class: constants live in the
// type's own StaticVars (so `Name::Value` resolves via
// Namespace.RetrieveInstance's type-qualified fallback) and, for plain
// (unscoped) enums, are additionally injected unqualified into the
// enclosing namespace (§4.D).
func (i *Interpreter) execEnumDecl(s *ast.EnumDecl) error {
	values := make([]runtime.EnumValue, 0, len(s.Values))
	next := int64(0)
	for idx, name := range s.Values {
		v := next
		if idx < len(s.ValueInit) && s.ValueInit[idx] != nil {
			val, err := i.eval(s.ValueInit[idx])
			if err != nil {
				return err
			}
			v = val.AsInt64()
		}
		values = append(values, runtime.EnumValue{Name: ident.Intern(name), Value: v})
		next = v + 1
	}

	var t *runtime.Type
	if s.IsClass {
		t = runtime.NewEnumClass(s.Name, i.ctx.Namespace, values)
	} else {
		t = runtime.NewEnum(s.Name, i.ctx.Namespace, values)
	}
	i.ctx.Namespace.Types.Add(t)

	usage := runtime.TypeUsage{BaseType: t}
	for _, ev := range values {
		inst := &runtime.Instance{Name: ev.Name, Usage: usage, Value: runtime.NewExternal(usage, ev.Value), Flags: runtime.FlagEnumValue}
		t.StaticVars.Declare(inst)
		if !s.IsClass {
			i.ctx.Namespace.Instances.Declare(inst)
		}
	}
	return nil
}

func (i *Interpreter) execFunctionDecl(s *ast.FunctionDecl) error {
	if s.Body == nil {
		return nil
	}
	fn, err := i.buildFunction(s, i.ctx.Namespace)
	if err != nil {
		return err
	}
	i.ctx.Namespace.Functions.Add(fn)
	return nil
}

// buildFunction compiles a FunctionDecl into a runtime.Function whose
// Body is a ScriptFunction closure capturing the using-directives
// active at this point of execution, the declaration's owning
// namespace, and the statement body (§4.J).
func (i *Interpreter) buildFunction(decl *ast.FunctionDecl, owner *runtime.Namespace) (*runtime.Function, error) {
	params := make([]runtime.Parameter, len(decl.Params))
	for idx, p := range decl.Params {
		usage, err := i.resolveTypeUsage(decl.Line(), p.Type)
		if err != nil {
			return nil, err
		}
		params[idx] = runtime.Parameter{Name: ident.Intern(p.Name), Usage: usage}
	}
	retUsage, err := i.resolveTypeUsage(decl.Line(), decl.ReturnType)
	if err != nil {
		return nil, err
	}

	usingSnapshot := append([]*runtime.Namespace(nil), i.ctx.Namespace.UsingDirectives...)

	return &runtime.Function{
		Name:       ident.Intern(decl.Name),
		Owner:      owner,
		ReturnType: retUsage,
		Params:     params,
		IsVariadic: decl.Variadic,
		IsStatic:   decl.IsStatic,
		Body:       &ScriptFunction{Decl: decl, Owner: owner, Using: usingSnapshot},
	}, nil
}
