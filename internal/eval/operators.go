package eval

import (
	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/ident"
	"github.com/cflat-go/cflat/internal/runtime"
)

// resolveLValue evaluates expr to the actual storage slot an assignment
// writes through, rather than a transient copy — which is what most
// expression kinds already return from eval, except pointer
// dereference, which eval renders as a fresh External wrapper.
func (i *Interpreter) resolveLValue(expr ast.Expression) (*runtime.Value, error) {
	if u, ok := expr.(*ast.UnaryOperation); ok && !u.Postfix && u.Operator == "*" {
		ptr, err := i.eval(u.Operand)
		if err != nil {
			return nil, err
		}
		addr := ptr.AsAddr()
		if addr.Target == nil {
			return nil, runtimeErrorf(expr.Line(), "null pointer access ('*')")
		}
		return addr.Target, nil
	}
	return i.eval(expr)
}

// evalAssignment evaluates the right-hand side then writes it through
// the resolved left-hand storage, applying a compound operator first
// when present (§4.J "Assignment").
func (i *Interpreter) evalAssignment(n *ast.Assignment) (*runtime.Value, error) {
	rhs, err := i.eval(n.Value)
	if err != nil {
		return nil, err
	}
	target, err := i.resolveLValue(n.Target)
	if err != nil {
		return nil, err
	}

	if n.Operator != "" {
		combined, err := i.applyBinary(n.Line(), n.Operator, target, rhs)
		if err != nil {
			return nil, err
		}
		rhs = combined
	}

	if err := i.assignInto(n.Line(), target, rhs); err != nil {
		return nil, err
	}
	return target, nil
}

// assignInto copies rhs's value into target per §3 copy semantics:
// registered operator= first, else byte copy, else (for references)
// rebind the external alias.
func (i *Interpreter) assignInto(line int, target, rhs *runtime.Value) error {
	if target.Usage.BaseType != nil && target.Usage.BaseType.Category == runtime.StructOrClass && !target.Usage.IsPointer() {
		if fn, thisVal, ok := i.lookupOperatorMethod("operator=", target, []*runtime.Value{rhs}); ok {
			_, err := i.callFunction(line, fn, thisVal, []*runtime.Value{rhs})
			return err
		}
	}
	target.SetData(rhs.Data())
	return nil
}

// evalUnaryOperation special-cases the overloadable operator forms on
// struct operands first, then interprets the built-in forms directly
// (§4.J "UnaryOperation").
func (i *Interpreter) evalUnaryOperation(n *ast.UnaryOperation) (*runtime.Value, error) {
	switch n.Operator {
	case "&":
		return i.evalAddressOf(n)
	case "*":
		ptr, err := i.eval(n.Operand)
		if err != nil {
			return nil, err
		}
		addr := ptr.AsAddr()
		if addr.Target == nil {
			return nil, runtimeErrorf(n.Line(), "null pointer access ('*')")
		}
		return addr.Target, nil
	}

	operand, err := i.eval(n.Operand)
	if err != nil {
		return nil, err
	}

	if operand.Usage.BaseType != nil && operand.Usage.BaseType.Category == runtime.StructOrClass {
		opName := "operator" + n.Operator
		if fn, thisVal, ok := i.lookupOperatorMethod(opName, operand, nil); ok {
			return i.callFunction(n.Line(), fn, thisVal, nil)
		}
	}

	switch n.Operator {
	case "!":
		return runtime.NewExternal(runtime.TypeUsage{BaseType: i.builtins["bool"]}, !operand.AsBool()), nil
	case "-":
		if operand.Usage.IsFloatingPoint() {
			return runtime.NewExternal(operand.Usage, -operand.AsFloat64()), nil
		}
		return runtime.NewExternal(operand.Usage, -operand.AsInt64()), nil
	case "~":
		return runtime.NewExternal(operand.Usage, ^operand.AsInt64()), nil
	case "++", "--":
		return i.evalIncDec(n, operand)
	default:
		return nil, runtimeErrorf(n.Line(), "unsupported unary operator '%s'", n.Operator)
	}
}

func (i *Interpreter) evalAddressOf(n *ast.UnaryOperation) (*runtime.Value, error) {
	if idx, ok := n.Operand.(*ast.ArrayElementAccess); ok {
		base, err := i.eval(idx.Base)
		if err != nil {
			return nil, err
		}
		iv, err := i.eval(idx.Index)
		if err != nil {
			return nil, err
		}
		if elems, ok := base.Data().([]*runtime.Value); ok {
			k := int(iv.AsInt64())
			usage := base.Usage.ElementUsage().Pointed()
			return runtime.NewExternal(usage, runtime.Addr{Target: elems[k], Elems: elems, Index: k}), nil
		}
	}
	operand, err := i.resolveLValue(n.Operand)
	if err != nil {
		return nil, err
	}
	if operand.Usage.IsArray() {
		return arrayToPointer(operand), nil
	}
	return runtime.NewExternal(operand.Usage.Pointed(), runtime.Addr{Target: operand}), nil
}

// evalIncDec advances integers by one and pointers by one pointee-sized
// step (§4.J "++ and -- on pointers advance by the pointee size"),
// returning the pre- or post-value per Postfix.
func (i *Interpreter) evalIncDec(n *ast.UnaryOperation, operand *runtime.Value) (*runtime.Value, error) {
	old := runtime.NewExternal(operand.Usage, operand.Data())
	delta := int64(1)
	if n.Operator == "--" {
		delta = -1
	}

	if operand.Usage.IsPointer() {
		addr := operand.AsAddr()
		if addr.Elems != nil {
			addr.Index += int(delta)
			if addr.Index >= 0 && addr.Index < len(addr.Elems) {
				addr.Target = addr.Elems[addr.Index]
			} else {
				addr.Target = nil
			}
			operand.SetData(addr)
		}
	} else if operand.Usage.IsFloatingPoint() {
		operand.SetData(operand.AsFloat64() + float64(delta))
	} else {
		operand.SetData(operand.AsInt64() + delta)
	}

	if n.Postfix {
		return old, nil
	}
	return operand, nil
}

// evalBinaryOperation dispatches to operator-overload resolution when
// either side is a struct/class, else evaluates numerically with
// integer<->float promotion; && and || short-circuit (§4.J).
func (i *Interpreter) evalBinaryOperation(n *ast.BinaryOperation) (*runtime.Value, error) {
	if n.Operator == "&&" || n.Operator == "||" {
		return i.evalShortCircuit(n)
	}

	left, err := i.eval(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(n.Right)
	if err != nil {
		return nil, err
	}
	return i.applyBinary(n.Line(), n.Operator, left, right)
}

func (i *Interpreter) evalShortCircuit(n *ast.BinaryOperation) (*runtime.Value, error) {
	left, err := i.eval(n.Left)
	if err != nil {
		return nil, err
	}
	boolUsage := runtime.TypeUsage{BaseType: i.builtins["bool"]}
	if n.Operator == "&&" && !left.AsBool() {
		return runtime.NewExternal(boolUsage, false), nil
	}
	if n.Operator == "||" && left.AsBool() {
		return runtime.NewExternal(boolUsage, true), nil
	}
	right, err := i.eval(n.Right)
	if err != nil {
		return nil, err
	}
	return runtime.NewExternal(boolUsage, right.AsBool()), nil
}

// applyBinary is the shared numeric/overload core used by both plain
// binary expressions and compound assignment.
func (i *Interpreter) applyBinary(line int, op string, left, right *runtime.Value) (*runtime.Value, error) {
	isStruct := func(v *runtime.Value) bool {
		return v.Usage.BaseType != nil && v.Usage.BaseType.Category == runtime.StructOrClass && !v.Usage.IsPointer()
	}
	if isStruct(left) || isStruct(right) {
		opName := "operator" + op
		if fn, thisVal, ok := i.lookupOperatorMethod(opName, left, []*runtime.Value{right}); ok {
			return i.callFunction(line, fn, thisVal, []*runtime.Value{right})
		}
		if fn, ok := i.lookupOperatorFreeFunction(opName); ok {
			return i.callFunction(line, fn, nil, []*runtime.Value{left, right})
		}
		return nil, runtimeErrorf(line, "invalid operator '%s' for operand type", op)
	}

	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return i.applyComparison(op, left, right), nil
	case "&", "|", "^", "<<", ">>":
		return i.applyBitwise(op, left, right), nil
	case "/":
		if !left.Usage.IsFloatingPoint() && !right.Usage.IsFloatingPoint() && right.AsInt64() == 0 {
			return nil, runtimeErrorf(line, "division by zero")
		}
		return i.applyArithmetic(op, left, right), nil
	case "%":
		if right.AsInt64() == 0 {
			return nil, runtimeErrorf(line, "division by zero")
		}
		return i.applyArithmetic(op, left, right), nil
	case "+", "-", "*":
		return i.applyArithmetic(op, left, right), nil
	default:
		return nil, runtimeErrorf(line, "unsupported binary operator '%s'", op)
	}
}

func (i *Interpreter) widenedUsage(left, right *runtime.Value) runtime.TypeUsage {
	if left.Usage.IsFloatingPoint() || right.Usage.IsFloatingPoint() {
		if left.Usage.BaseType != nil && left.Usage.BaseType.ID.String() == "double" ||
			right.Usage.BaseType != nil && right.Usage.BaseType.ID.String() == "double" {
			return runtime.TypeUsage{BaseType: i.builtins["double"]}
		}
		return runtime.TypeUsage{BaseType: i.builtins["float"]}
	}
	if left.Usage.Size() >= right.Usage.Size() {
		return left.Usage
	}
	return right.Usage
}

func (i *Interpreter) applyArithmetic(op string, left, right *runtime.Value) *runtime.Value {
	usage := i.widenedUsage(left, right)
	if usage.IsFloatingPoint() {
		a, b := left.AsFloat64(), right.AsFloat64()
		var r float64
		switch op {
		case "+":
			r = a + b
		case "-":
			r = a - b
		case "*":
			r = a * b
		case "/":
			r = a / b
		}
		return runtime.NewExternal(usage, r)
	}
	a, b := left.AsInt64(), right.AsInt64()
	var r int64
	switch op {
	case "+":
		r = a + b
	case "-":
		r = a - b
	case "*":
		r = a * b
	case "/":
		r = a / b
	case "%":
		r = a % b
	}
	return runtime.NewExternal(usage, r)
}

func (i *Interpreter) applyBitwise(op string, left, right *runtime.Value) *runtime.Value {
	usage := i.widenedUsage(left, right)
	a, b := left.AsInt64(), right.AsInt64()
	var r int64
	switch op {
	case "&":
		r = a & b
	case "|":
		r = a | b
	case "^":
		r = a ^ b
	case "<<":
		r = a << uint(b)
	case ">>":
		r = a >> uint(b)
	}
	return runtime.NewExternal(usage, r)
}

func (i *Interpreter) applyComparison(op string, left, right *runtime.Value) *runtime.Value {
	boolUsage := runtime.TypeUsage{BaseType: i.builtins["bool"]}
	var result bool
	if left.Usage.IsPointer() || right.Usage.IsPointer() {
		la, ra := left.AsAddr(), right.AsAddr()
		switch op {
		case "==":
			result = la.Target == ra.Target
		case "!=":
			result = la.Target != ra.Target
		}
		return runtime.NewExternal(boolUsage, result)
	}
	if left.Usage.IsFloatingPoint() || right.Usage.IsFloatingPoint() {
		a, b := left.AsFloat64(), right.AsFloat64()
		switch op {
		case "==":
			result = a == b
		case "!=":
			result = a != b
		case "<":
			result = a < b
		case "<=":
			result = a <= b
		case ">":
			result = a > b
		case ">=":
			result = a >= b
		}
		return runtime.NewExternal(boolUsage, result)
	}
	a, b := left.AsInt64(), right.AsInt64()
	switch op {
	case "==":
		result = a == b
	case "!=":
		result = a != b
	case "<":
		result = a < b
	case "<=":
		result = a <= b
	case ">":
		result = a > b
	case ">=":
		result = a >= b
	}
	return runtime.NewExternal(boolUsage, result)
}

// lookupOperatorMethod resolves opName as a method on receiver's type,
// searching derived-then-base per FindMethodUsage, and returns the
// receiver itself as the this value; the match's ThisOffset is not
// applied.
func (i *Interpreter) lookupOperatorMethod(opName string, receiver *runtime.Value, args []*runtime.Value) (*runtime.Function, *runtime.Value, bool) {
	if receiver == nil || receiver.Usage.BaseType == nil || receiver.Usage.BaseType.Category != runtime.StructOrClass {
		return nil, nil, false
	}
	argUsages := make([]runtime.TypeUsage, len(args))
	for idx, a := range args {
		argUsages[idx] = a.Usage
	}
	mu, ok := receiver.Usage.BaseType.FindMethodUsage(ident.Intern(opName), argUsages, i.perfectMatch, i.compatibleMatch)
	if !ok {
		return nil, nil, false
	}
	return mu.Method, receiver, true
}

// lookupOperatorFreeFunction resolves opName as a free function in the
// current namespace, with using-directive fallback (§4.J BinaryOperation
// (b)/(c)).
func (i *Interpreter) lookupOperatorFreeFunction(opName string) (*runtime.Function, bool) {
	id := ident.Intern(opName)
	if fns := i.ctx.Namespace.Functions.Overloads(id); len(fns) > 0 {
		return fns[0], true
	}
	if fns := i.ctx.Namespace.LookupFunctionViaUsing(opName); len(fns) > 0 {
		return fns[0], true
	}
	return nil, false
}

func (i *Interpreter) perfectMatch(param, arg runtime.TypeUsage) bool {
	return i.Overload.Rank(param, arg, 0) == 0
}

func (i *Interpreter) compatibleMatch(param, arg runtime.TypeUsage) bool {
	return i.Overload.Rank(param, arg, 0) != 6
}

// evalSizeOf resolves either the type-usage form or the expression form
// (§4.J "SizeOf").
func (i *Interpreter) evalSizeOf(n *ast.SizeOfExpr) (*runtime.Value, error) {
	intUsage := runtime.TypeUsage{BaseType: i.builtins["int"]}
	if n.TypeArg != nil {
		ru, err := i.resolveTypeUsage(n.Line(), *n.TypeArg)
		if err != nil {
			return nil, err
		}
		return runtime.NewExternal(intUsage, int64(ru.Size())), nil
	}
	v, err := i.eval(n.ValueArg)
	if err != nil {
		return nil, err
	}
	return runtime.NewExternal(intUsage, int64(v.Usage.Size())), nil
}

// evalCast implements the four C++ cast forms (§4.J "Cast").
func (i *Interpreter) evalCast(n *ast.CastExpr) (*runtime.Value, error) {
	target, err := i.resolveTypeUsage(n.Line(), n.Target)
	if err != nil {
		return nil, err
	}
	v, err := i.eval(n.Value)
	if err != nil {
		return nil, err
	}

	isVoidPtr := func(u runtime.TypeUsage) bool {
		return u.IsPointer() && u.BaseType != nil && u.BaseType.IsVoid()
	}

	switch n.Kind {
	case ast.ReinterpretCast:
		return runtime.NewExternal(target, v.Data()), nil
	case ast.DynamicCast:
		addr := v.AsAddr()
		if addr.Target == nil {
			return runtime.NewExternal(target, runtime.Addr{}), nil
		}
		if target.BaseType != nil && v.Usage.BaseType != nil &&
			(v.Usage.BaseType.DerivedFrom(target.BaseType) || v.Usage.BaseType == target.BaseType) {
			return runtime.NewExternal(target, addr), nil
		}
		return runtime.NewExternal(target, runtime.Addr{}), nil
	case ast.StaticCast, ast.CStyleCast:
		if target.IsPointer() && v.Usage.IsPointer() {
			if isVoidPtr(target) || isVoidPtr(v.Usage) || target.BaseType == v.Usage.BaseType {
				return runtime.NewExternal(target, v.Data()), nil
			}
			addr := v.AsAddr()
			if addr.Target != nil && target.BaseType != nil {
				if v.Usage.BaseType.DerivedFrom(target.BaseType) {
					return runtime.NewExternal(target, addr), nil
				}
				if target.BaseType.DerivedFrom(v.Usage.BaseType) {
					return runtime.NewExternal(target, addr), nil
				}
			}
			return runtime.NewExternal(target, addr), nil
		}
		if target.IsFloatingPoint() {
			return runtime.NewExternal(target, v.AsFloat64()), nil
		}
		return runtime.NewExternal(target, v.AsInt64()), nil
	default:
		return nil, runtimeErrorf(n.Line(), "unsupported cast kind")
	}
}
