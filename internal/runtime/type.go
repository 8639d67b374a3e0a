// Package runtime implements Cflat's shared data model: the Type
// variants, TypeUsage, the per-scope symbol containers, the namespace
// tree, and the Value/stack machinery that both the parser and the
// evaluator mutate (§3, §4.B-§4.E).
//
// These pieces live in one package, not four, because they form a
// genuine reference cycle: a Function points back at its owning
// Namespace; a Namespace owns Types that in turn own nested
// FunctionsHolders/InstancesHolders naming that same Namespace; a
// struct's static members are Instances holding Values typed by
// TypeUsages of other Types in the same tree. Co-locating them resolves
// the cycle directly instead of introducing arena-index indirection.
package runtime

import "github.com/cflat-go/cflat/internal/ident"

// Category tags the four kinds of Type §3 distinguishes, plus the void
// pseudo-type.
type Category int

const (
	Void Category = iota
	BuiltIn
	Enum
	EnumClass
	StructOrClass
)

func (c Category) String() string {
	switch c {
	case Void:
		return "void"
	case BuiltIn:
		return "builtin"
	case Enum:
		return "enum"
	case EnumClass:
		return "enum class"
	case StructOrClass:
		return "struct-or-class"
	default:
		return "unknown"
	}
}

// Type is a registered C++ type: a built-in, an enum, an enum class, or
// a struct/class. Every Type is owned by exactly one Namespace (or by a
// TypesHolder nested in an enclosing struct type).
type Type struct {
	Category Category
	ID       ident.Handle
	Owner    *Namespace // owning namespace; nil when owned by an enclosing struct

	size      int
	alignment int

	// Enum / EnumClass
	EnumValues []EnumValue

	// StructOrClass
	Bases       []BaseType
	Members     []Member
	Methods     *FunctionsHolder
	NestedTypes *TypesHolder
	StaticVars  *InstancesHolder

	// Template instantiation identity: a struct-or-class type
	// registered from a host template (e.g. vector<int>) is identified
	// by its base identifier plus these argument usages (§3 "A type is
	// looked up by the composite hash").
	TemplateArgs []TypeUsage

	defaultCtor int // index into Methods' slot for the owning identifier, -1 if none
	copyCtor    int
	dtor        int
}

// EnumValue is one enumerator of an Enum/EnumClass type.
type EnumValue struct {
	Name  ident.Handle
	Value int64
}

// BaseType records a direct base class and the byte offset of its
// sub-object within the derived layout, computed at registration time
// with C++ single-inheritance layout rules (§3 invariants).
type BaseType struct {
	Type   *Type
	Offset int
}

// Member is one non-static data member of a struct/class type.
type Member struct {
	Name   ident.Handle
	Usage  TypeUsage
	Offset int
}

// NewBuiltIn registers a built-in scalar type (int, float, bool, char,
// void, …) of the given byte size. Built-ins have no owner namespace;
// they're shared across the whole type system.
func NewBuiltIn(name string, size int) *Type {
	return &Type{
		Category:    BuiltIn,
		ID:          ident.Intern(name),
		size:        size,
		alignment:   size,
		defaultCtor: -1,
		copyCtor:    -1,
		dtor:        -1,
	}
}

// NewVoid returns the single void pseudo-type used for function return
// usages and pointer arithmetic bridging (void*).
func NewVoid() *Type {
	return &Type{Category: Void, ID: ident.Intern("void"), defaultCtor: -1, copyCtor: -1, dtor: -1}
}

// NewEnum registers a plain (unscoped) enum type.
func NewEnum(name string, owner *Namespace, values []EnumValue) *Type {
	return &Type{
		Category: Enum, ID: ident.Intern(name), Owner: owner,
		EnumValues: values, size: 4, alignment: 4,
		defaultCtor: -1, copyCtor: -1, dtor: -1,
	}
}

// NewEnumClass registers a scoped `enum class` type.
func NewEnumClass(name string, owner *Namespace, values []EnumValue) *Type {
	t := NewEnum(name, owner, values)
	t.Category = EnumClass
	return t
}

// NewStruct registers an empty struct/class type shell; call
// RegisterBase/RegisterMember/RegisterMethod to fill it in, then
// RefreshSpecialMembers to recompute the cached ctor/dtor indices.
func NewStruct(name string, owner *Namespace) *Type {
	t := &Type{
		Category:    StructOrClass,
		ID:          ident.Intern(name),
		Owner:       owner,
		Methods:     NewFunctionsHolder(),
		NestedTypes: NewTypesHolder(),
		StaticVars:  NewInstancesHolder(),
		defaultCtor: -1,
		copyCtor:    -1,
		dtor:        -1,
	}
	return t
}

// Size returns the type's size in bytes as registered by the host (for
// BuiltIn) or computed from member layout (for StructOrClass).
func (t *Type) Size() int { return t.size }

// SetSize sets the registered size (and alignment, if positive); used
// by host registration calls for struct/class types where size is
// supplied explicitly (§4.B "register this struct with size S").
func (t *Type) SetSize(size, alignment int) {
	t.size = size
	if alignment > 0 {
		t.alignment = alignment
	} else {
		t.alignment = size
	}
}

// Alignment returns the type's required alignment in bytes.
func (t *Type) Alignment() int { return t.alignment }

// IsVoid reports whether t is the void pseudo-type.
func (t *Type) IsVoid() bool { return t.Category == Void }

// RegisterBase appends a direct base type at the given derived-layout
// offset (computed by the caller using C++ layout rules, §4.B).
func (t *Type) RegisterBase(base *Type, offset int) {
	t.Bases = append(t.Bases, BaseType{Type: base, Offset: offset})
}

// RegisterMember appends a data member at the given offset. Member
// offsets must be monotonically non-decreasing and respect the member's
// own alignment; the host registration layer is responsible for this
// invariant (§3).
func (t *Type) RegisterMember(name string, usage TypeUsage, offset int) {
	t.Members = append(t.Members, Member{Name: ident.Intern(name), Usage: usage, Offset: offset})
}

// RegisterMethod adds a method (or overload) and refreshes the cached
// default-constructor / copy-constructor / destructor indices if the
// method could be one of those special members (§4.B).
func (t *Type) RegisterMethod(fn *Function) {
	t.Methods.Add(fn)
	t.RefreshSpecialMembers()
}

// RefreshSpecialMembers rescans t's own method list (not bases) for the
// default constructor (same name as the type, zero parameters), copy
// constructor (same name, one parameter by reference to the same type;
// the parameter's const-ness is not checked), and destructor (name "~"
// + type name).
func (t *Type) RefreshSpecialMembers() {
	t.defaultCtor, t.copyCtor, t.dtor = -1, -1, -1
	typeName := t.ID.String()
	dtorName := "~" + typeName
	for _, fns := range t.Methods.all {
		for i, fn := range fns {
			switch fn.Name.String() {
			case typeName:
				if len(fn.Params) == 0 {
					t.defaultCtor = fnSlot(fns, i)
				} else if len(fn.Params) == 1 && fn.Params[0].Usage.BaseType == t && fn.Params[0].Usage.Reference {
					t.copyCtor = fnSlot(fns, i)
				}
			case dtorName:
				t.dtor = fnSlot(fns, i)
			}
		}
	}
}

// fnSlot packs an overload-list index into a single int; here it's
// simply the position since Methods.all is keyed per-identifier.
func fnSlot(_ []*Function, i int) int { return i }

// DefaultConstructor returns the cached default constructor, or nil.
func (t *Type) DefaultConstructor() *Function {
	return t.specialMethod(t.ID.String(), t.defaultCtor)
}

// CopyConstructor returns the cached copy constructor, or nil.
func (t *Type) CopyConstructor() *Function {
	return t.specialMethod(t.ID.String(), t.copyCtor)
}

// Destructor returns the cached destructor, or nil.
func (t *Type) Destructor() *Function {
	return t.specialMethod("~"+t.ID.String(), t.dtor)
}

func (t *Type) specialMethod(name string, idx int) *Function {
	if idx < 0 {
		return nil
	}
	fns := t.Methods.all[ident.Intern(name).Hash()]
	if idx >= len(fns) {
		return nil
	}
	return fns[idx]
}

// DerivedFrom walks the base-type chain transitively and reports
// whether t derives from base (directly or through an ancestor).
func (t *Type) DerivedFrom(base *Type) bool {
	for _, b := range t.Bases {
		if b.Type == base || b.Type.DerivedFrom(base) {
			return true
		}
	}
	return false
}

// GetOffset returns the direct-base offset of base within t's layout,
// or 0 if base is not a direct base of t (§4.B).
func (t *Type) GetOffset(base *Type) int {
	for _, b := range t.Bases {
		if b.Type == base {
			return b.Offset
		}
	}
	return 0
}

// FindMember searches own members first, then each base in declaration
// order, returning the member and the cumulative offset to add to a
// `this` pointer of type t to reach it.
func (t *Type) FindMember(id ident.Handle) (Member, int, bool) {
	for _, m := range t.Members {
		if m.Name.Equal(id) {
			return m, 0, true
		}
	}
	for _, b := range t.Bases {
		if m, off, ok := b.Type.FindMember(id); ok {
			return m, b.Offset + off, true
		}
	}
	return Member{}, 0, false
}

// MethodUsage pairs a resolved Method with the cumulative `this`-pointer
// offset that must be applied before calling it, when the method was
// found on a base class at a non-zero offset (§4.B).
type MethodUsage struct {
	Method     *Function
	ThisOffset int
}

// FindMethodUsage performs the two-pass lookup §4.B describes: own
// methods first (perfect match on every parameter, then compatible
// match), then each base in declaration order with accumulated offset.
// rank is supplied by the caller (internal/overload) to avoid a
// dependency cycle; it must return true for parameters that are
// acceptable under the requested pass ("perfect" vs "compatible").
func (t *Type) FindMethodUsage(id ident.Handle, params []TypeUsage, perfect func(param, arg TypeUsage) bool, compatible func(param, arg TypeUsage) bool) (MethodUsage, bool) {
	if fn, ok := matchOverload(t.Methods.all[id.Hash()], params, perfect); ok {
		return MethodUsage{Method: fn}, true
	}
	if fn, ok := matchOverload(t.Methods.all[id.Hash()], params, compatible); ok {
		return MethodUsage{Method: fn}, true
	}
	for _, b := range t.Bases {
		if mu, ok := b.Type.FindMethodUsage(id, params, perfect, compatible); ok {
			mu.ThisOffset += b.Offset
			return mu, true
		}
	}
	return MethodUsage{}, false
}

func matchOverload(candidates []*Function, params []TypeUsage, ok func(param, arg TypeUsage) bool) (*Function, bool) {
	for _, fn := range candidates {
		if len(fn.Params) != len(params) {
			continue
		}
		match := true
		for i, p := range fn.Params {
			if !ok(p.Usage, params[i]) {
				match = false
				break
			}
		}
		if match {
			return fn, true
		}
	}
	return nil, false
}
