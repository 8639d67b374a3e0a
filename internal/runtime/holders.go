package runtime

import "github.com/cflat-go/cflat/internal/ident"

// InstanceFlag records per-instance metadata bits (§3).
type InstanceFlag int

const (
	FlagNone      InstanceFlag = 0
	FlagEnumValue InstanceFlag = 1 << iota
)

// HasFlag reports whether f is set on flags.
func HasFlag(flags, f InstanceFlag) bool { return flags&f != 0 }

// Instance is a name -> value binding in some scope (§3): a namespace
// variable, a block-scope local, a struct's static member, or an enum
// constant.
type Instance struct {
	Name       ident.Handle
	Usage      TypeUsage
	Value      *Value
	ScopeLevel int
	Flags      InstanceFlag
}

// InstancesHolder is an ordered, scope-releasable symbol list (§4.C):
// "an ordered list (latest-shadows-earliest on lookup) supporting
// scoped release."
type InstancesHolder struct {
	order []*Instance
}

// NewInstancesHolder returns an empty holder.
func NewInstancesHolder() *InstancesHolder { return &InstancesHolder{} }

// Declare appends a new instance to the holder.
func (h *InstancesHolder) Declare(inst *Instance) {
	h.order = append(h.order, inst)
}

// Lookup finds the most recently declared instance named id — "latest
// shadows earliest" — scanning back to front.
func (h *InstancesHolder) Lookup(id ident.Handle) (*Instance, bool) {
	for i := len(h.order) - 1; i >= 0; i-- {
		if h.order[i].Name.Equal(id) {
			return h.order[i], true
		}
	}
	return nil, false
}

// All returns every declared instance, in declaration order.
func (h *InstancesHolder) All() []*Instance { return h.order }

// ReleaseInstances pops from the back while the popped element has
// scope >= level, invoking dtor (when runDtors is set and the instance
// is a concrete, non-pointer struct/class) before removing it from the
// holder (§4.C).
func (h *InstancesHolder) ReleaseInstances(level int, runDtors bool, dtor func(*Instance) error) error {
	for len(h.order) > 0 {
		top := h.order[len(h.order)-1]
		if top.ScopeLevel < level {
			break
		}
		if runDtors && dtor != nil && top.Usage.BaseType != nil &&
			top.Usage.BaseType.Category == StructOrClass && !top.Usage.IsPointer() {
			if err := dtor(top); err != nil {
				return err
			}
		}
		h.order = h.order[:len(h.order)-1]
	}
	return nil
}

// TypeAlias is a typedef/using-alias binding, optionally scoped to a
// block (nil ScopeLevel means file/namespace-level).
type TypeAlias struct {
	Name       ident.Handle
	Usage      TypeUsage
	ScopeLevel *int
}

// TypesHolder indexes both owned Types and TypeAliases by name hash
// (§4.C).
type TypesHolder struct {
	types   map[uint32]*Type
	aliases map[uint32]*TypeAlias
}

// NewTypesHolder returns an empty holder.
func NewTypesHolder() *TypesHolder {
	return &TypesHolder{types: make(map[uint32]*Type), aliases: make(map[uint32]*TypeAlias)}
}

// Add registers t under its own identifier (use AddTemplate for
// template instantiations, which key on a composite hash instead).
func (h *TypesHolder) Add(t *Type) { h.types[t.ID.Hash()] = t }

// Get looks up a plain (non-template) type by identifier.
func (h *TypesHolder) Get(id ident.Handle) (*Type, bool) {
	t, ok := h.types[id.Hash()]
	return t, ok
}

// AddTemplate registers a template instantiation under the composite
// hash of its identifier and template arguments (§3: "looked up by the
// composite hash (identifier XOR template-arg hashes XOR template-arg
// pointer levels)").
func (h *TypesHolder) AddTemplate(id ident.Handle, args []TypeUsage, t *Type) {
	h.types[CompositeHash(id, args)] = t
}

// GetTemplate looks up a template instantiation by identifier + args.
func (h *TypesHolder) GetTemplate(id ident.Handle, args []TypeUsage) (*Type, bool) {
	t, ok := h.types[CompositeHash(id, args)]
	return t, ok
}

// CompositeHash computes the template-instantiation cache key §3
// specifies: the identifier hash XORed with each template argument's
// base-type hash and pointer level.
func CompositeHash(id ident.Handle, args []TypeUsage) uint32 {
	h := id.Hash()
	for _, a := range args {
		if a.BaseType != nil {
			h ^= a.BaseType.ID.Hash()
		}
		h ^= uint32(a.PointerLevel) * 2654435761
	}
	return h
}

// DefineAlias registers a typedef/using-alias, optionally scoped.
func (h *TypesHolder) DefineAlias(name string, usage TypeUsage, scopeLevel *int) {
	id := ident.Intern(name)
	h.aliases[id.Hash()] = &TypeAlias{Name: id, Usage: usage, ScopeLevel: scopeLevel}
}

// LookupAlias looks up a typedef/using-alias by name.
func (h *TypesHolder) LookupAlias(id ident.Handle) (*TypeAlias, bool) {
	a, ok := h.aliases[id.Hash()]
	return a, ok
}
