package runtime

import (
	"strings"

	"github.com/cflat-go/cflat/internal/ident"
)

// Namespace is a hierarchical symbol scope with "::" resolution (§3,
// §4.D): an identifier, its fully-qualified name, a parent link, child
// namespaces keyed by hash, and the three symbol containers.
type Namespace struct {
	Name     ident.Handle
	FullName ident.Handle
	Parent   *Namespace
	children map[uint32]*Namespace

	Types     *TypesHolder
	Functions *FunctionsHolder
	Instances *InstancesHolder

	// UsingDirectives is the stack of namespaces brought into scope by
	// `using namespace N;` at this namespace's current point of
	// parsing, most-recently-declared last (§3 ParsingContext / §4.D).
	UsingDirectives []*Namespace
}

// NewGlobalNamespace returns the root "::" namespace.
func NewGlobalNamespace() *Namespace {
	return newNamespace("", nil)
}

func newNamespace(fullName string, parent *Namespace) *Namespace {
	leaf := fullName
	if _, l, ok := ident.SplitLastScope(fullName); ok {
		leaf = l
	}
	return &Namespace{
		Name:      ident.Intern(leaf),
		FullName:  ident.Intern(fullName),
		Parent:    parent,
		children:  make(map[uint32]*Namespace),
		Types:     NewTypesHolder(),
		Functions: NewFunctionsHolder(),
		Instances: NewInstancesHolder(),
	}
}

// RequestNamespace creates any missing nodes along "a::b::c" and
// returns the leaf, per §4.D.
func (n *Namespace) RequestNamespace(path string) *Namespace {
	if path == "" {
		return n
	}
	cur := n
	full := n.fullNameOf("")
	segments := strings.Split(path, "::")
	for _, seg := range segments {
		if full == "" {
			full = seg
		} else {
			full = full + "::" + seg
		}
		id := ident.Intern(seg)
		child, ok := cur.children[id.Hash()]
		if !ok {
			child = newNamespace(full, cur)
			cur.children[id.Hash()] = child
		}
		cur = child
	}
	return cur
}

func (n *Namespace) fullNameOf(_ string) string {
	return n.FullName.String()
}

// Children returns n's direct child namespaces in an unspecified order,
// for tooling that walks the namespace tree (e.g. the environment
// façade's namespace-tree dump).
func (n *Namespace) Children() []*Namespace {
	out := make([]*Namespace, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	return out
}

// GetNamespace resolves "a::b::c" against existing child namespaces
// only; it never creates nodes (§4.D).
func (n *Namespace) GetNamespace(path string) (*Namespace, bool) {
	if path == "" {
		return n, true
	}
	cur := n
	for _, seg := range strings.Split(path, "::") {
		id := ident.Intern(seg)
		child, ok := cur.children[id.Hash()]
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// splitQualified splits a fully qualified name into a namespace path
// and a leaf using the *last* "::" separator (§4.D).
func splitQualified(name string) (path, leaf string) {
	p, l, ok := ident.SplitLastScope(name)
	if !ok {
		return "", name
	}
	return p, l
}

// resolveNamespacePath walks from n down the given path, returning the
// resulting namespace and ok=false if any segment is missing.
func (n *Namespace) resolveNamespacePath(path string) (*Namespace, bool) {
	return n.GetNamespace(path)
}

// GetType resolves a fully qualified type name. When extendSearchToParent
// is set and the leaf is not found in the resolved namespace, the search
// recurses to the parent namespace (§4.D).
func (n *Namespace) GetType(qualifiedName string, extendSearchToParent bool) (*Type, bool) {
	path, leaf := splitQualified(qualifiedName)
	ns, ok := n.resolveNamespacePath(path)
	if ok {
		if t, ok := ns.Types.Get(ident.Intern(leaf)); ok {
			return t, true
		}
	}
	if extendSearchToParent && n.Parent != nil {
		return n.Parent.GetType(qualifiedName, true)
	}
	return nil, false
}

// GetFunctions resolves every overload registered under a qualified
// name, honoring extendSearchToParent the same way GetType does.
func (n *Namespace) GetFunctions(qualifiedName string, extendSearchToParent bool) []*Function {
	path, leaf := splitQualified(qualifiedName)
	ns, ok := n.resolveNamespacePath(path)
	if ok {
		if fns := ns.Functions.Overloads(ident.Intern(leaf)); len(fns) > 0 {
			return fns
		}
	}
	if extendSearchToParent && n.Parent != nil {
		return n.Parent.GetFunctions(qualifiedName, true)
	}
	return nil
}

// RetrieveInstance resolves a fully qualified variable/static-member
// name. "type-name::member" falls back to GetType(nsIdentifier) and
// queries its static InstancesHolder, per §4.D.
func (n *Namespace) RetrieveInstance(qualifiedName string, extendSearchToParent bool) (*Instance, bool) {
	path, leaf := splitQualified(qualifiedName)
	ns, ok := n.resolveNamespacePath(path)
	if ok {
		if inst, ok := ns.Instances.Lookup(ident.Intern(leaf)); ok {
			return inst, true
		}
	}
	if path != "" {
		if t, ok := n.GetType(path, extendSearchToParent); ok && t.StaticVars != nil {
			if inst, ok := t.StaticVars.Lookup(ident.Intern(leaf)); ok {
				return inst, true
			}
		}
	}
	if extendSearchToParent && n.Parent != nil {
		return n.Parent.RetrieveInstance(qualifiedName, true)
	}
	return nil, false
}

// AddUsingDirective pushes ns onto this namespace's using-directive
// stack (most recent last); consulted in reverse order on lookup miss
// (§4.D).
func (n *Namespace) AddUsingDirective(ns *Namespace) {
	n.UsingDirectives = append(n.UsingDirectives, ns)
}

// PopUsingDirective removes the most recently pushed using-directive,
// used when a block scope that declared it ends (§ "lookup never
// returns a symbol from a using-directive that has gone out of block
// scope").
func (n *Namespace) PopUsingDirective() {
	if len(n.UsingDirectives) > 0 {
		n.UsingDirectives = n.UsingDirectives[:len(n.UsingDirectives)-1]
	}
}

// LookupViaUsing consults using-directives in reverse declaration order
// looking for a leaf name, for use after local and inherited scopes
// have already failed (§4.D, §8 name-resolution invariant).
func (n *Namespace) LookupViaUsing(leaf string) (*Instance, bool) {
	id := ident.Intern(leaf)
	for i := len(n.UsingDirectives) - 1; i >= 0; i-- {
		if inst, ok := n.UsingDirectives[i].Instances.Lookup(id); ok {
			return inst, true
		}
	}
	return nil, false
}

// LookupFunctionViaUsing is LookupViaUsing for functions.
func (n *Namespace) LookupFunctionViaUsing(leaf string) []*Function {
	id := ident.Intern(leaf)
	for i := len(n.UsingDirectives) - 1; i >= 0; i-- {
		if fns := n.UsingDirectives[i].Functions.Overloads(id); len(fns) > 0 {
			return fns
		}
	}
	return nil
}

// LookupTypeViaUsing is LookupViaUsing for types.
func (n *Namespace) LookupTypeViaUsing(leaf string) (*Type, bool) {
	id := ident.Intern(leaf)
	for i := len(n.UsingDirectives) - 1; i >= 0; i-- {
		if t, ok := n.UsingDirectives[i].Types.Get(id); ok {
			return t, true
		}
	}
	return nil, false
}
