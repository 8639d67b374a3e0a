package runtime

import "github.com/cflat-go/cflat/internal/ident"

// Trampoline is the uniform call contract (§4.J, §6) crossing the host
// <-> script boundary: every callable, whether host-registered or
// script-defined, is invoked through this one shape. Methods receive
// `this` as args[0].
type Trampoline func(args []*Value, out *Value) error

// Function is a registered or script-defined callable: a free function,
// a static method, an instance method, or a constructor/destructor.
type Function struct {
	Name       ident.Handle
	Owner      *Namespace // nil for struct members (owned by the struct's Methods holder instead)
	ReturnType TypeUsage
	Params     []Parameter
	IsVariadic bool
	IsStatic   bool
	Call       Trampoline // host trampoline, or nil for script-defined (Body is used instead)
	Body       any        // *ast statement block for script-defined functions; nil for host functions
}

// Parameter describes one formal parameter.
type Parameter struct {
	Name  ident.Handle
	Usage TypeUsage
}

// FunctionsHolder indexes overloads under one identifier hash, per
// §4.C: "hash -> list<Function*> so overloads coexist under the same
// name."
type FunctionsHolder struct {
	all map[uint32][]*Function
}

// NewFunctionsHolder returns an empty holder.
func NewFunctionsHolder() *FunctionsHolder {
	return &FunctionsHolder{all: make(map[uint32][]*Function)}
}

// Add appends fn to its name's overload list.
func (h *FunctionsHolder) Add(fn *Function) {
	h.all[fn.Name.Hash()] = append(h.all[fn.Name.Hash()], fn)
}

// Overloads returns every function registered under id, in declaration
// order.
func (h *FunctionsHolder) Overloads(id ident.Handle) []*Function {
	return h.all[id.Hash()]
}

// MatchRank classifies how well a parameter list matches an argument
// list; supplied by internal/overload to avoid an import cycle back
// into runtime.
type MatchRank func(params []Parameter, args []TypeUsage) (perfect bool, compatible bool, variadicOK bool)

// Lookup performs the three-pass match §4.C specifies: perfect,
// implicit-compatible, then variadic-compatible. rank is supplied by
// the caller (internal/overload wraps this for the evaluator).
func (h *FunctionsHolder) Lookup(id ident.Handle, args []TypeUsage, rank MatchRank) *Function {
	candidates := h.all[id.Hash()]

	for _, fn := range candidates {
		if perfect, _, _ := rank(fn.Params, args); perfect {
			return fn
		}
	}
	for _, fn := range candidates {
		if _, compatible, _ := rank(fn.Params, args); compatible {
			return fn
		}
	}
	for _, fn := range candidates {
		if !fn.IsVariadic {
			continue
		}
		if _, _, variadicOK := rank(fn.Params, args); variadicOK {
			return fn
		}
	}
	return nil
}
