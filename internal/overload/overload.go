// Package overload implements Cflat's overload-resolution and
// implicit-conversion ranking (§4.F): the six-tier Compatibility scale
// and the three-pass selection algorithm (perfect, then
// implicit-compatible, then variadic-compatible) that both function
// calls and method calls resolve through.
//
// Generalized from a simpler "parameter types must match exactly or not
// at all" model to Cflat's ranked implicit-conversion ladder.
package overload

import "github.com/cflat-go/cflat/internal/runtime"

// Compatibility is the ordered classification §4.F assigns to one
// parameter/argument pair. Lower values are better matches; Incompatible
// excludes the candidate entirely.
type Compatibility int

const (
	PerfectMatch Compatibility = iota
	ImplicitCastableInteger
	ImplicitCastableIntegerFloat
	ImplicitCastableFloat
	ImplicitCastableInheritance
	ImplicitConstructable
	Incompatible
)

// PerfectMatchPair is a host-registered pair of types granted
// PerfectMatch equality beyond ordinary usage equality (§4.F rule 1b).
// The hook is preserved without guessing additional uses beyond
// host-configurable numeric aliasing, per spec §9 Open Questions.
type PerfectMatchPair struct {
	A, B *runtime.Type
}

// Engine holds host-registered perfect-match pairs. The
// implicit-constructor recursion depth (§4.F rule 5: "checked at
// recursion depth 0 only") is passed to Rank per call, not stored here.
type Engine struct {
	perfectPairs map[[2]*runtime.Type]bool
}

// New returns an Engine with no extra perfect-match pairs registered.
func New() *Engine {
	return &Engine{perfectPairs: make(map[[2]*runtime.Type]bool)}
}

// RegisterPerfectMatchPair marks a and b as mutually perfect-matching
// beyond usage equality (§4.F rule 1b, §9 Open Question: preserved as a
// host-configurable hook without inventing further semantics).
func (e *Engine) RegisterPerfectMatchPair(a, b *runtime.Type) {
	e.perfectPairs[[2]*runtime.Type{a, b}] = true
	e.perfectPairs[[2]*runtime.Type{b, a}] = true
}

func (e *Engine) isPerfectPair(a, b *runtime.Type) bool {
	return e.perfectPairs[[2]*runtime.Type{a, b}]
}

// Rank classifies how well arg converts to param, at the given
// implicit-constructor recursion depth (callers pass 0 for top-level
// argument matching; ImplicitConstructable is only granted at depth 0).
func (e *Engine) Rank(param, arg runtime.TypeUsage, depth int) Compatibility {
	if param.Equal(arg) {
		return PerfectMatch
	}

	// Rule 1a: parameter adds exactly one pointer level over an array
	// argument (array-to-pointer decay).
	if param.IsPointer() && arg.IsArray() && param.PointerLevel == 1 &&
		param.BaseType == arg.BaseType {
		return PerfectMatch
	}

	// Assigning to a non-const reference from a const argument is
	// always Incompatible (§4.F).
	if param.Reference && !param.Const && arg.Const {
		return Incompatible
	}

	// Rule 1b: host-registered perfect-match pair.
	if param.BaseType != nil && arg.BaseType != nil && e.isPerfectPair(param.BaseType, arg.BaseType) &&
		param.PointerLevel == arg.PointerLevel {
		return PerfectMatch
	}

	// Void pointer bridging: void* <-> any T* is always
	// implicit-castable, bypassing the numeric/inheritance rules below.
	if param.IsPointer() && arg.IsPointer() {
		if isVoidPtr(param) || isVoidPtr(arg) {
			return ImplicitCastableInteger
		}
	}

	if param.IsPointer() && arg.IsPointer() && param.PointerLevel == arg.PointerLevel {
		if param.BaseType != nil && arg.BaseType != nil && arg.BaseType.DerivedFrom(param.BaseType) {
			return ImplicitCastableInheritance
		}
	}

	if !param.IsPointer() && !arg.IsPointer() {
		if param.IsIntegerCategory() && arg.IsIntegerCategory() {
			return ImplicitCastableInteger
		}
		if param.IsFloatingPoint() && arg.IsIntegerCategory() {
			return ImplicitCastableIntegerFloat
		}
		if param.IsIntegerCategory() && arg.IsFloatingPoint() {
			return ImplicitCastableIntegerFloat
		}
		if param.IsFloatingPoint() && arg.IsFloatingPoint() {
			return ImplicitCastableFloat
		}
	}

	// Rule 5: one-argument implicit constructor, checked only at depth 0.
	if depth == 0 && !param.IsPointer() && param.BaseType != nil &&
		param.BaseType.Category == runtime.StructOrClass {
		for _, fn := range param.BaseType.Methods.Overloads(param.BaseType.ID) {
			if len(fn.Params) == 1 && e.Rank(fn.Params[0].Usage, arg, depth+1) != Incompatible {
				return ImplicitConstructable
			}
		}
	}

	return Incompatible
}

func isVoidPtr(u runtime.TypeUsage) bool {
	return u.IsPointer() && u.BaseType != nil && u.BaseType.IsVoid()
}

// RankParams classifies every positional (param, arg) pair; ok is false
// the moment any position is Incompatible, at which point ranks is
// truncated to the positions actually evaluated.
func (e *Engine) RankParams(params []runtime.TypeUsage, args []runtime.TypeUsage) (ranks []Compatibility, ok bool) {
	if len(params) != len(args) {
		return nil, false
	}
	ranks = make([]Compatibility, len(params))
	for i := range params {
		r := e.Rank(params[i], args[i], 0)
		if r == Incompatible {
			return ranks[:i], false
		}
		ranks[i] = r
	}
	return ranks, true
}

// MatchRank adapts Engine into the runtime.MatchRank hook used by
// FunctionsHolder.Lookup and Type.FindMethodUsage, implementing the
// three-pass contract of §4.C/§4.F: perfect requires every position to
// be PerfectMatch; compatible requires every position to be anything
// but Incompatible; variadicOK additionally allows the argument list to
// be longer than the declared parameter list, provided every declared
// parameter position is compatible.
func (e *Engine) MatchRank(params []runtime.Parameter, args []runtime.TypeUsage) (perfect, compatible, variadicOK bool) {
	declared := len(params)
	if declared > len(args) {
		return false, false, false
	}
	paramUsages := make([]runtime.TypeUsage, declared)
	for i, p := range params {
		paramUsages[i] = p.Usage
	}

	ranks, allOK := e.RankParams(paramUsages, args[:declared])
	if !allOK {
		return false, false, declared <= len(args) && allCompatiblePrefix(e, paramUsages, args)
	}

	perfect = declared == len(args)
	for _, r := range ranks {
		if r != PerfectMatch {
			perfect = false
		}
	}
	compatible = declared == len(args)
	variadicOK = len(args) >= declared
	return perfect, compatible, variadicOK
}

func allCompatiblePrefix(e *Engine, params []runtime.TypeUsage, args []runtime.TypeUsage) bool {
	if len(params) > len(args) {
		return false
	}
	for i, p := range params {
		if e.Rank(p, args[i], 0) == Incompatible {
			return false
		}
	}
	return true
}
