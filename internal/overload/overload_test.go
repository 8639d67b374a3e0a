package overload

import (
	"testing"

	"github.com/cflat-go/cflat/internal/ident"
	"github.com/cflat-go/cflat/internal/runtime"
)

func TestRankPerfectMatch(t *testing.T) {
	e := New()
	it := runtime.NewBuiltIn("int", 4)
	u := runtime.TypeUsage{BaseType: it}

	if got := e.Rank(u, u, 0); got != PerfectMatch {
		t.Fatalf("expected PerfectMatch, got %v", got)
	}
}

func TestRankIntegerFloatPromotion(t *testing.T) {
	e := New()
	i := runtime.NewBuiltIn("int", 4)
	d := runtime.NewBuiltIn("double", 8)

	iu := runtime.TypeUsage{BaseType: i}
	du := runtime.TypeUsage{BaseType: d}

	if got := e.Rank(du, iu, 0); got != ImplicitCastableIntegerFloat {
		t.Fatalf("expected ImplicitCastableIntegerFloat, got %v", got)
	}
}

func TestRankConstRefFromConstArgIsIncompatible(t *testing.T) {
	e := New()
	it := runtime.NewBuiltIn("int", 4)
	param := runtime.TypeUsage{BaseType: it, Reference: true}
	arg := runtime.TypeUsage{BaseType: it, Const: true}

	if got := e.Rank(param, arg, 0); got != Incompatible {
		t.Fatalf("expected Incompatible (non-const ref from const arg), got %v", got)
	}
}

func TestRankVoidPointerBridging(t *testing.T) {
	e := New()
	void := runtime.NewVoid()
	it := runtime.NewBuiltIn("int", 4)

	voidPtr := runtime.TypeUsage{BaseType: void, PointerLevel: 1}
	intPtr := runtime.TypeUsage{BaseType: it, PointerLevel: 1}

	if got := e.Rank(voidPtr, intPtr, 0); got == Incompatible {
		t.Fatalf("expected void* <- int* to be implicit-castable")
	}
}

func TestRankInheritancePointer(t *testing.T) {
	e := New()
	global := runtime.NewGlobalNamespace()
	base := runtime.NewStruct("Base", global)
	derived := runtime.NewStruct("Derived", global)
	derived.RegisterBase(base, 0)

	basePtr := runtime.TypeUsage{BaseType: base, PointerLevel: 1}
	derivedPtr := runtime.TypeUsage{BaseType: derived, PointerLevel: 1}

	if got := e.Rank(basePtr, derivedPtr, 0); got != ImplicitCastableInheritance {
		t.Fatalf("expected ImplicitCastableInheritance, got %v", got)
	}
}

func TestExactlyOnePerfectMatchWinsOverload(t *testing.T) {
	e := New()
	global := runtime.NewGlobalNamespace()
	i := runtime.NewBuiltIn("int", 4)
	d := runtime.NewBuiltIn("double", 8)
	global.Types.Add(i)
	global.Types.Add(d)

	fh := runtime.NewFunctionsHolder()
	fName := ident.Intern("f")
	intFn := &runtime.Function{Name: fName, Params: []runtime.Parameter{{Usage: runtime.TypeUsage{BaseType: i}}}}
	doubleFn := &runtime.Function{Name: fName, Params: []runtime.Parameter{{Usage: runtime.TypeUsage{BaseType: d}}}}
	fh.Add(intFn)
	fh.Add(doubleFn)

	got := fh.Lookup(fName, []runtime.TypeUsage{{BaseType: i}}, e.MatchRank)
	if got != intFn {
		t.Fatalf("expected the perfect-match int overload to be selected, got %+v", got)
	}
}
