package runtime

import (
	"testing"

	"github.com/cflat-go/cflat/internal/ident"
)

func intType() *Type  { return NewBuiltIn("int", 4) }
func boolType() *Type { return NewBuiltIn("bool", 1) }

func TestNamespaceRequestAndGet(t *testing.T) {
	global := NewGlobalNamespace()
	ns := global.RequestNamespace("a::b::c")
	if ns.FullName.String() != "a::b::c" {
		t.Fatalf("expected full name a::b::c, got %q", ns.FullName.String())
	}

	got, ok := global.GetNamespace("a::b::c")
	if !ok || got != ns {
		t.Fatalf("GetNamespace should find the namespace created by RequestNamespace")
	}

	_, ok = global.GetNamespace("a::missing")
	if ok {
		t.Fatalf("GetNamespace must not create missing nodes")
	}
}

func TestGetTypeExtendsToParent(t *testing.T) {
	global := NewGlobalNamespace()
	it := intType()
	global.Types.Add(it)

	child := global.RequestNamespace("inner")

	if _, ok := child.GetType("int", false); ok {
		t.Fatalf("expected lookup without parent fallback to fail")
	}
	got, ok := child.GetType("int", true)
	if !ok || got != it {
		t.Fatalf("expected parent-extended lookup to find int, got %v, %v", got, ok)
	}
}

func TestStructBaseOffsetAndMemberLookup(t *testing.T) {
	global := NewGlobalNamespace()
	it := intType()
	global.Types.Add(it)

	base := NewStruct("Base", global)
	base.SetSize(4, 4)
	base.RegisterMember("a", TypeUsage{BaseType: it}, 0)

	derived := NewStruct("Derived", global)
	derived.SetSize(8, 4)
	derived.RegisterBase(base, 0)
	derived.RegisterMember("b", TypeUsage{BaseType: it}, 4)

	if derived.GetOffset(base) != 0 {
		t.Fatalf("expected base offset 0, got %d", derived.GetOffset(base))
	}
	if !derived.DerivedFrom(base) {
		t.Fatalf("expected Derived to derive from Base")
	}

	m, off, ok := derived.FindMember(ident.Intern("a"))
	if !ok || off != 0 || m.Name.String() != "a" {
		t.Fatalf("expected to find inherited member a at offset 0, got %+v %d %v", m, off, ok)
	}
}

func TestInstancesHolderScopeRelease(t *testing.T) {
	h := NewInstancesHolder()
	h.Declare(&Instance{Name: ident.Intern("x"), ScopeLevel: 0})
	h.Declare(&Instance{Name: ident.Intern("y"), ScopeLevel: 1})
	h.Declare(&Instance{Name: ident.Intern("z"), ScopeLevel: 2})

	if err := h.ReleaseInstances(1, false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(h.All()) != 1 {
		t.Fatalf("expected 1 instance to remain, got %d", len(h.All()))
	}
	if h.All()[0].Name.String() != "x" {
		t.Fatalf("expected 'x' to survive release, got %q", h.All()[0].Name.String())
	}
}

func TestEnvironmentStackLIFO(t *testing.T) {
	s := NewEnvironmentStack()
	it := intType()
	a := s.Push(TypeUsage{BaseType: it})
	b := s.Push(TypeUsage{BaseType: it})

	if err := a.Release(); err == nil {
		t.Fatalf("expected releasing non-top stack slot to fail")
	}
	if err := b.Release(); err != nil {
		t.Fatalf("unexpected error releasing top slot: %v", err)
	}
	if err := a.Release(); err != nil {
		t.Fatalf("unexpected error releasing new top slot: %v", err)
	}
	if s.Depth() != 0 {
		t.Fatalf("expected empty stack, depth=%d", s.Depth())
	}
}

func TestTypeUsageSize(t *testing.T) {
	it := intType()
	u := TypeUsage{BaseType: it}
	if u.Size() != 4 {
		t.Fatalf("expected size 4, got %d", u.Size())
	}

	arr := TypeUsage{BaseType: it, ArraySize: 4}
	if arr.Size() != 16 {
		t.Fatalf("expected array size 16, got %d", arr.Size())
	}

	ptr := TypeUsage{BaseType: it, PointerLevel: 1}
	if ptr.Size() != machinePointerSize {
		t.Fatalf("expected pointer size %d, got %d", machinePointerSize, ptr.Size())
	}
}
