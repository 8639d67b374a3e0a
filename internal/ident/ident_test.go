package ident

import "testing"

func TestInternReturnsSameHandleForSameName(t *testing.T) {
	r := NewRegistry()
	a := r.Intern("Foo")
	b := r.Intern("Foo")

	if !a.Equal(b) {
		t.Fatalf("expected equal handles, got hash %d vs %d", a.Hash(), b.Hash())
	}
	if a.String() != "Foo" {
		t.Fatalf("expected canonical name %q, got %q", "Foo", a.String())
	}
}

func TestInternIsCaseSensitive(t *testing.T) {
	r := NewRegistry()
	a := r.Intern("foo")
	b := r.Intern("Foo")

	if a.Equal(b) {
		t.Fatalf("C++ identifiers are case sensitive: %q and %q must differ", "foo", "Foo")
	}
}

func TestInternNormalizesToNFC(t *testing.T) {
	r := NewRegistry()
	// "\u00e9" (precomposed NFC) vs. "e" + "\u0301" (combining acute,
	// NFD): two distinct byte sequences spelling the same identifier.
	precomposed := r.Intern("caf\u00e9")
	decomposed := r.Intern("cafe\u0301")

	if !precomposed.Equal(decomposed) {
		t.Fatalf("expected NFC-equivalent identifiers to intern to the same handle, got hash %d vs %d",
			precomposed.Hash(), decomposed.Hash())
	}
	if precomposed.String() != decomposed.String() {
		t.Fatalf("expected identical canonical spelling, got %q vs %q", precomposed.String(), decomposed.String())
	}
}

func TestSplitLastScope(t *testing.T) {
	tests := []struct {
		name     string
		wantPath string
		wantLeaf string
		wantOK   bool
	}{
		{"a::b::c", "a::b", "c", true},
		{"c", "", "c", false},
		{"Foo::Bar", "Foo", "Bar", true},
	}
	for _, tt := range tests {
		path, leaf, ok := SplitLastScope(tt.name)
		if path != tt.wantPath || leaf != tt.wantLeaf || ok != tt.wantOK {
			t.Errorf("SplitLastScope(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.name, path, leaf, ok, tt.wantPath, tt.wantLeaf, tt.wantOK)
		}
	}
}

func TestSplitFirstScope(t *testing.T) {
	head, rest, ok := SplitFirstScope("a::b::c")
	if !ok || head != "a" || rest != "b::c" {
		t.Fatalf("SplitFirstScope(a::b::c) = (%q, %q, %v)", head, rest, ok)
	}

	head, rest, ok = SplitFirstScope("leaf")
	if ok || head != "leaf" || rest != "" {
		t.Fatalf("SplitFirstScope(leaf) = (%q, %q, %v), want (leaf, \"\", false)", head, rest, ok)
	}
}

func TestGlobalIntern(t *testing.T) {
	a := Intern("cflat_test_unique_name")
	b := Intern("cflat_test_unique_name")
	if !a.Equal(b) {
		t.Fatalf("global Intern should be idempotent across calls")
	}
}
