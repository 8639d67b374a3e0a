package preproc

import "testing"

func process(t *testing.T, src string) string {
	t.Helper()
	p := New()
	out, err := p.Process(src)
	if err != nil {
		t.Fatalf("Process(%q) error: %v", src, err)
	}
	return out
}

func TestLineCommentStripped(t *testing.T) {
	got := process(t, "int x; // comment\nint y;")
	want := "int x; \nint y;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBlockCommentPreservesNewlines(t *testing.T) {
	got := process(t, "int x;\n/* line1\nline2\nline3 */\nint y;")
	if want := 4; countNewlines(got) < want {
		t.Fatalf("expected at least %d newlines preserved, got %q", want, got)
	}
}

func countNewlines(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}

func TestDirectivesConsumedSilently(t *testing.T) {
	got := process(t, "#include <foo.h>\n#pragma once\nint x;")
	want := "\n\nint x;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestObjectLikeMacroExpansion(t *testing.T) {
	got := process(t, "#define MAX 100\nint x = MAX;")
	want := "\nint x = 100;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionLikeMacroExpansion(t *testing.T) {
	got := process(t, "#define ADD(a, b) a + b\nint x = ADD(1, 2);")
	want := "\nint x = 1 + 2;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionLikeMacroArgCountMismatch(t *testing.T) {
	p := New()
	_, err := p.Process("#define ADD(a, b) a + b\nint x = ADD(1);")
	if err == nil {
		t.Fatal("expected an error for mismatched argument count")
	}
}

func TestStringizeOperator(t *testing.T) {
	got := process(t, "#define STR(x) #x\nconst char* s = STR(hello);")
	want := "\nconst char* s = \"hello\";\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTokenPasteOperator(t *testing.T) {
	got := process(t, "#define CAT(a, b) a##b\nint CAT(foo, bar);")
	want := "\nint foobar;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMacroNameNotExpandedWithoutParens(t *testing.T) {
	got := process(t, "#define ADD(a, b) a + b\nint ADD;")
	want := "\nint ADD;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringLiteralsPassThroughUnexpanded(t *testing.T) {
	got := process(t, "#define MAX 100\nconst char* s = \"MAX\";")
	want := "\nconst char* s = \"MAX\";\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNestedParensInMacroArgument(t *testing.T) {
	got := process(t, "#define ADD(a, b) a + b\nint x = ADD((1 + 2), 3);")
	want := "\nint x = (1 + 2) + 3;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
