package diagnostics

import (
	"strings"
	"testing"

	"github.com/cflat-go/cflat/internal/lexer"
	"github.com/cflat-go/cflat/internal/parser"
	"github.com/cflat-go/cflat/internal/runtime"
)

func TestTokensJSON(t *testing.T) {
	l := lexer.New("int x;")
	var tokens []lexer.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == lexer.EOF {
			break
		}
	}

	out, err := TokensJSON(tokens)
	if err != nil {
		t.Fatalf("TokensJSON error: %v", err)
	}
	for _, want := range []string{`"kind"`, `"literal": "int"`, `"line"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestProgramJSON(t *testing.T) {
	prog, err := parser.Parse("int x = 1;")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out, err := ProgramJSON(prog)
	if err != nil {
		t.Fatalf("ProgramJSON error: %v", err)
	}
	if !strings.Contains(out, `"statement"`) {
		t.Fatalf("expected output to contain a statement field, got:\n%s", out)
	}
}

func TestProgramDumpNonEmpty(t *testing.T) {
	prog, err := parser.Parse("int x = 1;")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out := ProgramDump(prog)
	if strings.TrimSpace(out) == "" {
		t.Fatal("expected a non-empty AST dump")
	}
}

func TestDumpNamespacesYAML(t *testing.T) {
	global := runtime.NewGlobalNamespace()
	child := global.RequestNamespace("widgets")
	_ = child

	out, err := DumpNamespacesYAML(global)
	if err != nil {
		t.Fatalf("DumpNamespacesYAML error: %v", err)
	}
	if !strings.Contains(out, "widgets") {
		t.Fatalf("expected output to mention child namespace 'widgets', got:\n%s", out)
	}
}

func TestSortFunctionNamesIsNatural(t *testing.T) {
	got := SortFunctionNames([]string{"Foo10", "Foo2", "Foo1"})
	want := []string{"Foo1", "Foo2", "Foo10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
