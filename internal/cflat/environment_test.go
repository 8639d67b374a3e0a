package cflat

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cflat-go/cflat/internal/ident"
	"github.com/cflat-go/cflat/internal/runtime"
)

func TestLoadRunsProgram(t *testing.T) {
	env := New()
	if err := env.Load("test", "int x = 2 + 3;"); err != nil {
		t.Fatalf("Load error: %v, diagnostic: %s", err, env.GetErrorMessage())
	}
	v, ok := env.GetVariable("x")
	if !ok {
		t.Fatal("expected global variable x to exist")
	}
	if got := v.AsInt64(); got != 5 {
		t.Fatalf("x = %d, want 5", got)
	}
	if env.GetErrorMessage() != "" {
		t.Fatalf("expected empty error message, got %q", env.GetErrorMessage())
	}
}

func TestLoadPreprocessorErrorFormat(t *testing.T) {
	env := New()
	err := env.Load("bad", "#define ADD(a, b) a + b\nint x = ADD(1);")
	if err == nil {
		t.Fatal("expected a preprocessor error for mismatched macro argument count")
	}
	msg := env.GetErrorMessage()
	if !strings.HasPrefix(msg, "[Preprocessor Error] 'bad' -- Line ") {
		t.Fatalf("unexpected diagnostic format: %q", msg)
	}
}

func TestLoadCompileErrorFormat(t *testing.T) {
	env := New()
	err := env.Load("bad", "int x = ;")
	if err == nil {
		t.Fatal("expected a compile error for a malformed declaration")
	}
	msg := env.GetErrorMessage()
	if !strings.HasPrefix(msg, "[Compile Error] 'bad' -- Line ") {
		t.Fatalf("unexpected diagnostic format: %q", msg)
	}
}

func TestLoadRuntimeErrorFormat(t *testing.T) {
	env := New()
	err := env.Load("bad", "int x = 1 / 0;")
	if err == nil {
		t.Fatal("expected a runtime error for division by zero")
	}
	msg := env.GetErrorMessage()
	if !strings.HasPrefix(msg, "[Runtime Error] 'bad' -- Line ") {
		t.Fatalf("unexpected diagnostic format: %q", msg)
	}
}

func TestLastDiagnosticDetailRendersSourceContext(t *testing.T) {
	env := New()
	if err := env.Load("bad", "int x = ;"); err == nil {
		t.Fatal("expected a compile error")
	}
	detail := env.LastDiagnosticDetail(1, false)
	if !strings.Contains(detail, "int x = ;") {
		t.Fatalf("expected rendered detail to include the offending source line, got %q", detail)
	}
	if !strings.Contains(detail, "^") {
		t.Fatalf("expected rendered detail to include a caret, got %q", detail)
	}
	if !strings.Contains(detail, env.GetErrorMessage()) {
		t.Fatalf("expected rendered detail to end with the fixed diagnostic line, got %q", detail)
	}
}

func TestLastDiagnosticDetailEmptyBeforeAnyFailure(t *testing.T) {
	env := New()
	if got := env.LastDiagnosticDetail(1, false); got != "" {
		t.Fatalf("expected empty detail before any failing Load, got %q", got)
	}
	if err := env.Load("ok", "int x = 1;"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got := env.LastDiagnosticDetail(1, false); got != "" {
		t.Fatalf("expected empty detail after a successful Load, got %q", got)
	}
}

func TestEvaluateExpression(t *testing.T) {
	env := New()
	val, err := env.EvaluateExpression("6 * 7")
	if err != nil {
		t.Fatalf("EvaluateExpression error: %v", err)
	}
	if got := val.AsInt64(); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestResetStaticsReloadsEveryProgram(t *testing.T) {
	env := New()
	if err := env.Load("a", "int x = 1;"); err != nil {
		t.Fatalf("Load(a) error: %v", err)
	}
	if err := env.Load("b", "int y = 2;"); err != nil {
		t.Fatalf("Load(b) error: %v", err)
	}

	if err := env.ResetStatics(); err != nil {
		t.Fatalf("ResetStatics error: %v, diagnostic: %s", err, env.GetErrorMessage())
	}

	for _, name := range []string{"x", "y"} {
		if _, ok := env.GetVariable(name); !ok {
			t.Fatalf("expected %s to still resolve after ResetStatics", name)
		}
	}
}

func TestRegisterFunctionTrampoline(t *testing.T) {
	env := New()

	intType, _ := env.GetType("int")
	called := false
	fn := &runtime.Function{
		Name:       ident.Intern("doubleIt"),
		ReturnType: runtime.TypeUsage{BaseType: intType},
		Params: []runtime.Parameter{
			{Name: ident.Intern("n"), Usage: runtime.TypeUsage{BaseType: intType}},
		},
		Call: func(args []*runtime.Value, out *runtime.Value) error {
			called = true
			out.SetData(args[0].AsInt64() * 2)
			return nil
		},
	}
	env.RegisterFunction(nil, fn)

	val, err := env.EvaluateExpression("doubleIt(21)")
	if err != nil {
		t.Fatalf("EvaluateExpression error: %v, diagnostic: %s", err, env.GetErrorMessage())
	}
	if !called {
		t.Fatal("expected the registered trampoline to be invoked")
	}
	if got := val.AsInt64(); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestSetVariableOverwritesResolvedValue(t *testing.T) {
	env := New()
	if err := env.Load("p", "int x = 1;"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if ok := env.SetVariable("x", int64(99)); !ok {
		t.Fatal("expected SetVariable to find x")
	}
	v, _ := env.GetVariable("x")
	if got := v.AsInt64(); got != 99 {
		t.Fatalf("x = %d, want 99", got)
	}
	if ok := env.SetVariable("nope", int64(1)); ok {
		t.Fatal("expected SetVariable to report false for an unknown name")
	}
}

func TestWithOutputRedirectsHostOutput(t *testing.T) {
	var buf bytes.Buffer
	env := New(WithOutput(&buf))
	intType, _ := env.GetType("int")
	fn := &runtime.Function{
		Name:       ident.Intern("emit"),
		ReturnType: runtime.TypeUsage{BaseType: intType},
		Call: func(args []*runtime.Value, out *runtime.Value) error {
			_, err := env.interp.Output.Write([]byte("hi"))
			return err
		},
	}
	env.RegisterFunction(nil, fn)
	if _, err := env.EvaluateExpression("emit()"); err != nil {
		t.Fatalf("EvaluateExpression error: %v", err)
	}
	if buf.String() != "hi" {
		t.Fatalf("got %q, want %q", buf.String(), "hi")
	}
}
