package eval

import (
	"io"
	"testing"

	"github.com/cflat-go/cflat/internal/parser"
)

func runProgram(t *testing.T, src string) *Interpreter {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	interp := New(io.Discard)
	if err := interp.Run(prog); err != nil {
		t.Fatalf("Run(%q) error: %v", src, err)
	}
	return interp
}

func globalInt(t *testing.T, interp *Interpreter, name string) int64 {
	t.Helper()
	inst, ok := interp.Global.RetrieveInstance(name, true)
	if !ok {
		t.Fatalf("no such global %q", name)
	}
	return inst.Value.AsInt64()
}

func TestArithmeticPrecedence(t *testing.T) {
	interp := runProgram(t, "int x = 2 + 3 * 4;")
	if got := globalInt(t, interp, "x"); got != 14 {
		t.Fatalf("x = %d, want 14", got)
	}
}

func TestIfElseBranching(t *testing.T) {
	interp := runProgram(t, "int x = 0; if (1) { x = 1; } else { x = 2; }")
	if got := globalInt(t, interp, "x"); got != 1 {
		t.Fatalf("x = %d, want 1", got)
	}

	interp = runProgram(t, "int x = 0; if (0) { x = 1; } else { x = 2; }")
	if got := globalInt(t, interp, "x"); got != 2 {
		t.Fatalf("x = %d, want 2", got)
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	interp := runProgram(t, `
		int sum = 0;
		int i = 1;
		while (i <= 5) {
			sum = sum + i;
			i = i + 1;
		}
	`)
	if got := globalInt(t, interp, "sum"); got != 15 {
		t.Fatalf("sum = %d, want 15", got)
	}
}

func TestForLoopBreakAndContinue(t *testing.T) {
	interp := runProgram(t, `
		int sum = 0;
		for (int i = 0; i < 10; i = i + 1) {
			if (i == 5) { break; }
			if (i % 2 == 0) { continue; }
			sum = sum + i;
		}
	`)
	// odd i in [0,5): 1 + 3 = 4
	if got := globalInt(t, interp, "sum"); got != 4 {
		t.Fatalf("sum = %d, want 4", got)
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	interp := runProgram(t, `
		int add(int a, int b) {
			return a + b;
		}
		int x = add(2, 3);
	`)
	if got := globalInt(t, interp, "x"); got != 5 {
		t.Fatalf("x = %d, want 5", got)
	}
}

func TestRecursiveFunctionCall(t *testing.T) {
	interp := runProgram(t, `
		int fact(int n) {
			if (n <= 1) { return 1; }
			return n * fact(n - 1);
		}
		int x = fact(5);
	`)
	if got := globalInt(t, interp, "x"); got != 120 {
		t.Fatalf("x = %d, want 120", got)
	}
}

func TestSwitchFallThrough(t *testing.T) {
	interp := runProgram(t, `
		int x = 0;
		int n = 1;
		switch (n) {
		case 1:
			x = x + 1;
		case 2:
			x = x + 10;
			break;
		default:
			x = x + 100;
		}
	`)
	if got := globalInt(t, interp, "x"); got != 11 {
		t.Fatalf("x = %d, want 11", got)
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	prog, err := parser.Parse("int x = 1 / 0;")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	interp := New(io.Discard)
	err = interp.Run(prog)
	if err == nil {
		t.Fatal("expected a runtime error for division by zero")
	}
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
}

func TestEvalExpression(t *testing.T) {
	interp := New(io.Discard)
	expr, err := parser.ParseExpression("2 + 3 * 4")
	if err != nil {
		t.Fatalf("ParseExpression error: %v", err)
	}
	val, err := interp.EvalExpression(expr)
	if err != nil {
		t.Fatalf("EvalExpression error: %v", err)
	}
	if got := val.AsInt64(); got != 14 {
		t.Fatalf("got %d, want 14", got)
	}
}

func TestClearStaticsResetsBlockScopeStatic(t *testing.T) {
	src := `
		int counter() {
			static int n = 0;
			n = n + 1;
			return n;
		}
		int a = counter();
		int b = counter();
	`
	interp := runProgram(t, src)
	if got := globalInt(t, interp, "b"); got != 2 {
		t.Fatalf("b = %d, want 2", got)
	}

	interp.ClearStatics()

	prog, err := parser.Parse(`int c = counter();`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if err := interp.Run(prog); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := globalInt(t, interp, "c"); got != 1 {
		t.Fatalf("c = %d, want 1 after ClearStatics reset the counter", got)
	}
}
