package cflat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// scenarioInt loads src under "scenario" and returns the int64 value of
// varName afterwards, failing the test on any load error or unresolved
// name.
func scenarioInt(t *testing.T, env *Environment, src, varName string) int64 {
	t.Helper()
	if err := env.Load("scenario", src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v, ok := env.GetVariable(varName)
	if !ok {
		t.Fatalf("variable %q not found after load", varName)
	}
	return v.AsInt64()
}

func scenarioBool(t *testing.T, env *Environment, src, varName string) bool {
	t.Helper()
	if err := env.Load("scenario", src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v, ok := env.GetVariable(varName)
	if !ok {
		t.Fatalf("variable %q not found after load", varName)
	}
	return v.AsBool()
}

// TestScenarioComparisonVsLogicalPrecedence covers scenario 1:
// the comparisons bind tighter than the `&&` that chains them.
func TestScenarioComparisonVsLogicalPrecedence(t *testing.T) {
	env := New()
	src := `const int var = 42; const bool c1 = var > 0 && var < 50; const bool c2 = var > 50 && var < 100;`
	if err := env.Load("scenario1", src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c1, ok := env.GetVariable("c1")
	if !ok || !c1.AsBool() {
		t.Fatalf("c1 = %v, want true", c1)
	}
	c2, ok := env.GetVariable("c2")
	if !ok || c2.AsBool() {
		t.Fatalf("c2 = %v, want false", c2)
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("c1=%v c2=%v", c1.AsBool(), c2.AsBool()))
}

// TestScenarioShortCircuitCountsSideEffects covers scenario 2: `&&`/`||`
// must not evaluate their right operand once the left settles the
// result.
func TestScenarioShortCircuitCountsSideEffects(t *testing.T) {
	env := New()
	src := `int var1 = 0; int var2 = 0; const bool c1 = var1++ && var2++; const bool c2 = var1++ || var2++;`
	if err := env.Load("scenario2", src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c1, _ := env.GetVariable("c1")
	c2, _ := env.GetVariable("c2")
	var1, _ := env.GetVariable("var1")
	var2, _ := env.GetVariable("var2")

	if c1.AsBool() {
		t.Fatalf("c1 = true, want false")
	}
	if !c2.AsBool() {
		t.Fatalf("c2 = false, want true")
	}
	if got := var1.AsInt64(); got != 2 {
		t.Fatalf("var1 = %d, want 2", got)
	}
	if got := var2.AsInt64(); got != 0 {
		t.Fatalf("var2 = %d, want 0", got)
	}

	snaps.MatchSnapshot(t, fmt.Sprintf("c1=%v c2=%v var1=%d var2=%d",
		c1.AsBool(), c2.AsBool(), var1.AsInt64(), var2.AsInt64()))
}

// TestScenarioRangeForOverArray covers scenario 3: range-based for
// iterates an array's elements in order.
func TestScenarioRangeForOverArray(t *testing.T) {
	env := New()
	src := `int sum = 0; int arr[] = { 1, 2, 3, 4 }; for (int x : arr) { sum += x; }`
	got := scenarioInt(t, env, src, "sum")
	if got != 10 {
		t.Fatalf("sum = %d, want 10", got)
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("sum=%d", got))
}

// TestScenarioSingleInheritanceBaseAccess covers scenario 4: a
// Base*-typed alias reached via static_cast from a Derived object must
// read through to the base sub-object's member.
func TestScenarioSingleInheritanceBaseAccess(t *testing.T) {
	env := New()
	src := `struct Base { int a; };
struct Derived : Base { int b; };
Derived d;
d.a = 7;
d.b = 11;
Base* p = static_cast<Base*>(&d);
int v = p->a;`
	got := scenarioInt(t, env, src, "v")
	if got != 7 {
		t.Fatalf("v = %d, want 7", got)
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("v=%d", got))
}

// TestScenarioNullPointerAccessIsRuntimeError covers scenario 5: a
// method call through a null pointer fails the load and names the
// member in the diagnostic.
func TestScenarioNullPointerAccessIsRuntimeError(t *testing.T) {
	env := New()
	src := `struct Foo { void method() {} };
Foo* p = nullptr;
p->method();`
	err := env.Load("scenario5", src)
	if err == nil {
		t.Fatal("expected a runtime error, got none")
	}
	if got := err.Error(); got == "" {
		t.Fatal("expected a non-empty diagnostic")
	}
	if got := err.Error(); !strings.Contains(got, "null pointer access ('method')") {
		t.Fatalf("diagnostic %q does not name the member 'method'", got)
	}
	snaps.MatchSnapshot(t, err.Error())
}

// TestScenarioSwitchFallThrough covers scenario 6: execution falls
// through from a matched case into the next, stopping only at `break`
// or the end of the switch.
func TestScenarioSwitchFallThrough(t *testing.T) {
	env := New()
	src := `int v = 42; switch (v) { case 0: v += 10; case 42: v += 100; case 100: v += 1000; }`
	got := scenarioInt(t, env, src, "v")
	if got != 1142 {
		t.Fatalf("v = %d, want 1142", got)
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("v=%d", got))
}
