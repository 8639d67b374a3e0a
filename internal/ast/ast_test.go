package ast

import "testing"

func TestBinaryOperationString(t *testing.T) {
	expr := &BinaryOperation{
		Operator: "+",
		Left:     &IntLiteral{Value: 1},
		Right:    &IntLiteral{Value: 2},
	}
	if got, want := expr.String(), "(1 + 2)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestConditionalExpressionString(t *testing.T) {
	expr := &ConditionalExpression{
		Condition: &Identifier{Name: "ok"},
		Then:      &IntLiteral{Value: 1},
		Else:      &IntLiteral{Value: 0},
	}
	if got, want := expr.String(), "(ok ? 1 : 0)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTypeUsageStringPointerAndConst(t *testing.T) {
	u := TypeUsage{Const: true, BaseName: "int", PointerLevel: 2}
	if got, want := u.String(), "const int**"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTypeUsageStringTemplate(t *testing.T) {
	u := TypeUsage{BaseName: "vector", TemplateArgs: []TypeUsage{{BaseName: "int"}}}
	if got, want := u.String(), "vector<int>"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSwitchStatementFallsThroughInStructure(t *testing.T) {
	sw := &SwitchStatement{
		Subject: &Identifier{Name: "v"},
		Cases: []SwitchCase{
			{Expr: &IntLiteral{Value: 0}, Statements: []Statement{}},
			{Expr: &IntLiteral{Value: 42}, Statements: []Statement{}},
			{Expr: nil, Statements: []Statement{}},
		},
	}
	if len(sw.Cases) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(sw.Cases))
	}
	if sw.Cases[2].Expr != nil {
		t.Fatalf("expected default case to have a nil Expr")
	}
}

func TestBlockStatementString(t *testing.T) {
	b := &BlockStatement{Statements: []Statement{
		&ReturnStatement{Value: &IntLiteral{Value: 1}},
	}}
	want := "{\n  return 1;\n}"
	if got := b.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestProgramLineDelegatesToFirstStatement(t *testing.T) {
	p := &Program{Statements: []Statement{
		&ExpressionStatement{BaseNode: NewBase(7), Expr: &IntLiteral{Value: 1}},
	}}
	if got := p.Line(); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}
