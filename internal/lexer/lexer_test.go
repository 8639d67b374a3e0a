package lexer

import "testing"

func collect(src string) []Token {
	l := New(src)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return toks
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	toks := collect("if x return")
	want := []Kind{Keyword, Identifier, Keyword, EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %v, want %v (%q)", i, toks[i].Kind, k, toks[i].Literal)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []string{"42", "3.14", "0xFF", "1.5e10", "2.5f", "10u"}
	for _, src := range tests {
		toks := collect(src)
		if toks[0].Kind != Number || toks[0].Literal != src {
			t.Errorf("readNumber(%q) = %+v, want Number %q", src, toks[0], src)
		}
	}
}

func TestStringAndCharLiterals(t *testing.T) {
	toks := collect(`"hello" 'a' L"wide"`)
	if toks[0].Kind != String || toks[0].Literal != `"hello"` {
		t.Errorf("string literal: got %+v", toks[0])
	}
	if toks[1].Kind != Character || toks[1].Literal != `'a'` {
		t.Errorf("char literal: got %+v", toks[1])
	}
	if toks[2].Kind != WideString {
		t.Errorf("wide string literal: got %+v", toks[2])
	}
}

func TestTwoCharThenOneCharOperators(t *testing.T) {
	toks := collect("a::b <= c < d")
	if toks[1].Literal != "::" || toks[1].Kind != Operator {
		t.Errorf("expected '::' operator, got %+v", toks[1])
	}
	if toks[3].Literal != "<=" {
		t.Errorf("expected '<=', got %+v", toks[3])
	}
	if toks[5].Literal != "<" {
		t.Errorf("expected '<', got %+v", toks[5])
	}
}

func TestConditionalOperatorIsOperatorKind(t *testing.T) {
	toks := collect("a ? b : c")
	if toks[1].Kind != Operator || toks[1].Literal != "?" {
		t.Errorf("expected '?' to be an Operator token, got %+v", toks[1])
	}
}

func TestPrecedenceTable(t *testing.T) {
	cases := map[string]int{
		"*": 1, "/": 1, "%": 1,
		"+": 2, "-": 2,
		"<<": 3, ">>": 3,
		"<": 4, "<=": 4, ">": 4, ">=": 4,
		"==": 5, "!=": 5,
		"&": 6, "^": 7, "|": 8, "&&": 9, "||": 10,
	}
	for op, want := range cases {
		if got := BinaryPrecedence(op); got != want {
			t.Errorf("BinaryPrecedence(%q) = %d, want %d", op, got, want)
		}
	}
}

func TestLinesAdvanceOnNewline(t *testing.T) {
	toks := collect("a\nb\nc")
	if toks[0].Pos.Line != 1 || toks[1].Pos.Line != 2 || toks[2].Pos.Line != 3 {
		t.Fatalf("expected lines 1,2,3, got %d,%d,%d", toks[0].Pos.Line, toks[1].Pos.Line, toks[2].Pos.Line)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("foo bar")
	p := l.Peek()
	if p.Literal != "foo" {
		t.Fatalf("expected peek to return 'foo', got %q", p.Literal)
	}
	n := l.NextToken()
	if n.Literal != "foo" {
		t.Fatalf("expected next to return the peeked token 'foo', got %q", n.Literal)
	}
	n2 := l.NextToken()
	if n2.Literal != "bar" {
		t.Fatalf("expected next token 'bar', got %q", n2.Literal)
	}
}
