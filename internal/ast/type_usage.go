package ast

import "strings"

// TypeUsage is the parsed, not-yet-resolved form of a type usage
// (§4.I: "const, base identifier, <template args>, *, &, trailing
// const"). The parser builds this; the evaluator/runtime package
// resolves BaseName against a *runtime.Namespace to produce a
// runtime.TypeUsage.
type TypeUsage struct {
	Const         bool
	BaseName      string // possibly namespace-qualified with "::"
	TemplateArgs  []TypeUsage
	PointerLevel  int
	ConstPointer  bool // trailing 'const' after the pointer stars
	Reference     bool
	ArraySize     int // 0 when not an array (size filled in by the declarator)
}

func (t TypeUsage) String() string {
	var sb strings.Builder
	if t.Const {
		sb.WriteString("const ")
	}
	sb.WriteString(t.BaseName)
	if len(t.TemplateArgs) > 0 {
		sb.WriteString("<")
		for i, a := range t.TemplateArgs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteString(">")
	}
	for i := 0; i < t.PointerLevel; i++ {
		sb.WriteString("*")
	}
	if t.ConstPointer {
		sb.WriteString(" const")
	}
	if t.Reference {
		sb.WriteString("&")
	}
	return sb.String()
}
