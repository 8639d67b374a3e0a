package parser

import (
	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/lexer"
)

// tryParseTypeUsage speculatively parses a TypeUsage at the cursor
// (§4.I: optional const, qualified base identifier, optional
// <template args>, zero-or-more '*', optional '&', optional trailing
// const). On failure it rewinds and returns (zero, false) so callers
// can fall back to expression parsing (e.g. the C-style cast /
// parenthesised-expression disambiguation).
func (p *Parser) tryParseTypeUsage() (ast.TypeUsage, bool) {
	mark := p.cur.Mark()
	var tu ast.TypeUsage

	if p.cur.Current().Kind == lexer.Keyword && p.cur.Current().Literal == "const" {
		tu.Const = true
		p.advance()
	}
	var name string
	if p.cur.Current().Kind == lexer.Keyword && (p.cur.Current().Literal == "void" || p.cur.Current().Literal == "unsigned") {
		name = p.cur.Current().Literal
		p.advance()
		// "unsigned" may stand alone or prefix another base name, e.g.
		// "unsigned int".
		if name == "unsigned" && p.cur.Current().Kind == lexer.Identifier {
			name += " " + p.cur.Current().Literal
			p.advance()
		}
	} else if p.cur.Current().Kind == lexer.Identifier {
		var err error
		name, err = p.parseQualifiedName()
		if err != nil {
			p.cur = p.cur.ResetTo(mark)
			return ast.TypeUsage{}, false
		}
	} else {
		p.cur = p.cur.ResetTo(mark)
		return ast.TypeUsage{}, false
	}
	if resolved, ok := p.ctx.ResolveAlias(name); ok {
		name = resolved
	}
	tu.BaseName = name

	if p.at("<") && p.isTemplateSpan() {
		p.advance()
		for {
			arg, ok := p.tryParseTypeUsage()
			if !ok {
				p.cur = p.cur.ResetTo(mark)
				return ast.TypeUsage{}, false
			}
			tu.TemplateArgs = append(tu.TemplateArgs, arg)
			if p.at(",") {
				p.advance()
				continue
			}
			break
		}
		if !p.at(">") {
			p.cur = p.cur.ResetTo(mark)
			return ast.TypeUsage{}, false
		}
		p.advance()
	}

	for p.cur.Current().Kind == lexer.Operator && p.cur.Current().Literal == "*" {
		tu.PointerLevel++
		p.advance()
	}
	if tu.PointerLevel > 0 && p.cur.Current().Kind == lexer.Keyword && p.cur.Current().Literal == "const" {
		tu.ConstPointer = true
		p.advance()
	}
	if p.cur.Current().Kind == lexer.Operator && p.cur.Current().Literal == "&" {
		tu.Reference = true
		p.advance()
	}

	return tu, true
}

// isTemplateSpan implements the isTemplate(open, close) predicate
// (§4.I): from the current '<', the span up to the matching '>' must
// contain only identifiers, commas, nested '<…>' template spans
// (resolved recursively), and '*' applied to identifiers — otherwise
// the '<' is a less-than operator, not a template bracket.
func (p *Parser) isTemplateSpan() bool {
	mark := p.cur.Mark()
	c := p.cur
	// Rewind from the furthest cursor reached: it holds every token
	// lexed during the scan, which the starting cursor's buffer lacks.
	defer func() { p.cur = c.ResetTo(mark) }()

	if !p.at("<") {
		return false
	}
	depth := 0
	for {
		t := c.Current()
		switch {
		case t.Kind == lexer.EOF:
			return false
		case t.Kind == lexer.Operator && t.Literal == "<":
			depth++
		case t.Kind == lexer.Operator && t.Literal == ">":
			depth--
			if depth == 0 {
				return true
			}
		case t.Kind == lexer.Identifier:
			// ok
		case t.Kind == lexer.Keyword && t.Literal == "const":
			// ok, allowed inside nested type usages
		case t.Kind == lexer.Punctuation && t.Literal == ",":
			// ok
		case t.Kind == lexer.Operator && t.Literal == "*":
			// ok
		case t.Kind == lexer.Operator && t.Literal == "::":
			// ok
		default:
			return false
		}
		c = c.Advance()
	}
}
