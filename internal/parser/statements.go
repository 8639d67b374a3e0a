package parser

import (
	"strings"

	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/lexer"
)

// operatorTokens lists the spellings the lexer can produce that may
// follow the `operator` keyword in an overload declarator (§4.J).
var operatorTokens = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true, "!": true,
	"&": true, "|": true, "^": true, "~": true, "<<": true, ">>": true,
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"++": true, "--": true,
}

// parseDeclaratorName consumes a plain identifier, or `operator<op>`
// for an operator-overload declaration, returning the combined name
// ("operator+", "operator==", …) and whether a name was found at all.
func (p *Parser) parseDeclaratorName() (string, bool) {
	t := p.cur.Current()
	if t.Kind == lexer.Identifier {
		p.advance()
		return t.Literal, true
	}
	if t.Kind == lexer.Keyword && t.Literal == "operator" {
		p.advance()
		op := p.cur.Current()
		if op.Literal == "(" {
			// operator() — call operator.
			p.advance()
			if err := p.expect(")"); err == nil {
				return "operator()", true
			}
			return "", false
		}
		if op.Literal == "[" {
			p.advance()
			if err := p.expect("]"); err == nil {
				return "operator[]", true
			}
			return "", false
		}
		if !operatorTokens[op.Literal] {
			return "", false
		}
		p.advance()
		return "operator" + op.Literal, true
	}
	return "", false
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	t := p.cur.Current()
	line := t.Pos.Line

	if t.Kind == lexer.Punctuation && t.Literal == "{" {
		return p.parseBlock()
	}

	if t.Kind == lexer.Keyword {
		switch t.Literal {
		case "if":
			return p.parseIf()
		case "switch":
			return p.parseSwitch()
		case "while":
			return p.parseWhile()
		case "do":
			return p.parseDoWhile()
		case "for":
			return p.parseFor()
		case "break":
			p.advance()
			return p.finishSimple(&ast.BreakStatement{BaseNode: ast.NewBase(line)})
		case "continue":
			p.advance()
			return p.finishSimple(&ast.ContinueStatement{BaseNode: ast.NewBase(line)})
		case "return":
			return p.parseReturn()
		case "using":
			return p.parseUsing()
		case "typedef":
			return p.parseTypedef()
		case "namespace":
			return p.parseNamespace()
		case "struct", "class":
			return p.parseStruct()
		case "enum":
			return p.parseEnum()
		}
	}

	// Try a declaration (TypeUsage Identifier …) before falling back to
	// an expression statement — both start with an identifier/const/
	// "auto", so speculative parsing resolves the ambiguity.
	if decl, ok, err := p.tryParseVarOrFuncDecl(); ok || err != nil {
		return decl, err
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Expr: expr, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) finishSimple(s ast.Statement) (ast.Statement, error) {
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) parseBlock() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance() // '{'
	p.ctx.PushScope()
	usingDepth := p.ctx.UsingDepth()
	defer func() {
		p.ctx.PopScope()
		p.ctx.PopUsingTo(usingDepth)
	}()

	var stmts []ast.Statement
	for !p.at("}") {
		if p.cur.Is(lexer.EOF) {
			return nil, errf(line, "unterminated block")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance() // '}'
	return &ast.BlockStatement{Statements: stmts, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var els ast.Statement
	if p.cur.Current().Kind == lexer.Keyword && p.cur.Current().Literal == "else" {
		p.advance()
		els, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStatement{Condition: cond, Then: then, Else: els, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) parseSwitch() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	subject, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	var cases []ast.SwitchCase
	for !p.at("}") {
		t := p.cur.Current()
		var caseExpr ast.Expression
		if t.Kind == lexer.Keyword && t.Literal == "case" {
			p.advance()
			caseExpr, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(":"); err != nil {
				return nil, err
			}
		} else if t.Kind == lexer.Keyword && t.Literal == "default" {
			p.advance()
			if err := p.expect(":"); err != nil {
				return nil, err
			}
		} else {
			return nil, errf(t.Pos.Line, "expected 'case' or 'default', got '%s'", t.Literal)
		}

		var body []ast.Statement
		for !p.atCaseBoundary() {
			s, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			body = append(body, s)
		}
		cases = append(cases, ast.SwitchCase{Expr: caseExpr, Statements: body})
	}
	p.advance() // '}'
	return &ast.SwitchStatement{Subject: subject, Cases: cases, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) atCaseBoundary() bool {
	t := p.cur.Current()
	if t.Kind == lexer.Punctuation && t.Literal == "}" {
		return true
	}
	return t.Kind == lexer.Keyword && (t.Literal == "case" || t.Literal == "default")
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Condition: cond, Body: body, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) parseDoWhile() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ast.DoWhileStatement{Body: body, Condition: cond, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) expectKeyword(kw string) error {
	t := p.cur.Current()
	if t.Kind != lexer.Keyword || t.Literal != kw {
		return errf(t.Pos.Line, "expected '%s', got '%s'", kw, t.Literal)
	}
	p.advance()
	return nil
}

// parseFor disambiguates C-style vs. range-based for by speculatively
// parsing a declarator then checking for ':' vs ';' (§4.I).
func (p *Parser) parseFor() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}

	mark := p.cur.Mark()
	if tu, ok := p.tryParseTypeUsage(); ok && p.cur.Current().Kind == lexer.Identifier {
		name := p.cur.Current().Literal
		p.advance()
		if p.at(":") {
			p.advance()
			rangeExpr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			body, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			return &ast.RangeForStatement{VarType: tu, VarName: name, Range: rangeExpr, Body: body, BaseNode: ast.NewBase(line)}, nil
		}
	}
	p.cur = p.cur.ResetTo(mark)

	var init ast.Statement
	if !p.at(";") {
		var err error
		init, err = p.parseSimpleOrDeclStatement()
		if err != nil {
			return nil, err
		}
	} else {
		p.advance()
	}

	var cond ast.Expression
	if !p.at(";") {
		var err error
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}

	var step ast.Expression
	if !p.at(")") {
		var err error
		step, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Init: init, Condition: cond, Step: step, Body: body, BaseNode: ast.NewBase(line)}, nil
}

// parseSimpleOrDeclStatement parses a for-loop init clause: either a
// variable declaration (consuming its own trailing ';') or a bare
// expression (this caller consumes the ';').
func (p *Parser) parseSimpleOrDeclStatement() (ast.Statement, error) {
	if decl, ok, err := p.tryParseVarOrFuncDecl(); ok || err != nil {
		return decl, err
	}
	line := p.cur.Current().Pos.Line
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Expr: expr, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	if p.at(";") {
		p.advance()
		return &ast.ReturnStatement{BaseNode: ast.NewBase(line)}, nil
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Value: val, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) parseUsing() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	if p.cur.Current().Kind == lexer.Keyword && p.cur.Current().Literal == "namespace" {
		p.advance()
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		p.ctx.PushUsing(name)
		return &ast.UsingNamespaceStatement{Namespace: name, BaseNode: ast.NewBase(line)}, nil
	}
	alias, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expect("="); err != nil {
		return nil, err
	}
	tu, ok := p.tryParseTypeUsage()
	if !ok {
		return nil, errf(line, "expected a type usage after 'using %s ='", alias)
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	p.ctx.DefineAlias(alias, tu.BaseName)
	return &ast.UsingAliasStatement{Alias: alias, Type: tu, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) parseTypedef() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	tu, ok := p.tryParseTypeUsage()
	if !ok {
		return nil, errf(line, "expected a type usage after 'typedef'")
	}
	alias, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	p.ctx.DefineAlias(alias, tu.BaseName)
	return &ast.TypedefStatement{Alias: alias, Type: tu, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) parseNamespace() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	p.ctx.PushNamespace(name)
	defer p.ctx.PopNamespace()

	var stmts []ast.Statement
	for !p.at("}") {
		if p.cur.Is(lexer.EOF) {
			return nil, errf(line, "unterminated namespace '%s'", name)
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance()
	return &ast.NamespaceDecl{Name: name, Statements: stmts, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) parseEnum() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance()
	isClass := false
	if p.cur.Current().Kind == lexer.Keyword && p.cur.Current().Literal == "class" {
		isClass = true
		p.advance()
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var values []string
	var inits []ast.Expression
	for !p.at("}") {
		v, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		var init ast.Expression
		if p.at("=") {
			p.advance()
			init, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		inits = append(inits, init)
		if p.at(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ast.EnumDecl{Name: name, IsClass: isClass, Values: values, ValueInit: inits, BaseNode: ast.NewBase(line)}, nil
}

func (p *Parser) parseStruct() (ast.Statement, error) {
	line := p.cur.Current().Pos.Line
	p.advance() // 'struct' or 'class'
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	var bases []ast.BaseSpec
	if p.at(":") {
		p.advance()
		for {
			b, err := p.parseQualifiedName()
			if err != nil {
				return nil, err
			}
			bases = append(bases, ast.BaseSpec{Name: b})
			if p.at(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	decl := &ast.StructDecl{Name: name, Bases: bases, BaseNode: ast.NewBase(line)}
	for !p.at("}") {
		if p.cur.Is(lexer.EOF) {
			return nil, errf(line, "unterminated struct '%s'", name)
		}
		// skip access specifiers; this subset has no visibility rules
		if p.cur.Current().Kind == lexer.Keyword {
			switch p.cur.Current().Literal {
			case "public", "private", "protected":
				p.advance()
				if err := p.expect(":"); err != nil {
					return nil, err
				}
				continue
			}
		}
		mark := p.cur.Mark()
		tu, ok := p.tryParseTypeUsage()
		memberName, nameOk := p.parseDeclaratorName()
		if !ok || !nameOk {
			p.cur = p.cur.ResetTo(mark)
			return nil, errf(p.cur.Current().Pos.Line, "expected a member or method declaration in struct '%s'", name)
		}
		if p.at("(") {
			fn, err := p.finishFunctionDecl(tu, memberName, line, false)
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, fn)
			continue
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, ast.FieldDecl{Type: tu, Name: memberName})
	}
	p.advance() // '}'
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return decl, nil
}

// tryParseVarOrFuncDecl speculatively parses "TypeUsage Identifier"
// (or "auto Identifier") and dispatches to a function or variable
// declarator based on whether '(' follows the name.
func (p *Parser) tryParseVarOrFuncDecl() (ast.Statement, bool, error) {
	mark := p.cur.Mark()
	line := p.cur.Current().Pos.Line

	isAuto := false
	isStatic := false
	if p.cur.Current().Kind == lexer.Keyword && p.cur.Current().Literal == "static" {
		isStatic = true
		p.advance()
	}

	var tu ast.TypeUsage
	if p.cur.Current().Kind == lexer.Identifier && p.cur.Current().Literal == "auto" {
		isAuto = true
		p.advance()
	} else {
		var ok bool
		tu, ok = p.tryParseTypeUsage()
		if !ok {
			p.cur = p.cur.ResetTo(mark)
			return nil, false, nil
		}
	}

	name, nameOk := p.parseDeclaratorName()
	if !nameOk {
		p.cur = p.cur.ResetTo(mark)
		return nil, false, nil
	}
	isOperator := strings.HasPrefix(name, "operator")

	// "(" after a declarator name is ambiguous between a function
	// declaration (params are TypeUsages) and an object-construction
	// variable declarator (args are expressions) — C++'s "most vexing
	// parse" problem. A pure shape check (does the parenthesised span
	// parse as a TypeUsage parameter list?) decides which reading to
	// commit to, so a real error inside a committed function body
	// (e.g. a missing return) still propagates instead of being
	// swallowed by a fallback attempt.
	if p.at("(") && !isAuto && p.looksLikeParamList() {
		fn, err := p.finishFunctionDecl(tu, name, line, isStatic)
		return fn, true, err
	}
	if isAuto && p.at("(") {
		p.cur = p.cur.ResetTo(mark)
		return nil, false, nil
	}
	if isOperator {
		p.cur = p.cur.ResetTo(mark)
		return nil, false, nil
	}

	decl := &ast.VarDecl{Type: tu, Name: name, IsAuto: isAuto, IsStatic: isStatic, BaseNode: ast.NewBase(line)}
	if p.at("[") {
		p.advance()
		if !p.at("]") {
			size, err := p.parseExpression()
			if err != nil {
				return nil, true, err
			}
			decl.ArraySize = size
		}
		if err := p.expect("]"); err != nil {
			return nil, true, err
		}
	}
	if p.at("=") {
		p.advance()
		init, err := p.parseExpression()
		if err != nil {
			return nil, true, err
		}
		decl.Init = init
	} else if p.at("{") {
		init, err := p.parseArrayInit()
		if err != nil {
			return nil, true, err
		}
		decl.Init = init
	} else if p.at("(") {
		args, err := p.parseArgList()
		if err != nil {
			return nil, true, err
		}
		decl.Init = &ast.ObjectConstructionExpr{Type: tu, Args: args, BaseNode: ast.NewBase(line)}
	}
	if err := p.expect(";"); err != nil {
		return nil, true, err
	}
	p.ctx.DeclareInstance(name)
	return decl, true, nil
}

// atEllipsis reports whether the cursor sits on a variadic "..." —
// the lexer tokenizes it as three consecutive '.' punctuation tokens
// rather than a single operator.
func (p *Parser) atEllipsis() bool {
	return p.at(".") &&
		p.cur.Peek(1).Kind == lexer.Punctuation && p.cur.Peek(1).Literal == "." &&
		p.cur.Peek(2).Kind == lexer.Punctuation && p.cur.Peek(2).Literal == "."
}

// looksLikeParamList is a non-committing shape check: from the
// current '(', does the span parse as zero-or-more TypeUsage
// [identifier] entries (or a trailing "...") up to a matching ')'?
// Used only to disambiguate a function declaration from an
// object-construction variable declarator; it never reports parse
// errors of its own.
func (p *Parser) looksLikeParamList() bool {
	mark := p.cur.Mark()
	defer func() { p.cur = p.cur.ResetTo(mark) }()

	if !p.at("(") {
		return false
	}
	p.advance()
	if p.at(")") {
		return true
	}
	for {
		if p.atEllipsis() {
			return true
		}
		if _, ok := p.tryParseTypeUsage(); !ok {
			return false
		}
		if p.cur.Current().Kind == lexer.Identifier {
			p.advance()
		}
		if p.at(",") {
			p.advance()
			continue
		}
		break
	}
	return p.at(")")
}

func (p *Parser) finishFunctionDecl(returnType ast.TypeUsage, name string, line int, isStatic bool) (*ast.FunctionDecl, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var params []ast.ParamDecl
	variadic := false
	if !p.at(")") {
		for {
			if p.atEllipsis() {
				p.advance()
				p.advance()
				p.advance()
				variadic = true
				break
			}
			ptu, ok := p.tryParseTypeUsage()
			if !ok {
				return nil, errf(p.cur.Current().Pos.Line, "expected a parameter type")
			}
			pname := ""
			if p.cur.Current().Kind == lexer.Identifier {
				pname = p.cur.Current().Literal
				p.advance()
			}
			params = append(params, ast.ParamDecl{Type: ptu, Name: pname})
			if p.at(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	decl := &ast.FunctionDecl{Name: name, Params: params, Variadic: variadic, ReturnType: returnType, IsStatic: isStatic, BaseNode: ast.NewBase(line)}
	if p.at(";") {
		p.advance()
		return decl, nil
	}

	p.ctx.EnterFunction(name, returnType.BaseName == "void" && returnType.PointerLevel == 0)
	defer p.ctx.LeaveFunction()

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	block := body.(*ast.BlockStatement)
	decl.Body = block

	if !p.ctx.CurrentFunctionReturnsVoid() && !allPathsReturn(block.Statements) {
		return nil, errf(line, "function '%s' does not return a value on all code paths", name)
	}
	return decl, nil
}

// allPathsReturn implements §4.I's return-path verification: scans
// back through if/else chains and switch default sections.
func allPathsReturn(stmts []ast.Statement) bool {
	if len(stmts) == 0 {
		return false
	}
	return stmtAlwaysReturns(stmts[len(stmts)-1])
}

func stmtAlwaysReturns(s ast.Statement) bool {
	switch n := s.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.BlockStatement:
		return allPathsReturn(n.Statements)
	case *ast.IfStatement:
		if n.Else == nil {
			return false
		}
		return stmtAlwaysReturns(n.Then) && stmtAlwaysReturns(n.Else)
	case *ast.SwitchStatement:
		sawDefault := false
		for _, c := range n.Cases {
			if c.Expr == nil {
				sawDefault = true
			}
			if len(c.Statements) > 0 && !stmtAlwaysReturns(c.Statements[len(c.Statements)-1]) {
				return false
			}
			if len(c.Statements) == 0 {
				return false
			}
		}
		return sawDefault
	default:
		return false
	}
}
