// Package parser implements Cflat's recursive-descent parser (§4.I):
// a two-mode expression parser (single-token literal vs. multi-token
// precedence scan), C-style-cast/template-angle disambiguation, and
// the full statement grammar.
//
// An immutable Cursor over a buffered token slice with Mark/ResetTo
// for backtracking, covering the backtracking this grammar actually
// needs (speculative TypeUsage parse for C-style casts, isTemplate(open,
// close) lookahead).
package parser

import "github.com/cflat-go/cflat/internal/lexer"

// Cursor is an immutable navigation cursor over a buffered token
// stream, supporting arbitrary lookahead and Mark/ResetTo backtracking.
type Cursor struct {
	lex     *lexer.Lexer
	tokens  []lexer.Token
	index   int
}

// NewCursor returns a Cursor positioned at the first token of src.
func NewCursor(lex *lexer.Lexer) *Cursor {
	first := lex.NextToken()
	toks := make([]lexer.Token, 1, 32)
	toks[0] = first
	return &Cursor{lex: lex, tokens: toks, index: 0}
}

// Current returns the token at the cursor's position.
func (c *Cursor) Current() lexer.Token { return c.tokens[c.index] }

// Peek returns the token n positions ahead (Peek(0) == Current()).
func (c *Cursor) Peek(n int) lexer.Token {
	if n < 0 {
		return c.Current()
	}
	target := c.index + n
	for target >= len(c.tokens) {
		last := c.tokens[len(c.tokens)-1]
		if last.Kind == lexer.EOF {
			break
		}
		c.tokens = append(c.tokens, c.lex.NextToken())
	}
	if target < len(c.tokens) {
		return c.tokens[target]
	}
	return c.tokens[len(c.tokens)-1]
}

// Advance returns a new cursor one token ahead.
func (c *Cursor) Advance() *Cursor { return c.AdvanceN(1) }

// AdvanceN returns a new cursor n tokens ahead, clamped at EOF.
func (c *Cursor) AdvanceN(n int) *Cursor {
	if n <= 0 {
		return c
	}
	c.Peek(n)
	idx := c.index + n
	if idx >= len(c.tokens) {
		idx = len(c.tokens) - 1
	}
	return &Cursor{lex: c.lex, tokens: c.tokens, index: idx}
}

// Is reports whether the current token has the given kind.
func (c *Cursor) Is(k lexer.Kind) bool { return c.Current().Kind == k }

// IsLiteral reports whether the current token is kind k with literal
// text lit (used for keyword/operator/punctuation spelling checks).
func (c *Cursor) IsLiteral(k lexer.Kind, lit string) bool {
	t := c.Current()
	return t.Kind == k && t.Literal == lit
}

// Expect advances past the current token if it matches (kind, lit),
// returning the new cursor and true; otherwise returns c unchanged and
// false.
func (c *Cursor) Expect(k lexer.Kind, lit string) (*Cursor, bool) {
	if c.IsLiteral(k, lit) {
		return c.Advance(), true
	}
	return c, false
}

// Mark is a lightweight saved cursor position for backtracking.
type Mark struct{ index int }

// Mark saves the current position.
func (c *Cursor) Mark() Mark { return Mark{index: c.index} }

// ResetTo returns a cursor restored to a previously saved Mark.
func (c *Cursor) ResetTo(m Mark) *Cursor {
	if m.index < 0 || m.index >= len(c.tokens) {
		return c
	}
	return &Cursor{lex: c.lex, tokens: c.tokens, index: m.index}
}
