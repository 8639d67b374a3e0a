// Package diagnostics renders tokens, AST nodes, and namespace trees
// for the `cflat` CLI's debug-dump flags (`lex --json`, `parse --json`,
// `parse --dump-ast`, `check --dump-namespaces`).
//
// Generalizes a plain-text-only token/AST printer into structured
// JSON/YAML dumps for scripting and machine consumption.
//
// Namespace dumps cover variables and child namespaces only: the
// runtime's type and function holders are lookup-only and expose no
// enumeration, so they have nothing for this package to walk.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/kr/pretty"
	"github.com/maruel/natural"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/lexer"
	"github.com/cflat-go/cflat/internal/runtime"
)

// TokensJSON renders tokens as a pretty-printed JSON array of
// {kind, literal, line, column} records (`cflat lex --json`).
func TokensJSON(tokens []lexer.Token) (string, error) {
	buf := "[]"
	for i, tok := range tokens {
		var err error
		path := func(field string) string { return fmt.Sprintf("%d.%s", i, field) }
		if buf, err = sjson.Set(buf, path("kind"), tok.Kind.String()); err != nil {
			return "", err
		}
		if buf, err = sjson.Set(buf, path("literal"), tok.Literal); err != nil {
			return "", err
		}
		if buf, err = sjson.Set(buf, path("line"), tok.Pos.Line); err != nil {
			return "", err
		}
		if buf, err = sjson.Set(buf, path("column"), tok.Pos.Column); err != nil {
			return "", err
		}
	}
	return gjson.Get(buf, "@pretty").String(), nil
}

// ProgramJSON renders a parsed program's statements as a pretty-printed
// JSON array of their textual forms (`cflat parse --json`); a full
// structural AST dump is available via ProgramDump for `--dump-ast`.
func ProgramJSON(prog *ast.Program) (string, error) {
	buf := "[]"
	for i, stmt := range prog.Statements {
		var err error
		if buf, err = sjson.Set(buf, fmt.Sprintf("%d.statement", i), stmt.String()); err != nil {
			return "", err
		}
		if buf, err = sjson.Set(buf, fmt.Sprintf("%d.line", i), stmt.Line()); err != nil {
			return "", err
		}
	}
	return gjson.Get(buf, "@pretty").String(), nil
}

// ProgramDump renders a Go-syntax, field-by-field dump of prog's
// statements for `cflat parse --dump-ast`.
func ProgramDump(prog *ast.Program) string {
	var out string
	for _, stmt := range prog.Statements {
		out += fmt.Sprintf("%# v\n", pretty.Formatter(stmt))
	}
	return out
}

// namespaceNode is the serializable shape of one namespace-tree level
// for DumpNamespacesYAML.
type namespaceNode struct {
	Name      string          `yaml:"name"`
	Variables []string        `yaml:"variables,omitempty"`
	Children  []namespaceNode `yaml:"children,omitempty"`
}

// DumpNamespacesYAML renders root's namespace tree (variables declared
// directly in each namespace, plus child namespaces, recursively) as
// YAML, sorted with natural ordering for deterministic output
// (`cflat check --dump-namespaces`).
// Types and functions are omitted: TypesHolder and FunctionsHolder
// only support lookup by id, not enumeration.
func DumpNamespacesYAML(root *runtime.Namespace) (string, error) {
	node := buildNamespaceNode(root)
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func buildNamespaceNode(ns *runtime.Namespace) namespaceNode {
	node := namespaceNode{Name: ns.FullName.String()}
	if node.Name == "" {
		node.Name = "::"
	}

	for _, inst := range ns.Instances.All() {
		node.Variables = append(node.Variables, inst.Name.String())
	}
	sortNatural(node.Variables)

	children := ns.Children()
	names := make([]string, len(children))
	byName := make(map[string]*runtime.Namespace, len(children))
	for i, c := range children {
		names[i] = c.Name.String()
		byName[names[i]] = c
	}
	sortNatural(names)
	for _, name := range names {
		node.Children = append(node.Children, buildNamespaceNode(byName[name]))
	}

	return node
}

func sortNatural(ss []string) {
	sort.Slice(ss, func(i, j int) bool { return natural.Less(ss[i], ss[j]) })
}

// SortFunctionNames returns names sorted for deterministic host display
// (§4.K get_functions), using natural ordering so `Foo2` sorts before
// `Foo10`.
func SortFunctionNames(names []string) []string {
	out := append([]string(nil), names...)
	sortNatural(out)
	return out
}
