// Package jdebug renders compiler-internal state (token stream, raw AST,
// resolved AST, async-flag table) as indented JSON or Go-syntax dumps for
// the `-d` debug flag (SPEC_FULL.md §B4/§C/§D).
package jdebug

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"
	"github.com/tidwall/gjson"
	tidwallpretty "github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/token"
)

// Level selects how much internal state Dump renders, mirroring the
// teacher's own -d flag's escalating verbosity levels.
type Level int

const (
	LevelNone Level = iota
	LevelTokens
	LevelRawAST
	LevelResolvedAST
	LevelAsync
)

// DumpTokens renders the token stream starting at first as pretty-printed
// JSON, one object per token (SPEC_FULL.md §D debug artifact design).
func DumpTokens(first *token.Token) string {
	var sb strings.Builder
	sb.WriteString("[")
	count := 0
	for t := first; t != nil; t = t.Next {
		if count > 0 {
			sb.WriteString(",")
		}
		doc, _ := sjson.Set("{}", "kind", t.Kind.String())
		doc, _ = sjson.Set(doc, "text", t.Text())
		doc, _ = sjson.Set(doc, "line", t.Line)
		doc, _ = sjson.Set(doc, "column", t.Column)
		sb.WriteString(doc)
		count++
		if t.Kind == token.EOF {
			break
		}
	}
	sb.WriteString("]")
	return string(tidwallpretty.Pretty([]byte(sb.String())))
}

// DumpAST renders prog using kr/pretty's Go-syntax formatter, the same
// tool the teacher's test suite uses for structural diffs.
func DumpAST(prog *ast.Program) string {
	return fmt.Sprintf("%# v", pretty.Formatter(prog))
}

// DumpFunc renders a single resolved FunDecl (post-resolver, post-async),
// useful for printing just the script-main function the host API returns.
func DumpFunc(fn *ast.FunDecl) string {
	return fmt.Sprintf("%# v", pretty.Formatter(fn))
}

// AsyncEntry is one row of the async-flag table dump.
type AsyncEntry struct {
	Name    string
	IsAsync bool
}

// DumpAsyncTable renders the async-propagation analyser's final verdict
// for every function it visited (spec §4.5, SPEC_FULL.md §D).
func DumpAsyncTable(funcs []*ast.FunDecl) string {
	entries := make([]AsyncEntry, 0, len(funcs))
	for _, fn := range funcs {
		name := fn.Name
		if name == "" {
			name = "<closure>"
		}
		isAsync := fn.Descriptor != nil && fn.Descriptor.IsAsync
		entries = append(entries, AsyncEntry{Name: name, IsAsync: isAsync})
	}
	doc := "[]"
	for i, e := range entries {
		doc, _ = sjson.Set(doc, fmt.Sprintf("%d.name", i), e.Name)
		doc, _ = sjson.Set(doc, fmt.Sprintf("%d.async", i), e.IsAsync)
	}
	return string(tidwallpretty.Pretty([]byte(doc)))
}

// Query extracts one field from a previously rendered JSON dump, letting
// callers (e.g. a snapshot test asserting on just one token's kind) avoid
// re-parsing the whole document by hand.
func Query(jsonDoc, path string) string {
	return gjson.Get(jsonDoc, path).String()
}
