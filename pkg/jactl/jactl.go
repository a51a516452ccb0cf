// Package jactl is the host API for compiling Jactl source through the
// tokeniser, parser, resolver and async-propagation analyser (spec §6
// "Host API", component pipeline C1-C5). Executing the result is an
// external collaborator's job (the back-end and suspend/resume runtime
// are explicit Non-goals of this module).
package jactl

import (
	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/async"
	"github.com/cwbudde-labs/jactl/internal/jerrors"
	"github.com/cwbudde-labs/jactl/internal/jparser"
	"github.com/cwbudde-labs/jactl/internal/resolver"
)

// Options configures a compilation, mirroring the teacher's functional
// options pattern (grounded on go-dws's `New(WithCompileMode(...))`).
type Options struct {
	File               string
	ReplMode           bool
	DebugLevel         int
	MinScale           int
	EvaluateConstExprs bool
	PrintLoop          bool
	NonPrintLoop       bool

	knownAsync       async.KnownAsync
	assumeEveryAsync bool
}

// Option mutates an Options value being built up by Compile.
type Option func(*Options)

func WithFile(name string) Option            { return func(o *Options) { o.File = name } }
func WithReplMode(v bool) Option             { return func(o *Options) { o.ReplMode = v } }
func WithDebugLevel(level int) Option        { return func(o *Options) { o.DebugLevel = level } }
func WithMinScale(n int) Option              { return func(o *Options) { o.MinScale = n } }
func WithEvaluateConstExprs(v bool) Option   { return func(o *Options) { o.EvaluateConstExprs = v } }
func WithPrintLoop(v bool) Option            { return func(o *Options) { o.PrintLoop = v } }
func WithNonPrintLoop(v bool) Option         { return func(o *Options) { o.NonPrintLoop = v } }
func WithKnownAsync(fn async.KnownAsync) Option {
	return func(o *Options) { o.knownAsync = fn }
}

// WithAssumeEveryCallAsync is the spec §4.5/§8 testing hook: every
// function in the program is marked async regardless of what it calls.
func WithAssumeEveryCallAsync(v bool) Option {
	return func(o *Options) { o.assumeEveryAsync = v }
}

func newOptions(opts ...Option) *Options {
	o := &Options{MinScale: 10}
	for _, apply := range opts {
		apply(o)
	}
	return o
}

// CompiledUnit is the front/middle-end's output: a fully resolved,
// async-annotated AST ready for an external back-end to generate code
// from.
type CompiledUnit struct {
	Program    *ast.Program
	Main       *ast.FunDecl
	AsyncFuncs []*ast.FunDecl
	Diagnostics *jerrors.Diagnostics
}

// HasErrors reports whether compilation failed with one or more compile
// errors (spec §7: "compilation as a whole still aborts on any error").
func (c *CompiledUnit) HasErrors() bool {
	return c.Diagnostics != nil && c.Diagnostics.HasErrors()
}

// Compile runs the full C1-C5 pipeline over source: tokenise, parse,
// resolve, analyse async-propagation. It always returns a CompiledUnit,
// even on error, so callers can still inspect partial diagnostics/AST
// (spec §7: "more than one error can be reported without aborting on the
// first").
func Compile(source string, opts ...Option) *CompiledUnit {
	o := newOptions(opts...)

	p := jparser.New(o.File, source)
	prog := p.ParseProgram()

	diags := &jerrors.Diagnostics{}
	diags.Errors = append(diags.Errors, p.Diagnostics().Errors...)

	res := resolver.New(source, o.File, resolver.Options{ReplMode: o.ReplMode})
	main := res.Resolve(prog)
	diags.Errors = append(diags.Errors, res.Diagnostics().Errors...)

	var asyncFuncs []*ast.FunDecl
	if !diags.HasErrors() {
		analyser := async.New(o.knownAsync)
		analyser.AssumeEveryCallAsync(o.assumeEveryAsync)
		asyncFuncs = analyser.Analyse(main)
	}

	return &CompiledUnit{
		Program:     prog,
		Main:        main,
		AsyncFuncs:  asyncFuncs,
		Diagnostics: diags,
	}
}
