// Package jerrors formats compiler and internal errors with source context,
// line/column information and a caret pointing at the offending column.
package jerrors

import (
	"fmt"
	"strings"

	"github.com/cwbudde-labs/jactl/internal/token"
)

// CompileError is a deterministic, locatable error raised by any compiler
// pass (tokeniser, parser, resolver; the async analyser raises none). Spec §7: "Surfaced
// with source, line, column, and a caret-marked excerpt of the offending
// line."
type CompileError struct {
	Message string
	Pos     token.Position
	Source  string
	File    string
}

func NewCompileError(pos token.Position, message, source, file string) *CompileError {
	return &CompileError{Message: message, Pos: pos, Source: source, File: file}
}

func (e *CompileError) Error() string {
	return e.Format(false)
}

// Format renders the error with a source-line excerpt and caret. When color
// is true the header, caret and message are ANSI-highlighted for a terminal.
func (e *CompileError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := sourceLine(e.Source, e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors renders a batch of compile errors, one per diagnostic.
func FormatErrors(errs []*CompileError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Compilation failed with %d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[Error %d of %d]\n", i+1, len(errs))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// InternalError indicates a compiler invariant violation (spec §7/§8): an
// identifier surviving resolution with a nil VarDecl, an expression whose
// type is still `unknown` after the Resolver, etc. Always fatal.
type InternalError struct {
	Message string
	Pos     token.Position
}

func NewInternalError(pos token.Position, format string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...), Pos: pos}
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("Internal error: %s at %s", e.Message, e.Pos)
}

// RuntimeError is emitted by code the compiler produces (spec §7 third
// bullet): null dereference, divide-by-zero, cast failure, regex error.
// This package only defines the shape; raising it at runtime is a back-end
// concern, out of scope here.
type RuntimeError struct {
	Message string
	Pos     token.Position
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// Diagnostics accumulates CompileErrors across a single compilation so
// that more than one error can be reported without aborting on the first
// (the overall compilation still aborts as a whole — see pkg/jactl.Compile).
type Diagnostics struct {
	Errors []*CompileError
}

func (d *Diagnostics) Add(pos token.Position, source, file, format string, args ...interface{}) {
	d.Errors = append(d.Errors, NewCompileError(pos, fmt.Sprintf(format, args...), source, file))
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

func (d *Diagnostics) Format(color bool) string {
	return FormatErrors(d.Errors, color)
}
