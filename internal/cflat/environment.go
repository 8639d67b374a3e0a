// Package cflat is the public embedding surface for the script engine:
// one Environment owns a namespace tree, an execution context, the
// preprocessor's macro table, and a single mutable error-message slot
// (§4.K, §6, §7).
//
// A thin wrapper-over-runtime-state façade in the style of
// New(opts...)/RegisterFunction/Eval/SetOutput, generalized to Cflat's
// load/evaluate_expression/diagnostic surface and its uniform
// (args []Value, out *Value) error trampoline contract (§6).
package cflat

import (
	"fmt"
	"io"
	"os"

	cferrors "github.com/cflat-go/cflat/internal/errors"
	"github.com/cflat-go/cflat/internal/eval"
	"github.com/cflat-go/cflat/internal/lexer"
	"github.com/cflat-go/cflat/internal/parser"
	"github.com/cflat-go/cflat/internal/preproc"
	"github.com/cflat-go/cflat/internal/runtime"
)

// CallFrame re-exports eval.CallFrame for execution-hook consumers that
// don't otherwise need to import internal/eval.
type CallFrame = eval.CallFrame

// Environment is the host-facing engine instance. All of its mutable
// state must be driven from one goroutine at a time (§5): concurrent
// access needs external serialisation, which this package leaves to
// the host rather than building in internally.
type Environment struct {
	interp *eval.Interpreter
	pre    *preproc.Preprocessor

	// sources preserves each load's raw (pre-preprocess) text by
	// program name, for reset_statics (§4.K) to re-run.
	sources []namedSource

	lastError string
	lastDiag  *cferrors.CompilerError
}

type namedSource struct {
	name string
	src  string
}

// Option configures an Environment at construction time.
type Option func(*Environment)

// WithOutput redirects the interpreter's host-visible output stream
// (e.g. a registered printf trampoline writing through it). Defaults to
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Environment) { e.interp.Output = w }
}

// New returns a ready-to-use Environment seeded with the built-in
// scalar types (§4.K).
func New(opts ...Option) *Environment {
	env := &Environment{
		interp: eval.New(os.Stdout),
		pre:    preproc.New(),
	}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// SetOutput is the imperative counterpart to WithOutput, for hosts that
// construct an Environment before deciding where output should go.
func (e *Environment) SetOutput(w io.Writer) { e.interp.Output = w }

// SetExecutionHook wires fn to run after every executed statement with
// a snapshot of the current call stack (§4.J, §4.K) — used by an
// external debug adapter for breakpoints and stepping.
func (e *Environment) SetExecutionHook(fn func([]CallFrame)) {
	e.interp.Hook = fn
}

// diagnostic renders the fixed single-line format every stage reduces
// to: "[<Stage> Error] '<program>' -- Line <n>: <message>" (§6, §7), and
// retains the structured *cferrors.CompilerError (with source carried
// for caret-pointer rendering) for LastDiagnosticDetail.
func (e *Environment) diagnostic(stage cferrors.Stage, program string, line int, message, source string) string {
	err := cferrors.NewCompilerError(stage, program, lexer.Position{Line: line}, message, source, program)
	e.lastDiag = err
	return err.Error()
}

// LastDiagnosticDetail renders the most recent diagnostic with source
// context and a caret pointing at the offending column, for --trace/
// debug-mode CLI output; empty once GetErrorMessage() is empty too.
func (e *Environment) LastDiagnosticDetail(contextLines int, color bool) string {
	if e.lastDiag == nil {
		return ""
	}
	return e.lastDiag.FormatWithContext(contextLines, color)
}

// Load preprocesses, parses, and executes source under name (§4.K).
// The error slot is cleared at the start of the call ("the first error
// sticks" only within one load, per §7); on success the raw source is
// retained for a later reset_statics.
func (e *Environment) Load(name, source string) error {
	e.lastError = ""
	e.lastDiag = nil

	expanded, err := e.pre.Process(source)
	if err != nil {
		if perr, ok := err.(*preproc.Error); ok {
			e.lastError = e.diagnostic(cferrors.Preprocessor, name, perr.Line, perr.Message, source)
			return fmt.Errorf("%s", e.lastError)
		}
		e.lastError = e.diagnostic(cferrors.Preprocessor, name, 0, err.Error(), source)
		return fmt.Errorf("%s", e.lastError)
	}

	prog, err := parser.Parse(expanded)
	if err != nil {
		if perr, ok := err.(*parser.Error); ok {
			e.lastError = e.diagnostic(cferrors.Compile, name, perr.Line, perr.Message, source)
			return fmt.Errorf("%s", e.lastError)
		}
		e.lastError = e.diagnostic(cferrors.Compile, name, 0, err.Error(), source)
		return fmt.Errorf("%s", e.lastError)
	}
	prog.Name = name

	if err := e.interp.Run(prog); err != nil {
		if rerr, ok := err.(*eval.RuntimeError); ok {
			e.lastError = e.diagnostic(cferrors.Runtime, name, rerr.Line, rerr.Message, source)
			return fmt.Errorf("%s", e.lastError)
		}
		e.lastError = e.diagnostic(cferrors.Runtime, name, e.interp.Context().CurrentLine(), err.Error(), source)
		return fmt.Errorf("%s", e.lastError)
	}

	e.rememberSource(name, source)
	return nil
}

// LoadFromFile reads path and loads it under its own path as the
// program name (§4.K).
func (e *Environment) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return e.Load(path, string(data))
}

func (e *Environment) rememberSource(name, src string) {
	for i, s := range e.sources {
		if s.name == name {
			e.sources[i].src = src
			return
		}
	}
	e.sources = append(e.sources, namedSource{name: name, src: src})
}

// EvaluateExpression parses a single expression in the environment's
// current execution context and evaluates it (§4.K).
func (e *Environment) EvaluateExpression(text string) (*runtime.Value, error) {
	e.lastError = ""
	e.lastDiag = nil
	expr, err := parser.ParseExpression(text)
	if err != nil {
		if perr, ok := err.(*parser.Error); ok {
			e.lastError = e.diagnostic(cferrors.Compile, "<expression>", perr.Line, perr.Message, text)
			return nil, fmt.Errorf("%s", e.lastError)
		}
		e.lastError = e.diagnostic(cferrors.Compile, "<expression>", 0, err.Error(), text)
		return nil, fmt.Errorf("%s", e.lastError)
	}

	val, err := e.interp.EvalExpression(expr)
	if err != nil {
		if rerr, ok := err.(*eval.RuntimeError); ok {
			e.lastError = e.diagnostic(cferrors.Runtime, "<expression>", rerr.Line, rerr.Message, text)
			return nil, fmt.Errorf("%s", e.lastError)
		}
		e.lastError = e.diagnostic(cferrors.Runtime, "<expression>", 0, err.Error(), text)
		return nil, fmt.Errorf("%s", e.lastError)
	}
	return val, nil
}

// VoidFunctionCall invokes fn with no arguments and discards its return
// value — a convenience wrapper for host-side entry points/callbacks
// (§4.K).
func (e *Environment) VoidFunctionCall(fn *runtime.Function) error {
	_, err := e.interp.Call(fn, nil, nil)
	return err
}

// ThrowCustomRuntimeError is called from within a registered host
// trampoline to raise a runtime error attributed to the current
// call-stack frame's line (§7 "custom runtime errors"). The returned
// error must be propagated up through the trampoline's own return.
func (e *Environment) ThrowCustomRuntimeError(message string) error {
	line := e.interp.Context().CurrentLine()
	name, src := e.currentProgram()
	e.lastError = e.diagnostic(cferrors.Runtime, name, line, message, src)
	return &eval.RuntimeError{Line: line, Message: message}
}

// currentProgram returns the most recently loaded program's name and
// raw source text, for attributing a custom runtime error's source
// context (§7 "custom runtime errors").
func (e *Environment) currentProgram() (name, src string) {
	if len(e.sources) == 0 {
		return "<program>", ""
	}
	last := e.sources[len(e.sources)-1]
	return last.name, last.src
}

// GetErrorMessage returns the environment's single diagnostic string,
// populated by the most recent failing Load/EvaluateExpression or
// ThrowCustomRuntimeError, empty when nothing has failed since (§7).
func (e *Environment) GetErrorMessage() string { return e.lastError }

// ResetStatics re-executes every stored program in load order to
// re-seed file-scope state, and clears the block-scope static storage
// map (§4.K). Namespace-level variable declarations re-run as fresh
// Instances.Declare calls that shadow the previous ones rather than
// replacing them in place — acceptable since lookup always resolves to
// the most recently declared binding (§3 "latest shadows earliest").
func (e *Environment) ResetStatics() error {
	e.interp.ClearStatics()
	for _, s := range e.sources {
		if err := e.Load(s.name, s.src); err != nil {
			return err
		}
	}
	return nil
}
