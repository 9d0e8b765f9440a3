// Package brep implements the B-Rep-capable geometry backend. Parametric
// models are native solid scripts (.csg): zygomys (Lisp) programs of
// primitives, booleans and transforms with named top-level parts. Scripts
// evaluate to constructive solids through a csg.Builder; each named part
// becomes one topological face for tessellation.
package brep

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/zimin2020/polarbear/pkg/kernel/csg"
)

// DefaultEvalTimeout is the hard limit for a single script evaluation.
// Scripts are user input; an accidental infinite loop must not wedge the
// import path.
const DefaultEvalTimeout = 5 * time.Second

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in script code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Part is one named solid produced by a script. Parts act as the
// topological faces of the model: each is triangulated independently.
type Part struct {
	Name  string
	Solid csg.Solid
}

// Model is the result of evaluating a solid script. Parts appear in
// declaration order. Source retains the script text for re-export.
type Model struct {
	Parts  []Part
	Source string
}

// Engine evaluates solid scripts against a csg.Builder.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	builder csg.Builder
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine that builds solids with the given builder.
func NewEngine(builder csg.Builder) *Engine {
	return &Engine{builder: builder, timeout: DefaultEvalTimeout}
}

// evalOutcome carries one evaluation's results off its goroutine.
type evalOutcome struct {
	model  *Model
	errors []EvalError
	err    error
}

// Evaluate takes script source and produces a Model.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns model + nil errors + nil error
//   - On parse/eval failure: returns nil model + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Model, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalOutcome{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		m, evalErrs, err := e.evaluate(source)
		ch <- evalOutcome{model: m, errors: evalErrs, err: err}
	}()

	return e.await(ch, gen)
}

// await collects an evaluation outcome, bounding the wait by the engine
// timeout. An outcome whose generation a newer Evaluate call has passed is
// discarded: the goroutine may still deliver it after a timeout, but only
// the most recent request may observe a result.
func (e *Engine) await(ch <-chan evalOutcome, gen uint64) (*Model, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		e.mu.Lock()
		stale := gen != e.generation
		e.mu.Unlock()
		if stale {
			return nil, nil, fmt.Errorf("evaluation superseded by a newer request")
		}
		return out.model, out.errors, out.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", e.timeout)
	}
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Model, []EvalError, error) {
	// Empty source is a valid program that produces an empty model.
	if strings.TrimSpace(source) == "" {
		return &Model{Source: source}, nil, nil
	}

	// Create a fresh sandboxed zygomys environment.
	// Sandbox mode prevents script code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	model := &Model{Source: source}
	registerBuiltins(env, e.builder, model)

	// The preprocessor rewrites keywords, kebab-case identifiers, and
	// comments in place, so line numbers survive for error reporting.
	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	return model, nil, nil
}

// linePatterns match the zygomys error formats that carry a line number:
// "Error on line N: ..." and the shorter "line N: ...".
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError converts a zygomys error into EvalError values,
// extracting the line number where the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range linePatterns {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
