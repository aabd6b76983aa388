// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"iter"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Action is a program ready to be invoked. An Action is immutable and
// may be invoked any number of times, from any number of goroutines;
// each invocation gets a fresh [Env] and, unless one is supplied, a
// fresh scope.
type Action struct {
	program    []any
	arrayScope bool
	strict     bool
	log        *zap.Logger
}

// Option configures an [Action].
type Option func(*Action)

// WithArrayScope makes the default scope a *[]any instead of a
// map[string]any.
func WithArrayScope() Option {
	return func(a *Action) { a.arrayScope = true }
}

// Strict reports malformed programs as [*MalformedProgramError]
// instead of degrading to fewer outputs.
func Strict() Option {
	return func(a *Action) { a.strict = true }
}

// WithLogger sets the logger used for run tracing. The default
// discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(a *Action) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates an action over program. The first token of program must
// be a step. The program slice is copied.
func New(program []any, opts ...Option) *Action {
	a := &Action{program: slices.Clone(program), log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FromMap creates an action over a key-indexed program; entries run in
// ascending key order.
func FromMap(program map[int]any, opts ...Option) *Action {
	keys := slices.Sorted(maps.Keys(program))
	seq := make([]any, len(keys))
	for i, k := range keys {
		seq[i] = program[k]
	}
	return New(seq, opts...)
}

// Program returns a copy of the action's tokens.
func (a *Action) Program() []any { return slices.Clone(a.program) }

func (a *Action) newScope() any {
	if a.arrayScope {
		return new([]any)
	}
	return map[string]any{}
}

// Start begins a run with the given scope and arguments.
// The caller must drain or Close the returned run.
func (a *Action) Start(scope any, args ...any) *Run {
	return newRun(&Env{
		Scope:   scope,
		Args:    args,
		program: a.program,
		strict:  a.strict,
		log:     a.log,
	})
}

// GenWith runs the action against scope and yields every top-level
// output. Stopping the loop early closes the run. If the run fails, the
// error is yielded last with a nil value.
func (a *Action) GenWith(scope any, args ...any) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		r := a.Start(scope, args...)
		defer r.Close()
		for {
			v, ok := r.Next()
			if !ok {
				break
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := r.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Gen is GenWith with a fresh default scope.
func (a *Action) Gen(args ...any) iter.Seq2[any, error] {
	return a.GenWith(a.newScope(), args...)
}

// CallWith runs the action against scope and returns its first output.
// The run is closed before CallWith returns: nothing after the first
// output is evaluated and every pulled sequence is stopped.
func (a *Action) CallWith(scope any, args ...any) (any, error) {
	r := a.Start(scope, args...)
	defer r.Close()
	v, ok := r.Next()
	if !ok {
		return nil, r.Err()
	}
	return v, nil
}

// Call is CallWith with a fresh default scope.
func (a *Action) Call(args ...any) (any, error) {
	return a.CallWith(a.newScope(), args...)
}
