// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"errors"

	"go.uber.org/zap"

	"code.hybscloud.com/action/deep"
)

// Env is the run-time record shared by every step of one run.
type Env struct {
	// Scope is the binding context. Functions and member steps mutate it
	// in place; nothing is rolled back when a run stops early.
	Scope any

	// Args are the arguments the action was invoked with.
	Args []any

	program []any
	pos     int
	strict  bool
	log     *zap.Logger
}

// Remaining reports how many program tokens have not been read yet.
func (e *Env) Remaining() int { return len(e.program) - e.pos }

// Strict reports whether malformed programs are reported as errors.
func (e *Env) Strict() bool { return e.strict }

func (e *Env) next() (any, bool) {
	if e.pos >= len(e.program) {
		return nil, false
	}
	v := e.program[e.pos]
	e.pos++
	return v, true
}

// derive returns an environment over program sharing scope and args.
func (e *Env) derive(program []any) *Env {
	return &Env{
		Scope:   e.Scope,
		Args:    e.Args,
		program: program,
		strict:  e.strict,
		log:     e.log,
	}
}

// insufficient reports a step that collected fewer values than it needs.
// Permissive runs carry on with no output.
func (e *Env) insufficient(step string, want, got int) error {
	if !e.strict {
		return nil
	}
	return &MalformedProgramError{
		Kind:   InsufficientStepArguments,
		Step:   step,
		Detail: countDetail(want, got),
	}
}

// resolved filters a deep-key lookup result. Unresolvable keys become a
// nil value in permissive runs; errors raised by called functions pass
// through unchanged.
func (e *Env) resolved(step string, v any, err error) (any, error) {
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, deep.ErrNotFound) && !errors.Is(err, deep.ErrUnsupported) {
		return nil, err
	}
	if !e.strict {
		e.log.Debug("unresolved key", zap.String("step", step), zap.Error(err))
		return nil, nil
	}
	return nil, &MalformedProgramError{Kind: UnresolvedDeepKey, Step: step, Err: err}
}
