// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run is one pass over a program. It is a pull iterator: outputs are
// computed only as far as [Run.Next] is called, and [Run.Close] disposes
// of whatever is still in flight.
//
// A Run is not safe for concurrent use. Distinct runs of the same
// [Action] are independent.
type Run struct {
	id    string
	env   *Env
	lead  *Step
	stack []*frame
	low   int // no frame below low holds output
	err   error
	done  bool
	log   *zap.Logger
}

func newRun(env *Env) *Run {
	id := uuid.NewString()
	r := &Run{id: id, env: env, log: env.log.With(zap.String("run", id))}

	v, ok := env.next()
	t := Classify(v)
	if !ok || t.Kind != StepRef {
		r.done = true
		if env.strict {
			r.err = &MalformedProgramError{
				Kind:   MissingLeadingStep,
				Detail: "first token is " + t.Kind.String(),
			}
			r.log.Warn("malformed program", zap.Error(r.err))
		}
		return r
	}
	r.lead = t.Step
	r.log.Debug("run start", zap.Int("tokens", len(env.program)))
	r.push(t.Step)
	return r
}

// ID identifies the run in log output.
func (r *Run) ID() string { return r.id }

// Env returns the run's environment.
func (r *Run) Env() *Env { return r.env }

// Lead returns the leading step, or nil if the program does not
// start with one.
func (r *Run) Lead() *Step { return r.lead }

// Err returns the error that stopped the run, if any. A user function
// error is returned exactly as the function returned it.
func (r *Run) Err() error { return r.err }

// Close stops the run and releases every frame, pending output and
// pulled sequence. Close is idempotent.
func (r *Run) Close() {
	if r.stack == nil && r.done {
		return
	}
	for i := len(r.stack) - 1; i >= 0; i-- {
		releaseFrame(r.stack[i])
		r.stack[i] = nil
	}
	r.stack = nil
	if !r.done {
		r.log.Debug("run closed early", zap.Int("unread", r.env.Remaining()))
	}
	r.done = true
}

// All drains the run and returns every output.
func (r *Run) All() ([]any, error) {
	defer r.Close()
	var out []any
	for {
		v, ok := r.Next()
		if !ok {
			return out, r.err
		}
		out = append(out, v)
	}
}

func (r *Run) fail(err error) {
	if r.err == nil {
		r.err = err
	}
	r.Close()
}
