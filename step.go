// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import "iter"

// Priority decides what happens when a step is met while another step
// is still collecting values.
type Priority uint8

const (
	// Normal steps end the enclosing collection and become its continuation.
	Normal Priority = iota
	// Forced steps run inline; their output is folded into the
	// enclosing collection as ordinary data.
	Forced
)

func (p Priority) String() string {
	if p == Forced {
		return "forced"
	}
	return "normal"
}

// Kind is the interpretation policy of a step. Begin is called once per
// run of the step and returns the reducer that receives its collected
// values.
type Kind interface {
	Name() string
	Begin(env *Env) Reducer
}

// Reducer consumes the values collected for one run of a step.
// Accept is called for each value in program order, interleaved with the
// evaluation of nested forced steps; Finish is called once collection
// ends. Both may emit outputs through out. A non-nil error stops the run.
type Reducer interface {
	Accept(v any, out *Output) error
	Finish(out *Output) error
}

// Step pairs a [Kind] with a [Priority].
// Steps hold no run state: one Step may appear many times in a program
// and be shared by concurrently running actions.
type Step struct {
	kind     Kind
	priority Priority
}

// NewStep creates a step of the given kind and priority.
func NewStep(kind Kind, p Priority) *Step {
	if kind == nil {
		panic("action: nil step kind")
	}
	return &Step{kind: kind, priority: p}
}

// Both returns the normal and forced forms of kind.
func Both(kind Kind) (normal, forced *Step) {
	return NewStep(kind, Normal), NewStep(kind, Forced)
}

// Kind returns the step's interpretation policy.
func (s *Step) Kind() Kind { return s.kind }

// Priority returns the step's priority.
func (s *Step) Priority() Priority { return s.priority }

func (s *Step) String() string {
	return s.kind.Name() + "/" + s.priority.String()
}

// Output collects what a reducer emits. Emitted values are delivered in
// order and lazily: a spread sequence is pulled one element at a time,
// only as far as the consumer of the run asks for.
type Output struct {
	srcs []source
}

// Yield emits v.
func (o *Output) Yield(v any) {
	if n := len(o.srcs); n > 0 {
		if s, ok := o.srcs[n-1].(*sliceSource); ok {
			s.vs = append(s.vs, v)
			return
		}
	}
	o.srcs = append(o.srcs, &sliceSource{vs: []any{v}})
}

// YieldAll emits every element of vs.
func (o *Output) YieldAll(vs ...any) {
	for _, v := range vs {
		o.Yield(v)
	}
}

// Spread emits the elements of seq. The sequence is started on first
// demand and stopped when exhausted or when the run is closed.
func (o *Output) Spread(seq iter.Seq[any]) {
	if seq == nil {
		return
	}
	o.srcs = append(o.srcs, &seqSource{seq: seq})
}

func (o *Output) pending() bool { return len(o.srcs) > 0 }

// pull returns the next emitted value. ok is false when the head source
// was exhausted and dropped; the caller should check pending again.
func (o *Output) pull() (v any, ok bool, err error) {
	src := o.srcs[0]
	v, ok, err = src.next()
	if ok || err != nil {
		return v, ok, err
	}
	src.close()
	o.srcs[0] = nil
	o.srcs = o.srcs[1:]
	return nil, false, nil
}

func (o *Output) close() {
	for _, src := range o.srcs {
		src.close()
	}
	o.srcs = nil
}
