// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Next advances the run to its next top-level output.
// It returns false once the program is exhausted, the run failed
// (see [Run.Err]) or the run was closed.
//
// Evaluation is an explicit frame stack driven by a single loop: forced
// steps push a frame instead of recursing, and a continuation replaces
// the finished bottom frame instead of growing the stack. Each iteration
// does one unit of work:
//   - deliver one pending output of the lowest frame that has any,
//     to the caller (bottom frame) or into the parent's reducer;
//   - otherwise advance the top frame: collect one token, finish, or pop.
func (r *Run) Next() (any, bool) {
	for !r.done {
		if i := r.lowestPending(); i >= 0 {
			v, ok, err := r.stack[i].out.pull()
			if err != nil {
				r.fail(err)
				break
			}
			if !ok {
				continue
			}
			if i == 0 {
				return v, true
			}
			parent := r.stack[i-1]
			if err := parent.red.Accept(v, &parent.out); err != nil {
				r.fail(err)
				break
			}
			r.low = i - 1
			continue
		}

		n := len(r.stack) - 1
		top := r.stack[n]
		var err error
		switch top.phase {
		case collecting:
			err = r.collect(top)
		case finishing:
			top.phase = finished
			err = top.red.Finish(&top.out)
		case finished:
			r.pop()
		}
		if err != nil {
			r.fail(err)
		}
		r.low = min(r.low, n)
	}
	return nil, false
}

// lowestPending returns the index of the lowest frame holding
// undelivered output, or -1. A parent must finish handling a value
// before its child may produce the next one.
//
// Output only appears in the top frame or in the parent a value was just
// delivered to, so the scan starts at r.low, below which no frame holds
// output.
func (r *Run) lowestPending() int {
	for i := r.low; i < len(r.stack); i++ {
		if r.stack[i].out.pending() {
			r.low = i
			return i
		}
	}
	r.low = len(r.stack)
	return -1
}

// collect reads one program token on behalf of the top frame.
func (r *Run) collect(top *frame) error {
	v, ok := r.env.next()
	if !ok {
		top.stop(nil)
		return nil
	}
	t := Classify(v)
	switch t.Kind {
	case EndMarker:
		top.stop(nil)
	case CloserRef:
		top.terminate(t.Closer)
	case StepRef:
		if t.Step.priority == Forced {
			r.push(t.Step)
			return nil
		}
		top.stop(t.Step)
	default:
		return top.red.Accept(v, &top.out)
	}
	return nil
}

func (r *Run) push(s *Step) {
	if ce := r.log.Check(zapcore.DebugLevel, "step begin"); ce != nil {
		ce.Write(zap.Stringer("step", s), zap.Int("depth", len(r.stack)))
	}
	r.stack = append(r.stack, acquireFrame(s, r.env))
}

// pop removes the finished top frame and consumes its termination token:
// a nested frame hands it to its parent, the bottom frame continues with
// it in place.
func (r *Run) pop() {
	n := len(r.stack) - 1
	f := r.stack[n]
	r.stack[n] = nil
	r.stack = r.stack[:n]
	step, end := f.step, f.end
	releaseFrame(f)

	if ce := r.log.Check(zapcore.DebugLevel, "step end"); ce != nil {
		ce.Write(zap.Stringer("step", step), zap.Int("depth", n), zap.Any("by", end))
	}

	if n > 0 {
		if end != nil {
			r.stack[n-1].terminate(end)
		}
		return
	}

	if s, ok := end.(*Step); ok {
		r.push(s)
		return
	}
	r.done = true
}
