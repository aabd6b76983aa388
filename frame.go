// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

// phase is the position of a frame in its life cycle.
type phase uint8

const (
	collecting phase = iota // pulling tokens from the program
	finishing               // collection ended; Finish not yet called
	finished                // Finish called; pop once output is drained
)

// frame is one run of a step. Frames replace the per-step transient
// state: the termination token lives here and is consumed exactly once,
// when the frame is popped.
type frame struct {
	step  *Step
	red   Reducer
	out   Output
	phase phase

	// end is the token that terminated collection: nil, a *Step to
	// continue with, or a Closer still unwinding towards its target.
	end any
}

// stop ends collection. end must be nil, *Step or Closer.
func (f *frame) stop(end any) {
	f.end = end
	f.phase = finishing
}

// terminate ends collection because of token end returned by a child
// frame or read from the program. A closer aimed at this frame ends it
// quietly; any other closer keeps unwinding.
func (f *frame) terminate(end any) {
	if c, ok := end.(Closer); ok && c.Target == f.step {
		f.stop(nil)
		return
	}
	f.stop(end)
}
