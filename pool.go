// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import "sync"

// Frames are single-use: one is acquired when a step starts collecting
// and released when it is popped or discarded by Run.Close. Nothing may
// keep a frame after release.
var framePool = sync.Pool{New: func() any { return new(frame) }}

func acquireFrame(s *Step, env *Env) *frame {
	f := framePool.Get().(*frame)
	f.step = s
	f.red = s.kind.Begin(env)
	f.phase = collecting
	return f
}

// releaseFrame stops whatever output is still pending, zeroes f and
// returns it to the pool.
func releaseFrame(f *frame) {
	f.out.close()
	*f = frame{}
	framePool.Put(f)
}
