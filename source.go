// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import "iter"

// source is a pending stream of step output.
// close must be idempotent and safe to call on an exhausted source.
type source interface {
	next() (any, bool, error)
	close()
}

type sliceSource struct {
	vs []any
	i  int
}

func (s *sliceSource) next() (any, bool, error) {
	if s.i >= len(s.vs) {
		return nil, false, nil
	}
	v := s.vs[s.i]
	s.vs[s.i] = nil
	s.i++
	return v, true, nil
}

func (s *sliceSource) close() { s.vs = nil }

// seqSource pulls a push-style sequence through iter.Pull.
// The pull coroutine is started lazily.
type seqSource struct {
	seq  iter.Seq[any]
	pull func() (any, bool)
	stop func()
}

func (s *seqSource) next() (any, bool, error) {
	if s.pull == nil {
		if s.seq == nil {
			return nil, false, nil
		}
		s.pull, s.stop = iter.Pull(s.seq)
		s.seq = nil
	}
	v, ok := s.pull()
	return v, ok, nil
}

func (s *seqSource) close() {
	s.seq = nil
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// runSource drains a nested run, such as an Early sub-program.
type runSource struct {
	run *Run
}

func (s *runSource) next() (any, bool, error) {
	v, ok := s.run.Next()
	if !ok {
		return nil, false, s.run.Err()
	}
	return v, true, nil
}

func (s *runSource) close() { s.run.Close() }
