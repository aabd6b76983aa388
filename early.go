// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"cmp"
	"maps"
	"slices"
)

// Early returns a kind that names a reusable chain: on each run the
// collected values are appended to prefix and the result is evaluated
// as a sub-program sharing the caller's scope and arguments. Everything
// the sub-program yields is yielded in turn, lazily.
//
// prefix should start with a step; see [Action].
func Early(prefix ...any) Kind {
	return earlyKind{prefix: slices.Clone(prefix)}
}

type earlyKind struct {
	prefix []any
}

func (earlyKind) Name() string { return "early" }

func (k earlyKind) Begin(env *Env) Reducer {
	return &earlyReducer{prefix: k.prefix, env: env}
}

type earlyReducer struct {
	prefix []any
	env    *Env
	vals   []any
}

func (r *earlyReducer) Accept(v any, _ *Output) error {
	r.vals = append(r.vals, v)
	return nil
}

func (r *earlyReducer) Finish(out *Output) error {
	program := make([]any, 0, len(r.prefix)+len(r.vals))
	program = append(program, r.prefix...)
	program = append(program, r.vals...)
	sub := newRun(r.env.derive(program))
	if err := sub.Err(); err != nil {
		sub.Close()
		return err
	}
	out.srcs = append(out.srcs, &runSource{run: sub})
	return nil
}

// Append places a template value after the base sequence.
const Append = -1

// Template splices named values into a copy of a base sequence and
// wraps the result in an [Early] step.
type Template struct {
	base     []any
	places   map[string]int
	priority Priority
}

// NewTemplate creates a template. places maps each value name to the
// index of base it is inserted before, or to [Append].
func NewTemplate(p Priority, base []any, places map[string]int) *Template {
	return &Template{
		base:     slices.Clone(base),
		places:   maps.Clone(places),
		priority: p,
	}
}

type placement struct {
	name  string
	index int
}

// Build returns a fresh Early step over the base sequence with values
// spliced in. Names without a placement are ignored; placed names
// missing from values are left out. Values sharing an index keep name
// order; appended values follow in name order.
func (t *Template) Build(values map[string]any) *Step {
	var inserts, appends []placement
	for name := range values {
		i, ok := t.places[name]
		switch {
		case !ok:
		case i == Append:
			appends = append(appends, placement{name, i})
		default:
			inserts = append(inserts, placement{name, min(max(i, 0), len(t.base))})
		}
	}

	// Insert from the highest index down so earlier indexes stay valid.
	slices.SortFunc(inserts, func(a, b placement) int {
		if c := cmp.Compare(b.index, a.index); c != 0 {
			return c
		}
		return cmp.Compare(b.name, a.name)
	})
	slices.SortFunc(appends, func(a, b placement) int { return cmp.Compare(a.name, b.name) })

	seq := slices.Clone(t.base)
	for _, p := range inserts {
		seq = slices.Insert(seq, p.index, values[p.name])
	}
	for _, p := range appends {
		seq = append(seq, values[p.name])
	}
	return NewStep(earlyKind{prefix: seq}, t.priority)
}
