// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
)

// Built-in kinds. Pair each with a priority using [NewStep] or [Both].
var (
	// Pass yields every collected value unchanged.
	Pass Kind = passKind{}
	// With calls functions as fn(scope, args, acc...), where acc holds
	// the data and results collected so far. Sequences, given or returned,
	// are spread; the last non-nil result is yielded at the end.
	With Kind = withKind{}
	// Pipe threads a single argument list through a chain of functions.
	Pipe Kind = pipeKind{}
	// Args yields the invocation arguments, all of them or by index.
	Args Kind = argsKind{}
	// Many spreads iterables and keyed values.
	Many Kind = manyKind{}
	// One yields all collected values as a single []any. The slice is
	// built in full before it is yielded, so nested sequences are drained.
	One Kind = oneKind{}
	// Null runs its input for effect and yields nothing.
	Null Kind = nullKind{}
)

type passKind struct{}

func (passKind) Name() string       { return "pass" }
func (passKind) Begin(*Env) Reducer { return passReducer{} }

type passReducer struct{}

func (passReducer) Accept(v any, out *Output) error { out.Yield(v); return nil }
func (passReducer) Finish(*Output) error            { return nil }

type withKind struct{}

func (withKind) Name() string { return "with" }

func (withKind) Begin(env *Env) Reducer { return &withReducer{env: env} }

type withReducer struct {
	env  *Env
	acc  []any
	last any
	has  bool
}

func (r *withReducer) Accept(v any, out *Output) error {
	t := Classify(v)
	switch t.Kind {
	case FunctionRef:
		in := make([]any, 0, 2+len(r.acc))
		in = append(in, r.env.Scope, r.env.Args)
		in = append(in, r.acc...)
		res, err := t.Func(in...)
		if err != nil {
			return err
		}
		if seq, ok := asSeq(res); ok {
			out.Spread(seq)
			return nil
		}
		r.acc = append(r.acc, res)
		if res != nil {
			r.last, r.has = res, true
		}
	case FunctionLiteral:
		r.acc = append(r.acc, t.Value)
	default:
		if seq, ok := asSeq(v); ok {
			out.Spread(seq)
			return nil
		}
		r.acc = append(r.acc, v)
	}
	return nil
}

func (r *withReducer) Finish(out *Output) error {
	if r.has {
		out.Yield(r.last)
	}
	return nil
}

type pipeKind struct{}

func (pipeKind) Name() string { return "pipe" }

func (pipeKind) Begin(env *Env) Reducer { return &pipeReducer{list: []any{env.Scope}} }

type pipeReducer struct {
	list   []any
	result any
	ran    bool
}

func (r *pipeReducer) Accept(v any, _ *Output) error {
	t := Classify(v)
	switch t.Kind {
	case FunctionRef:
		res, err := t.Func(r.list...)
		if err != nil {
			return err
		}
		r.list = []any{res}
		r.result, r.ran = res, true
	case FunctionLiteral:
		r.list = append(r.list, t.Value)
	default:
		r.list = append(r.list, v)
	}
	return nil
}

func (r *pipeReducer) Finish(out *Output) error {
	if r.ran {
		out.Yield(r.result)
	}
	return nil
}

// Interpreter is a user-defined step policy. It receives every value the
// step collected and returns the sequence to yield; nil yields nothing.
type Interpreter func(values []any, env *Env) (iter.Seq[any], error)

// FuncOf makes a kind from an interpreter callback.
func FuncOf(fn Interpreter) Kind {
	if fn == nil {
		panic("action: nil interpreter")
	}
	return funcKind{fn: fn}
}

type funcKind struct {
	fn Interpreter
}

func (funcKind) Name() string { return "func" }

func (k funcKind) Begin(env *Env) Reducer { return &funcReducer{fn: k.fn, env: env} }

type funcReducer struct {
	fn   Interpreter
	env  *Env
	vals []any
}

func (r *funcReducer) Accept(v any, _ *Output) error {
	r.vals = append(r.vals, v)
	return nil
}

func (r *funcReducer) Finish(out *Output) error {
	seq, err := r.fn(r.vals, r.env)
	if err != nil {
		return err
	}
	out.Spread(seq)
	return nil
}

type argsKind struct{}

func (argsKind) Name() string { return "args" }

func (argsKind) Begin(env *Env) Reducer { return &argsReducer{env: env} }

type argsReducer struct {
	env     *Env
	indexed bool
}

func (r *argsReducer) Accept(v any, out *Output) error {
	r.indexed = true
	i, ok := toIndex(v)
	if !ok || i < 0 || i >= len(r.env.Args) {
		out.Yield(nil)
		return nil
	}
	out.Yield(r.env.Args[i])
	return nil
}

func (r *argsReducer) Finish(out *Output) error {
	if !r.indexed {
		out.YieldAll(r.env.Args...)
	}
	return nil
}

type manyKind struct{}

func (manyKind) Name() string       { return "many" }
func (manyKind) Begin(*Env) Reducer { return manyReducer{} }

type manyReducer struct{}

func (manyReducer) Accept(v any, out *Output) error {
	spread(v, out)
	return nil
}

func (manyReducer) Finish(*Output) error { return nil }

// spread emits the elements of an iterable, or the [key, value] pairs of
// a keyed value in key order. Other values emit nothing.
func spread(v any, out *Output) {
	if seq, ok := asSeq(v); ok {
		out.Spread(seq)
		return
	}
	switch x := v.(type) {
	case nil:
		return
	case []any:
		out.YieldAll(x...)
		return
	case string:
		for _, r := range x {
			out.Yield(string(r))
		}
		return
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(x)) {
			out.Yield([]any{k, x[k]})
		}
		return
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			out.Yield(rv.Index(i).Interface())
		}
	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		for _, k := range keys {
			out.Yield([]any{k.Interface(), rv.MapIndex(k).Interface()})
		}
	case reflect.Struct:
		t := rv.Type()
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() {
				out.Yield([]any{f.Name, rv.Field(i).Interface()})
			}
		}
	}
}

type oneKind struct{}

func (oneKind) Name() string       { return "one" }
func (oneKind) Begin(*Env) Reducer { return &oneReducer{vals: []any{}} }

type oneReducer struct {
	vals []any
}

func (r *oneReducer) Accept(v any, _ *Output) error {
	r.vals = append(r.vals, v)
	return nil
}

func (r *oneReducer) Finish(out *Output) error {
	out.Yield(r.vals)
	return nil
}

type nullKind struct{}

func (nullKind) Name() string       { return "null" }
func (nullKind) Begin(*Env) Reducer { return nullReducer{} }

type nullReducer struct{}

func (nullReducer) Accept(any, *Output) error { return nil }
func (nullReducer) Finish(*Output) error      { return nil }

// asSeq reports whether v is a lazily iterated sequence.
func asSeq(v any) (iter.Seq[any], bool) {
	switch s := v.(type) {
	case iter.Seq[any]:
		return s, s != nil
	case func(func(any) bool):
		return s, s != nil
	}
	return nil, false
}

func toIndex(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint:
		return int(x), true
	case uint32:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		if i := int(x); float64(i) == x {
			return i, true
		}
	}
	return 0, false
}

