// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package programfile

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"

	"code.hybscloud.com/action"
)

var stdKinds = map[string]action.Kind{
	"pass":   action.Pass,
	"with":   action.With,
	"pipe":   action.Pipe,
	"args":   action.Args,
	"many":   action.Many,
	"one":    action.One,
	"get":    action.Get,
	"set":    action.Set,
	"call":   action.Call,
	"delete": action.Delete,
	"null":   action.Null,
}

// Registry names the functions and custom step kinds a document may
// refer to. A Registry must not be modified while documents are parsed
// against it.
type Registry struct {
	funcs map[string]action.Func
	kinds map[string]action.Kind
}

// NewRegistry returns an empty registry. The built-in step kinds are
// always available.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]action.Func),
		kinds: make(map[string]action.Kind),
	}
}

// Func registers fn under name, replacing any previous entry.
func (r *Registry) Func(name string, fn action.Func) *Registry {
	r.funcs[name] = fn
	return r
}

// Kind registers a custom step kind under name. Built-in kind names
// cannot be overridden.
func (r *Registry) Kind(name string, k action.Kind) *Registry {
	r.kinds[name] = k
	return r
}

func (r *Registry) lookupFunc(name string) (action.Func, error) {
	if fn, ok := r.funcs[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFunc, name)
}

func (r *Registry) lookupKind(name string) (action.Kind, error) {
	if k, ok := stdKinds[name]; ok {
		return k, nil
	}
	if k, ok := r.kinds[name]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Funcs returns the registered function names in order.
func (r *Registry) Funcs() []string { return slices.Sorted(maps.Keys(r.funcs)) }

// Builtins returns a registry with the standard library of document
// functions. Functions look at the values they are given from the last
// one backwards, which suits both calling conventions: With passes the
// scope and arguments first, Pipe passes the running list.
//
//	add, sub, mul  arithmetic over the numeric values
//	concat         joins the scalar values
//	len            length of the last value
//	upper          upper-cases the last string
//	keys           sorted keys of the last map
//	identity       the last value
//	range          sequence 0..n-1 for the last integer n
//	print          logs the values at info level
//
// Custom kinds: reverse yields the collected values back to front,
// count yields how many values were collected.
func Builtins(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := NewRegistry()
	r.Func("add", func(args ...any) (any, error) {
		return fold(numbers(args), 0, add), nil
	})
	r.Func("mul", func(args ...any) (any, error) {
		return fold(numbers(args), 1, func(a, b float64) float64 { return a * b }), nil
	})
	r.Func("sub", func(args ...any) (any, error) {
		nums := numbers(args)
		if len(nums) == 0 {
			return 0, nil
		}
		return fold(append(nums[:1:1], negate(nums[1:])...), 0, add), nil
	})
	r.Func("concat", func(args ...any) (any, error) {
		var b strings.Builder
		for _, a := range args {
			if scalar(a) {
				fmt.Fprint(&b, a)
			}
		}
		return b.String(), nil
	})
	r.Func("len", func(args ...any) (any, error) {
		v, ok := last(args)
		if !ok {
			return 0, nil
		}
		switch x := v.(type) {
		case string:
			return len([]rune(x)), nil
		case nil:
			return 0, nil
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Chan:
			return rv.Len(), nil
		}
		return nil, fmt.Errorf("len: %T has no length", v)
	})
	r.Func("upper", func(args ...any) (any, error) {
		for i := len(args) - 1; i >= 0; i-- {
			if s, ok := args[i].(string); ok {
				return strings.ToUpper(s), nil
			}
		}
		return "", nil
	})
	r.Func("keys", func(args ...any) (any, error) {
		for i := len(args) - 1; i >= 0; i-- {
			if m, ok := args[i].(map[string]any); ok {
				keys := slices.Sorted(maps.Keys(m))
				out := make([]any, len(keys))
				for j, k := range keys {
					out[j] = k
				}
				return out, nil
			}
		}
		return []any{}, nil
	})
	r.Func("identity", func(args ...any) (any, error) {
		v, _ := last(args)
		return v, nil
	})
	r.Func("range", func(args ...any) (any, error) {
		nums := numbers(args)
		if len(nums) == 0 {
			return nil, errors.New("range: no bound given")
		}
		n := int(nums[len(nums)-1].v)
		return iter.Seq[any](func(yield func(any) bool) {
			for i := range n {
				if !yield(i) {
					return
				}
			}
		}), nil
	})
	r.Func("print", func(args ...any) (any, error) {
		log.Info("print", zap.Any("values", args))
		return nil, nil
	})

	r.Kind("reverse", action.FuncOf(func(vals []any, _ *action.Env) (iter.Seq[any], error) {
		return func(yield func(any) bool) {
			for _, v := range slices.Backward(vals) {
				if !yield(v) {
					return
				}
			}
		}, nil
	}))
	r.Kind("count", action.FuncOf(func(vals []any, _ *action.Env) (iter.Seq[any], error) {
		n := len(vals)
		return func(yield func(any) bool) { yield(n) }, nil
	}))
	return r
}

func last(args []any) (any, bool) {
	if len(args) == 0 {
		return nil, false
	}
	return args[len(args)-1], true
}

func scalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return true
	}
	return false
}

// number is a numeric argument; integral tracks whether every input
// so far was an integer so results keep the document's number type.
type number struct {
	v        float64
	integral bool
}

func numbers(args []any) []number {
	var out []number
	for _, a := range args {
		switch x := a.(type) {
		case int:
			out = append(out, number{float64(x), true})
		case int64:
			out = append(out, number{float64(x), true})
		case float64:
			out = append(out, number{x, false})
		}
	}
	return out
}

func negate(ns []number) []number {
	out := make([]number, len(ns))
	for i, n := range ns {
		out[i] = number{-n.v, n.integral}
	}
	return out
}

func add(a, b float64) float64 { return a + b }

func fold(nums []number, zero float64, op func(a, b float64) float64) any {
	acc, integral := zero, true
	for _, n := range nums {
		acc = op(acc, n.v)
		integral = integral && n.integral
	}
	if integral {
		return int(acc)
	}
	return acc
}
