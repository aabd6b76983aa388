// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import "code.hybscloud.com/action/deep"

// Member kinds resolve their first collected value as a [deep] key.
var (
	// Get reads key from the scope, or from each further value.
	Get Kind = getKind{}
	// Set assigns a value; see the Set reducer for the argument shapes.
	Set Kind = setKind{}
	// Call invokes a method: key, argument list, then receivers.
	Call Kind = callKind{}
	// Delete removes key from the scope, or from each further value.
	Delete Kind = deleteKind{}
)

// collector gathers values until Finish; member kinds need the final
// count before they can act.
type collector struct {
	env  *Env
	vals []any
}

func (c *collector) Accept(v any, _ *Output) error {
	c.vals = append(c.vals, v)
	return nil
}

type getKind struct{}

func (getKind) Name() string { return "get" }

func (getKind) Begin(env *Env) Reducer { return &getReducer{collector{env: env}} }

type getReducer struct{ collector }

func (r *getReducer) Finish(out *Output) error {
	if len(r.vals) == 0 {
		return r.env.insufficient("get", 1, 0)
	}
	key := r.vals[0]
	if len(r.vals) == 1 {
		return r.get(out, r.env.Scope, key)
	}
	for _, obj := range r.vals[1:] {
		if err := r.get(out, obj, key); err != nil {
			return err
		}
	}
	return nil
}

func (r *getReducer) get(out *Output, obj, key any) error {
	v, err := deep.Get(obj, key)
	v, err = r.env.resolved("get", v, err)
	if err != nil {
		return err
	}
	out.Yield(v)
	return nil
}

type setKind struct{}

func (setKind) Name() string { return "set" }

func (setKind) Begin(env *Env) Reducer { return &setReducer{collector{env: env}} }

type setReducer struct{ collector }

// Finish dispatches on the number of collected values:
//
//	[key, value]            member assignment on the scope; key is not walked
//	[key, value, x]         deep assignment on the scope; x is ignored
//	[key, value, t1, t2...] deep assignment on every target
//
// Every assignment yields the assigned value.
func (r *setReducer) Finish(out *Output) error {
	n := len(r.vals)
	if n < 2 {
		return r.env.insufficient("set", 2, n)
	}
	key, value := r.vals[0], r.vals[1]
	switch n {
	case 2:
		return r.set(out, value, deep.SetMember(r.env.Scope, key, value))
	case 3:
		return r.set(out, value, deep.Set(r.env.Scope, key, value))
	}
	for _, target := range r.vals[2:] {
		if err := r.set(out, value, deep.Set(target, key, value)); err != nil {
			return err
		}
	}
	return nil
}

// set yields the assigned value, or nil when a permissive run could not
// resolve the key.
func (r *setReducer) set(out *Output, value any, err error) error {
	if err != nil {
		if _, err := r.env.resolved("set", nil, err); err != nil {
			return err
		}
		value = nil
	}
	out.Yield(value)
	return nil
}

type callKind struct{}

func (callKind) Name() string { return "call" }

func (callKind) Begin(env *Env) Reducer { return &callReducer{collector{env: env}} }

type callReducer struct{ collector }

func (r *callReducer) Finish(out *Output) error {
	n := len(r.vals)
	if n == 0 {
		return r.env.insufficient("call", 1, 0)
	}
	key := r.vals[0]
	var args []any
	if n > 1 {
		args = argList(r.vals[1])
	}
	if n < 3 {
		return r.call(out, r.env.Scope, key, args)
	}
	for _, obj := range r.vals[2:] {
		if err := r.call(out, obj, key, args); err != nil {
			return err
		}
	}
	return nil
}

func (r *callReducer) call(out *Output, obj, key any, args []any) error {
	v, err := deep.Call(obj, key, args...)
	v, err = r.env.resolved("call", v, err)
	if err != nil {
		return err
	}
	out.Yield(v)
	return nil
}

// argList interprets the argument-list value of a call.
func argList(v any) []any {
	switch a := v.(type) {
	case nil:
		return nil
	case []any:
		return a
	}
	return []any{v}
}

type deleteKind struct{}

func (deleteKind) Name() string { return "delete" }

func (deleteKind) Begin(env *Env) Reducer { return &deleteReducer{collector{env: env}} }

type deleteReducer struct{ collector }

func (r *deleteReducer) Finish(out *Output) error {
	if len(r.vals) == 0 {
		return r.env.insufficient("delete", 1, 0)
	}
	key := r.vals[0]
	if len(r.vals) == 1 {
		return r.del(out, r.env.Scope, key)
	}
	for _, obj := range r.vals[1:] {
		if err := r.del(out, obj, key); err != nil {
			return err
		}
	}
	return nil
}

func (r *deleteReducer) del(out *Output, obj, key any) error {
	v, err := deep.Del(obj, key)
	v, err = r.env.resolved("delete", v, err)
	if err != nil {
		return err
	}
	out.Yield(v)
	return nil
}
