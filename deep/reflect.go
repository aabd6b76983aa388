// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package deep

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeFor[error]()

// indirect follows pointers and interfaces. ok is false on nil.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func reflectGet(v reflect.Value, seg any) (any, error) {
	v, ok := indirect(v)
	if !ok {
		return nil, ErrNotFound
	}
	switch v.Kind() {
	case reflect.Map:
		k, ok := mapKey(v, seg)
		if !ok {
			return nil, ErrNotFound
		}
		e := v.MapIndex(k)
		if !e.IsValid() {
			return nil, ErrNotFound
		}
		return e.Interface(), nil
	case reflect.Slice, reflect.Array:
		i, ok := index(seg)
		if !ok || i < 0 || i >= v.Len() {
			return nil, ErrNotFound
		}
		return v.Index(i).Interface(), nil
	case reflect.Struct:
		f, ok := field(v, name(seg))
		if !ok {
			return nil, ErrNotFound
		}
		return f.Interface(), nil
	}
	return nil, fmt.Errorf("%w: %s has no members", ErrUnsupported, v.Type())
}

func reflectSet(v reflect.Value, seg, x any) error {
	v, ok := indirect(v)
	if !ok {
		return fmt.Errorf("%w: nil", ErrUnsupported)
	}
	switch v.Kind() {
	case reflect.Map:
		k, ok := mapKey(v, seg)
		if !ok {
			return fmt.Errorf("%w: key %v for %s", ErrUnsupported, seg, v.Type())
		}
		e, err := assignable(x, v.Type().Elem())
		if err != nil {
			return err
		}
		if v.IsNil() {
			return fmt.Errorf("%w: nil map", ErrUnsupported)
		}
		v.SetMapIndex(k, e)
		return nil
	case reflect.Slice, reflect.Array:
		i, ok := index(seg)
		if !ok || i < 0 || i >= v.Len() {
			return ErrNotFound
		}
		dst := v.Index(i)
		if !dst.CanSet() {
			return fmt.Errorf("%w: %s is not addressable", ErrUnsupported, v.Type())
		}
		e, err := assignable(x, dst.Type())
		if err != nil {
			return err
		}
		dst.Set(e)
		return nil
	case reflect.Struct:
		f, ok := field(v, name(seg))
		if !ok {
			return ErrNotFound
		}
		if !f.CanSet() {
			return fmt.Errorf("%w: %s is not addressable", ErrUnsupported, v.Type())
		}
		e, err := assignable(x, f.Type())
		if err != nil {
			return err
		}
		f.Set(e)
		return nil
	}
	return fmt.Errorf("%w: %s has no members", ErrUnsupported, v.Type())
}

func reflectDel(v reflect.Value, seg any) (any, error) {
	v, ok := indirect(v)
	if !ok {
		return nil, fmt.Errorf("%w: nil", ErrUnsupported)
	}
	switch v.Kind() {
	case reflect.Map:
		k, ok := mapKey(v, seg)
		if !ok {
			return nil, nil
		}
		e := v.MapIndex(k)
		if !e.IsValid() {
			return nil, nil
		}
		old := e.Interface()
		v.SetMapIndex(k, reflect.Value{})
		return old, nil
	case reflect.Slice, reflect.Array, reflect.Struct:
		old, err := reflectGet(v, seg)
		if err != nil {
			return nil, nil
		}
		var dst reflect.Value
		if v.Kind() == reflect.Struct {
			dst, _ = field(v, name(seg))
		} else {
			i, _ := index(seg)
			dst = v.Index(i)
		}
		if !dst.CanSet() {
			return nil, fmt.Errorf("%w: %s is not addressable", ErrUnsupported, v.Type())
		}
		dst.SetZero()
		return old, nil
	}
	return nil, fmt.Errorf("%w: %s has no members", ErrUnsupported, v.Type())
}

func mapKey(m reflect.Value, seg any) (reflect.Value, bool) {
	kt := m.Type().Key()
	if kt.Kind() != reflect.String {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(name(seg)).Convert(kt), true
}

// field finds an exported struct field by name, by name with the first
// letter upper-cased, or by json tag.
func field(v reflect.Value, n string) (reflect.Value, bool) {
	t := v.Type()
	if sf, ok := t.FieldByName(n); ok && sf.IsExported() {
		return v.FieldByIndex(sf.Index), true
	}
	if sf, ok := t.FieldByName(upperFirst(n)); ok && sf.IsExported() {
		return v.FieldByIndex(sf.Index), true
	}
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if tag == n {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// assignable converts x to t. Nil becomes the zero value; numeric values
// convert between numeric kinds.
func assignable(x any, t reflect.Type) (reflect.Value, error) {
	if x == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(x)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if numeric(v.Kind()) && numeric(t.Kind()) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %T as %s", ErrUnsupported, x, t)
}

func numeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

func method(obj any, n string) (reflect.Value, bool) {
	if obj == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(obj)
	if m := v.MethodByName(n); m.IsValid() {
		return m, true
	}
	if m := v.MethodByName(upperFirst(n)); m.IsValid() {
		return m, true
	}
	return reflect.Value{}, false
}

func callable(fn any) bool {
	if fn == nil {
		return false
	}
	v := reflect.ValueOf(fn)
	return v.Kind() == reflect.Func && !v.IsNil()
}

func invoke(fn any, args []any) (any, error) {
	switch f := fn.(type) {
	case func(...any) (any, error):
		return f(args...)
	case func(...any) any:
		return f(args...), nil
	}
	if !callable(fn) {
		return nil, fmt.Errorf("%w: %T is not callable", ErrUnsupported, fn)
	}
	return callValue(reflect.ValueOf(fn), args)
}

// callValue calls fn the way a dynamic language would: missing
// parameters get zero values and surplus arguments of a non-variadic
// function are dropped. A trailing error result is returned as the error.
func callValue(fn reflect.Value, args []any) (any, error) {
	t := fn.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}
	in := make([]reflect.Value, 0, max(fixed, len(args)))
	for i := range fixed {
		var a any
		if i < len(args) {
			a = args[i]
		}
		v, err := assignable(a, t.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}
	if t.IsVariadic() && len(args) > fixed {
		et := t.In(fixed).Elem()
		for i, a := range args[fixed:] {
			v, err := assignable(a, et)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", fixed+i, err)
			}
			in = append(in, v)
		}
	}

	out := fn.Call(in)
	n := len(out)
	if n == 0 {
		return nil, nil
	}
	var err error
	if t.Out(n-1) == errorType {
		if e := out[n-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		n--
	}
	if n == 0 {
		return nil, err
	}
	return out[0].Interface(), err
}
