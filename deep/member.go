// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package deep

import (
	"fmt"
	"reflect"
)

func getMember(obj, seg any) (any, error) {
	switch o := obj.(type) {
	case nil:
		return nil, ErrNotFound
	case map[string]any:
		v, ok := o[name(seg)]
		if !ok {
			return nil, ErrNotFound
		}
		return v, nil
	case []any:
		return element(o, seg)
	case *[]any:
		if o == nil {
			return nil, ErrNotFound
		}
		return element(*o, seg)
	}
	return reflectGet(reflect.ValueOf(obj), seg)
}

func element(s []any, seg any) (any, error) {
	i, ok := index(seg)
	if !ok || i < 0 || i >= len(s) {
		return nil, ErrNotFound
	}
	return s[i], nil
}

func setMember(obj, seg, v any) error {
	switch o := obj.(type) {
	case nil:
		return fmt.Errorf("%w: nil", ErrUnsupported)
	case map[string]any:
		o[name(seg)] = v
		return nil
	case []any:
		i, ok := index(seg)
		if !ok || i < 0 || i >= len(o) {
			return ErrNotFound
		}
		o[i] = v
		return nil
	case *[]any:
		i, ok := index(seg)
		if !ok || i < 0 || o == nil {
			return ErrNotFound
		}
		for len(*o) <= i {
			*o = append(*o, nil)
		}
		(*o)[i] = v
		return nil
	}
	return reflectSet(reflect.ValueOf(obj), seg, v)
}

func delMember(obj, seg any) (any, error) {
	switch o := obj.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnsupported)
	case map[string]any:
		k := name(seg)
		v := o[k]
		delete(o, k)
		return v, nil
	case []any:
		return clearElement(o, seg), nil
	case *[]any:
		if o == nil {
			return nil, nil
		}
		return clearElement(*o, seg), nil
	}
	return reflectDel(reflect.ValueOf(obj), seg)
}

func clearElement(s []any, seg any) any {
	i, ok := index(seg)
	if !ok || i < 0 || i >= len(s) {
		return nil
	}
	v := s[i]
	s[i] = nil
	return v
}
