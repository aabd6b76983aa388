// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package deep reads, writes, calls and deletes members of nested values
// through possibly compound keys.
//
// A key is either a single member (a string name or an int index) or a
// [Path] of members walked left to right. Supported containers are
// map[string]any, []any and *[]any, plus, through reflection, maps with
// string keys, slices, arrays and structs (exported fields by name or
// json tag). Only *[]any can grow.
//
// Errors from walking a key wrap [ErrNotFound] or [ErrUnsupported] and
// are prefixed with the part of the path that failed. Errors returned by
// a function invoked through [Call] are returned unchanged.
package deep

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound reports a member that does not exist.
	ErrNotFound = errors.New("deep: key not found")
	// ErrUnsupported reports a value that cannot hold, or be, the member
	// the operation needs.
	ErrUnsupported = errors.New("deep: unsupported value")
)

// Path is a compound key.
type Path []any

// Root is the empty path; resolving it yields the object itself.
var Root Path

// P builds a path from segments.
func P(segs ...any) Path { return Path(segs) }

// Key returns p extended with a named member.
func (p Path) Key(name string) Path { return append(p[:len(p):len(p)], name) }

// Index returns p extended with an index.
func (p Path) Index(i int) Path { return append(p[:len(p):len(p)], i) }

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(name(seg))
	}
	return b.String()
}

func segments(key any) Path {
	if p, ok := key.(Path); ok {
		return p
	}
	return Path{key}
}

func pathErr(p Path, err error) error {
	return fmt.Errorf("%s: %w", p, err)
}

// Get resolves key against obj.
func Get(obj, key any) (any, error) {
	return walk(obj, segments(key), false)
}

// Set assigns v to key in obj. Missing intermediate members of a
// map[string]any are created as map[string]any.
func Set(obj, key, v any) error {
	segs := segments(key)
	if len(segs) == 0 {
		return fmt.Errorf("%w: empty path", ErrUnsupported)
	}
	last := len(segs) - 1
	parent, err := walk(obj, segs[:last], true)
	if err != nil {
		return err
	}
	if err := setMember(parent, segs[last], v); err != nil {
		return pathErr(segs, err)
	}
	return nil
}

// SetMember assigns v to a single member of obj. A [Path] key is not
// walked: its string form names the member.
func SetMember(obj, key, v any) error {
	if p, ok := key.(Path); ok {
		if len(p) == 1 {
			key = p[0]
		} else {
			key = p.String()
		}
	}
	if err := setMember(obj, key, v); err != nil {
		return pathErr(Path{key}, err)
	}
	return nil
}

// Del removes key from obj and returns the removed value. Removing a
// member that does not exist is not an error; its parent must exist.
// Slice elements are cleared to nil rather than removed.
func Del(obj, key any) (any, error) {
	segs := segments(key)
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrUnsupported)
	}
	last := len(segs) - 1
	parent, err := walk(obj, segs[:last], false)
	if err != nil {
		return nil, err
	}
	v, err := delMember(parent, segs[last])
	if err != nil {
		return nil, pathErr(segs, err)
	}
	return v, nil
}

// Call invokes the member key of obj with args. The member may hold a
// function, or name a method of its parent (the first letter is
// upper-cased when looking up methods). An empty key calls obj itself.
func Call(obj, key any, args ...any) (any, error) {
	segs := segments(key)
	if len(segs) == 0 {
		return invoke(obj, args)
	}
	last := len(segs) - 1
	parent, err := walk(obj, segs[:last], false)
	if err != nil {
		return nil, err
	}
	fn, err := getMember(parent, segs[last])
	if err == nil {
		if !callable(fn) {
			return nil, pathErr(segs, fmt.Errorf("%w: %T is not callable", ErrUnsupported, fn))
		}
		return invoke(fn, args)
	}
	if m, ok := method(parent, name(segs[last])); ok {
		return callValue(m, args)
	}
	return nil, pathErr(segs, err)
}

func walk(obj any, segs Path, create bool) (any, error) {
	cur := obj
	for i, seg := range segs {
		v, err := getMember(cur, seg)
		if errors.Is(err, ErrNotFound) && create {
			if m, ok := cur.(map[string]any); ok {
				child := map[string]any{}
				m[name(seg)] = child
				v, err = child, nil
			}
		}
		if err != nil {
			return nil, pathErr(segs[:i+1], err)
		}
		cur = v
	}
	return cur, nil
}

func name(seg any) string {
	switch s := seg.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(seg)
}

func index(seg any) (int, bool) {
	switch s := seg.(type) {
	case int:
		return s, true
	case int8:
		return int(s), true
	case int16:
		return int(s), true
	case int32:
		return int(s), true
	case int64:
		return int(s), true
	case uint:
		return int(s), true
	case uint8:
		return int(s), true
	case uint16:
		return int(s), true
	case uint32:
		return int(s), true
	case uint64:
		return int(s), true
	case float64:
		if i := int(s); float64(i) == s {
			return i, true
		}
	case string:
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}
