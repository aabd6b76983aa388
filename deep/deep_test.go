// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package deep_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"code.hybscloud.com/action/deep"
)

type point struct {
	X    int `json:"x"`
	Y    int
	Tags map[string]string
}

func (p point) Sum() int { return p.X + p.Y }

func (p *point) Move(dx, dy int) { p.X += dx; p.Y += dy }

func (p *point) Scale(k float64) (int, error) {
	if k < 0 {
		return 0, errNegative
	}
	p.X = int(float64(p.X) * k)
	return p.X, nil
}

var errNegative = errors.New("negative")

func sample() map[string]any {
	return map[string]any{
		"a": []any{
			map[string]any{"b": "deep"},
			&point{X: 1, Y: 2, Tags: map[string]string{"k": "v"}},
		},
		"n": 7,
	}
}

func TestGet(t *testing.T) {
	obj := sample()
	tests := []struct {
		key  any
		want any
	}{
		{"n", 7},
		{deep.P("a", 0, "b"), "deep"},
		{deep.P("a", "0", "b"), "deep"},
		{deep.P("a", 1, "x"), 1},
		{deep.P("a", 1, "Y"), 2},
		{deep.P("a", 1, "tags", "k"), "v"},
		{deep.Root.Key("a").Index(0).Key("b"), "deep"},
	}
	for _, tt := range tests {
		got, err := deep.Get(obj, tt.key)
		if err != nil {
			t.Errorf("Get(%v): %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Get(%v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestGetRoot(t *testing.T) {
	obj := sample()
	got, err := deep.Get(obj, deep.Root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(obj, got, cmp.AllowUnexported(point{})); diff != "" {
		t.Errorf("Get(Root) mismatch (-want +got):\n%s", diff)
	}
}

func TestGetNotFound(t *testing.T) {
	obj := sample()
	for _, key := range []any{"zz", deep.P("a", 5), deep.P("a", 0, "zz"), deep.P("n", "x"), deep.P("a", 1, "z")} {
		_, err := deep.Get(obj, key)
		if !errors.Is(err, deep.ErrNotFound) && !errors.Is(err, deep.ErrUnsupported) {
			t.Errorf("Get(%v) error = %v, want not found or unsupported", key, err)
		}
	}
}

func TestErrorNamesFailingPrefix(t *testing.T) {
	_, err := deep.Get(sample(), deep.P("a", 0, "zz", "more"))
	if want := "a.0.zz: deep: key not found"; err == nil || err.Error() != want {
		t.Errorf("error = %v, want %q", err, want)
	}
}

func TestSetCreatesIntermediateMaps(t *testing.T) {
	obj := map[string]any{}
	if err := deep.Set(obj, deep.P("a", "b", "c"), 1); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}
	if diff := cmp.Diff(want, obj); diff != "" {
		t.Errorf("Set mismatch (-want +got):\n%s", diff)
	}
}

func TestSetArrays(t *testing.T) {
	s := new([]any)
	if err := deep.Set(s, 2, "x"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{nil, nil, "x"}, *s); diff != "" {
		t.Errorf("*[]any mismatch (-want +got):\n%s", diff)
	}

	fixed := []any{1}
	if err := deep.Set(fixed, 0, 2); err != nil || fixed[0] != 2 {
		t.Errorf("Set([]any) = %v, %v; want 2, nil", fixed, err)
	}
	if err := deep.Set(fixed, 1, 3); !errors.Is(err, deep.ErrNotFound) {
		t.Errorf("Set past end error = %v, want %v", err, deep.ErrNotFound)
	}
}

func TestSetStructFields(t *testing.T) {
	p := &point{}
	if err := deep.Set(p, "x", 3.0); err != nil {
		t.Fatal(err)
	}
	if err := deep.Set(p, "y", 4); err != nil {
		t.Fatal(err)
	}
	if p.X != 3 || p.Y != 4 {
		t.Errorf("point = %+v, want X=3 Y=4", *p)
	}
	if err := deep.Set(p, "x", "str"); !errors.Is(err, deep.ErrUnsupported) {
		t.Errorf("Set(string into int) error = %v, want %v", err, deep.ErrUnsupported)
	}
	if err := deep.Set(point{}, "x", 1); !errors.Is(err, deep.ErrUnsupported) {
		t.Errorf("Set(struct value) error = %v, want %v", err, deep.ErrUnsupported)
	}
}

func TestSetTypedMap(t *testing.T) {
	m := map[string]int{}
	if err := deep.Set(m, "k", 5); err != nil || m["k"] != 5 {
		t.Errorf("Set(map[string]int) = %v, %v; want k=5", m, err)
	}
	if err := deep.Set(map[int]any{}, "k", 5); !errors.Is(err, deep.ErrUnsupported) {
		t.Errorf("Set(map[int]any) error = %v, want %v", err, deep.ErrUnsupported)
	}
}

func TestSetMember(t *testing.T) {
	obj := map[string]any{}
	if err := deep.SetMember(obj, deep.P("a", "b"), 1); err != nil {
		t.Fatal(err)
	}
	if err := deep.SetMember(obj, deep.P("c"), 2); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"a.b": 1, "c": 2}, obj); diff != "" {
		t.Errorf("SetMember mismatch (-want +got):\n%s", diff)
	}
}

func TestDel(t *testing.T) {
	obj := sample()
	v, err := deep.Del(obj, deep.P("a", 0, "b"))
	if err != nil || v != "deep" {
		t.Fatalf("Del = %v, %v; want deep, nil", v, err)
	}
	if _, err := deep.Get(obj, deep.P("a", 0, "b")); !errors.Is(err, deep.ErrNotFound) {
		t.Errorf("Get after Del error = %v, want %v", err, deep.ErrNotFound)
	}

	v, err = deep.Del(obj, deep.P("a", 1, "x"))
	if err != nil || v != 1 {
		t.Fatalf("Del(field) = %v, %v; want 1, nil", v, err)
	}
	if p := obj["a"].([]any)[1].(*point); p.X != 0 {
		t.Errorf("field after Del = %d, want 0", p.X)
	}

	v, err = deep.Del(obj, deep.P("a", 1))
	if err != nil || v == nil {
		t.Fatalf("Del(element) = %v, %v; want the point, nil", v, err)
	}
	if obj["a"].([]any)[1] != nil {
		t.Error("element not cleared")
	}

	if v, err := deep.Del(obj, "missing"); v != nil || err != nil {
		t.Errorf("Del(missing) = %v, %v; want nil, nil", v, err)
	}
	if _, err := deep.Del(obj, deep.P("missing", "x")); !errors.Is(err, deep.ErrNotFound) {
		t.Errorf("Del(missing parent) error = %v, want %v", err, deep.ErrNotFound)
	}
}

func TestCallFunctionMember(t *testing.T) {
	obj := map[string]any{
		"join": func(a ...any) any { return fmt.Sprint(a...) },
		"typed": func(a, b int) int {
			return a*10 + b
		},
		"fail": func(...any) (any, error) { return nil, errNegative },
		"n":    1,
	}
	if v, err := deep.Call(obj, "join", "a", "b"); err != nil || v != "ab" {
		t.Errorf("Call(join) = %v, %v; want ab, nil", v, err)
	}
	if v, err := deep.Call(obj, "typed", 1); err != nil || v != 10 {
		t.Errorf("Call(typed, 1) = %v, %v; want 10, nil", v, err)
	}
	if v, err := deep.Call(obj, "typed", 1, 2, 3); err != nil || v != 12 {
		t.Errorf("Call(typed, 1, 2, 3) = %v, %v; want 12, nil", v, err)
	}
	if _, err := deep.Call(obj, "fail"); err != errNegative {
		t.Errorf("Call(fail) error = %v, want %v", err, errNegative)
	}
	if _, err := deep.Call(obj, "n"); !errors.Is(err, deep.ErrUnsupported) {
		t.Errorf("Call(n) error = %v, want %v", err, deep.ErrUnsupported)
	}
}

func TestCallMethods(t *testing.T) {
	p := &point{X: 1, Y: 2}
	if v, err := deep.Call(p, "sum"); err != nil || v != 3 {
		t.Errorf("Call(sum) = %v, %v; want 3, nil", v, err)
	}
	if v, err := deep.Call(p, "move", 2, 3); err != nil || v != nil {
		t.Errorf("Call(move) = %v, %v; want nil, nil", v, err)
	}
	if p.X != 3 || p.Y != 5 {
		t.Errorf("point = %+v, want X=3 Y=5", *p)
	}
	if v, err := deep.Call(p, "Scale", 2); err != nil || v != 6 {
		t.Errorf("Call(Scale, 2) = %v, %v; want 6, nil", v, err)
	}
	if _, err := deep.Call(p, "Scale", -1.0); err != errNegative {
		t.Errorf("Call(Scale, -1) error = %v, want %v", err, errNegative)
	}
	if _, err := deep.Call(p, "nothing"); !errors.Is(err, deep.ErrNotFound) {
		t.Errorf("Call(nothing) error = %v, want %v", err, deep.ErrNotFound)
	}

	obj := map[string]any{"p": p}
	if v, err := deep.Call(obj, deep.P("p", "sum")); err != nil || v != 11 {
		t.Errorf("Call(p.sum) = %v, %v; want 11, nil", v, err)
	}
}

func TestCallRoot(t *testing.T) {
	fn := func(a ...any) any { return len(a) }
	if v, err := deep.Call(fn, deep.Root, 1, 2); err != nil || v != 2 {
		t.Errorf("Call(fn, Root) = %v, %v; want 2, nil", v, err)
	}
	if _, err := deep.Call(1, deep.Root); !errors.Is(err, deep.ErrUnsupported) {
		t.Errorf("Call(1, Root) error = %v, want %v", err, deep.ErrUnsupported)
	}
}

func TestPathString(t *testing.T) {
	if got := deep.P("a", 0, "b").String(); got != "a.0.b" {
		t.Errorf("String() = %q, want a.0.b", got)
	}
	base := deep.P("a")
	x, y := base.Key("x"), base.Key("y")
	if x[1] != "x" || y[1] != "y" {
		t.Errorf("Key shares storage: %v, %v", x, y)
	}
}
