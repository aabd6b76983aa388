// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"code.hybscloud.com/action"
	"code.hybscloud.com/action/deep"
)

func runWith(t *testing.T, a *action.Action, scope any, args ...any) []any {
	t.Helper()
	return gen(t, a.GenWith(scope, args...))
}

func TestGetFromScope(t *testing.T) {
	g, _ := action.Both(action.Get)
	scope := map[string]any{"a": []any{map[string]any{"b": "deep"}}}
	got := runWith(t, action.New([]any{g, deep.P("a", 0, "b")}), scope)
	if diff := cmp.Diff([]any{"deep"}, got); diff != "" {
		t.Errorf("get mismatch (-want +got):\n%s", diff)
	}
}

func TestGetFromValues(t *testing.T) {
	g, _ := action.Both(action.Get)
	scope := map[string]any{"name": "scope"}
	a := action.New([]any{g, "name", map[string]any{"name": "x"}, map[string]any{"name": "y"}, map[string]any{}})
	got := runWith(t, a, scope)
	if diff := cmp.Diff([]any{"x", "y", nil}, got); diff != "" {
		t.Errorf("get mismatch (-want +got):\n%s", diff)
	}
}

type user struct {
	Name  string `json:"name"`
	Score int
	hits  int
}

func (u *user) Add(d int) int {
	u.Score += d
	u.hits++
	return u.Score
}

var errRejected = errors.New("rejected")

func (u *user) Reject() error { return errRejected }

func TestGetStructFields(t *testing.T) {
	g, _ := action.Both(action.Get)
	u := &user{Name: "ada", Score: 3}
	got := runWith(t, action.New([]any{g, "name", u, g, "score", u}), nil)
	if diff := cmp.Diff([]any{"ada", 3}, got); diff != "" {
		t.Errorf("get mismatch (-want +got):\n%s", diff)
	}
}

// Two values assign a member of the scope without walking the key.
func TestSetTwoValues(t *testing.T) {
	s, _ := action.Both(action.Set)
	scope := map[string]any{}
	got := runWith(t, action.New([]any{s, deep.P("a", "b"), 1}), scope)
	if diff := cmp.Diff([]any{1}, got); diff != "" {
		t.Errorf("set mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"a.b": 1}, scope); diff != "" {
		t.Errorf("scope mismatch (-want +got):\n%s", diff)
	}
}

// A compound key names one flat member, so the value is found again by
// its dotted name and not by walking the path.
func TestSetTwoValuesRoundTrip(t *testing.T) {
	s, _ := action.Both(action.Set)
	g, _ := action.Both(action.Get)
	scope := map[string]any{}
	runWith(t, action.New([]any{s, deep.P("a", "b"), 1}), scope)

	got := runWith(t, action.New([]any{g, "a.b"}), scope)
	if diff := cmp.Diff([]any{1}, got); diff != "" {
		t.Errorf("get by name mismatch (-want +got):\n%s", diff)
	}
	got = runWith(t, action.New([]any{g, deep.P("a", "b")}), scope)
	if diff := cmp.Diff([]any{nil}, got); diff != "" {
		t.Errorf("get by path mismatch (-want +got):\n%s", diff)
	}
}

// Three values deep-set the key on the scope; the third is ignored.
func TestSetThreeValues(t *testing.T) {
	s, _ := action.Both(action.Set)
	scope := map[string]any{}
	ignored := map[string]any{}
	got := runWith(t, action.New([]any{s, deep.P("a", "b"), 1, ignored}), scope)
	if diff := cmp.Diff([]any{1}, got); diff != "" {
		t.Errorf("set mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"a": map[string]any{"b": 1}}
	if diff := cmp.Diff(want, scope); diff != "" {
		t.Errorf("scope mismatch (-want +got):\n%s", diff)
	}
	if len(ignored) != 0 {
		t.Errorf("third value modified: %v", ignored)
	}
}

// Four or more values deep-set the key on every target.
func TestSetTargets(t *testing.T) {
	s, _ := action.Both(action.Set)
	scope := map[string]any{}
	t1, t2 := map[string]any{}, map[string]any{}
	got := runWith(t, action.New([]any{s, "k", 7, t1, t2}), scope)
	if diff := cmp.Diff([]any{7, 7}, got); diff != "" {
		t.Errorf("set mismatch (-want +got):\n%s", diff)
	}
	if t1["k"] != 7 || t2["k"] != 7 {
		t.Errorf("targets = %v, %v; want k=7 on both", t1, t2)
	}
	if len(scope) != 0 {
		t.Errorf("scope modified: %v", scope)
	}
}

func TestSetUnresolvedYieldsNil(t *testing.T) {
	s, _ := action.Both(action.Set)
	got := runWith(t, action.New([]any{s, 0, "x", []any{}, []any{1}}), nil)
	if diff := cmp.Diff([]any{nil, "x"}, got); diff != "" {
		t.Errorf("set mismatch (-want +got):\n%s", diff)
	}
}

func TestSetTooFewValues(t *testing.T) {
	s, _ := action.Both(action.Set)
	wantOutputs(t, action.New([]any{s, "k"}), []any{})
}

func TestCallMethodOnScope(t *testing.T) {
	c, _ := action.Both(action.Call)
	u := &user{}
	got := runWith(t, action.New([]any{c, "add", []any{2}, c, "Add", 3}), u)
	if diff := cmp.Diff([]any{2, 5}, got); diff != "" {
		t.Errorf("call mismatch (-want +got):\n%s", diff)
	}
}

func TestCallOnReceivers(t *testing.T) {
	c, _ := action.Both(action.Call)
	u1, u2 := &user{Score: 10}, &user{Score: 20}
	got := runWith(t, action.New([]any{c, "Add", []any{1}, u1, u2}), nil)
	if diff := cmp.Diff([]any{11, 21}, got); diff != "" {
		t.Errorf("call mismatch (-want +got):\n%s", diff)
	}
	if u1.hits != 1 || u2.hits != 1 {
		t.Errorf("hits = %d, %d; want 1, 1", u1.hits, u2.hits)
	}
}

func TestCallFunctionMember(t *testing.T) {
	c, _ := action.Both(action.Call)
	scope := map[string]any{"f": func(a ...any) any { return len(a) }}
	got := runWith(t, action.New([]any{c, "f", []any{1, 2}, c, "f"}), scope)
	if diff := cmp.Diff([]any{2, 0}, got); diff != "" {
		t.Errorf("call mismatch (-want +got):\n%s", diff)
	}
}

func TestCallMethodError(t *testing.T) {
	c, _ := action.Both(action.Call)
	_, err := action.New([]any{c, "reject"}).CallWith(&user{})
	if err != errRejected {
		t.Errorf("CallWith() error = %v, want %v", err, errRejected)
	}
}

func TestCallMissingYieldsNil(t *testing.T) {
	c, _ := action.Both(action.Call)
	got := runWith(t, action.New([]any{c, "nope"}), &user{})
	if diff := cmp.Diff([]any{nil}, got); diff != "" {
		t.Errorf("call mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete(t *testing.T) {
	d, _ := action.Both(action.Delete)
	scope := map[string]any{"k": 1, "j": 2}
	obj := map[string]any{"k": "other"}
	got := runWith(t, action.New([]any{d, "k", d, "k", obj, d, "missing"}), scope)
	if diff := cmp.Diff([]any{1, "other", nil}, got); diff != "" {
		t.Errorf("delete mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"j": 2}, scope); diff != "" {
		t.Errorf("scope mismatch (-want +got):\n%s", diff)
	}
	if len(obj) != 0 {
		t.Errorf("obj = %v, want empty", obj)
	}
}
