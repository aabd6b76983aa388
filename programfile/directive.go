// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package programfile

import (
	"fmt"
	"slices"
	"strings"

	"code.hybscloud.com/action"
	"code.hybscloud.com/action/deep"
)

// directives maps each directive key to the extra keys it accepts.
var directives = map[string][]string{
	"step":    {"priority", "label", "prefix"},
	"ref":     nil,
	"fn":      nil,
	"literal": nil,
	"close":   nil,
	"end":     nil,
	"use":     {"with"},
	"path":    nil,
	"data":    nil,
}

type builder struct {
	reg    *Registry
	labels map[string]*action.Step
	tpls   map[string]*action.Template
}

func (b *builder) tokens(vals []any, where string) ([]any, error) {
	out := make([]any, 0, len(vals))
	for i, v := range vals {
		tok, err := b.token(v)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", where, i, err)
		}
		out = append(out, tok)
	}
	return out, nil
}

func (b *builder) token(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	key, err := directiveKey(m)
	if err != nil || key == "" {
		return v, err
	}

	switch key {
	case "step":
		return b.step(m)
	case "ref":
		return b.label(m["ref"])
	case "fn":
		name, err := str(m, "fn")
		if err != nil {
			return nil, err
		}
		return b.reg.lookupFunc(name)
	case "literal":
		name, err := str(m, "literal")
		if err != nil {
			return nil, err
		}
		fn, err := b.reg.lookupFunc(name)
		if err != nil {
			return nil, err
		}
		return action.Lit(fn), nil
	case "close":
		s, err := b.label(m["close"])
		if err != nil {
			return nil, err
		}
		return action.Close(s), nil
	case "end":
		if end, _ := m["end"].(bool); !end {
			return nil, fmt.Errorf("%w: end must be true", ErrDirective)
		}
		return action.End, nil
	case "use":
		return b.use(m)
	case "path":
		segs, ok := m["path"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: path must be a sequence", ErrDirective)
		}
		return deep.P(segs...), nil
	}
	return m["data"], nil
}

// directiveKey returns the directive a mapping holds, or "" for plain
// data. Mixing directives, or adding keys a directive does not accept,
// is an error.
func directiveKey(m map[string]any) (string, error) {
	var found []string
	for k := range m {
		if _, ok := directives[k]; ok {
			found = append(found, k)
		}
	}
	switch len(found) {
	case 0:
		return "", nil
	case 1:
	default:
		slices.Sort(found)
		return "", fmt.Errorf("%w: conflicting keys %s", ErrDirective, strings.Join(found, ", "))
	}
	key := found[0]
	for k := range m {
		if k != key && !slices.Contains(directives[key], k) {
			return "", fmt.Errorf("%w: %s does not take %q", ErrDirective, key, k)
		}
	}
	return key, nil
}

func (b *builder) step(m map[string]any) (*action.Step, error) {
	// An unquoted null decodes to nil.
	name := "null"
	if m["step"] != nil {
		var err error
		if name, err = str(m, "step"); err != nil {
			return nil, err
		}
	}
	p, err := priority(m["priority"])
	if err != nil {
		return nil, err
	}

	var kind action.Kind
	if name == "early" {
		raw, _ := m["prefix"].([]any)
		prefix, err := b.tokens(raw, "prefix")
		if err != nil {
			return nil, err
		}
		kind = action.Early(prefix...)
	} else {
		if _, ok := m["prefix"]; ok {
			return nil, fmt.Errorf("%w: only early steps take a prefix", ErrDirective)
		}
		if kind, err = b.reg.lookupKind(name); err != nil {
			return nil, err
		}
	}

	s := action.NewStep(kind, p)
	if label, ok := m["label"]; ok {
		l, ok := label.(string)
		if !ok || l == "" {
			return nil, fmt.Errorf("%w: label must be a non-empty string", ErrDirective)
		}
		if _, dup := b.labels[l]; dup {
			return nil, fmt.Errorf("%w: label %q defined twice", ErrDirective, l)
		}
		b.labels[l] = s
	}
	return s, nil
}

func (b *builder) label(v any) (*action.Step, error) {
	name, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: label must be a string", ErrDirective)
	}
	s, ok := b.labels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}
	return s, nil
}

func (b *builder) use(m map[string]any) (*action.Step, error) {
	name, err := str(m, "use")
	if err != nil {
		return nil, err
	}
	tpl, ok := b.tpls[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown template %q", ErrDirective, name)
	}
	raw, _ := m["with"].(map[string]any)
	values := make(map[string]any, len(raw))
	for k, v := range raw {
		tok, err := b.token(v)
		if err != nil {
			return nil, fmt.Errorf("with %q: %w", k, err)
		}
		values[k] = tok
	}
	return tpl.Build(values), nil
}

func (b *builder) template(def TemplateSpec) (*action.Template, error) {
	p, err := priority(def.Priority)
	if err != nil {
		return nil, err
	}
	base, err := b.tokens(def.Base, "base")
	if err != nil {
		return nil, err
	}
	places := make(map[string]int, len(def.Places))
	for name, at := range def.Places {
		switch x := at.(type) {
		case int:
			if x < 0 {
				return nil, fmt.Errorf("%w: place %q must not be negative", ErrDirective, name)
			}
			places[name] = x
		case string:
			if x != "append" {
				return nil, fmt.Errorf("%w: place %q must be an index or append", ErrDirective, name)
			}
			places[name] = action.Append
		default:
			return nil, fmt.Errorf("%w: place %q must be an index or append", ErrDirective, name)
		}
	}
	return action.NewTemplate(p, base, places), nil
}

func priority(v any) (action.Priority, error) {
	switch v {
	case nil, "", "normal", 0:
		return action.Normal, nil
	case "forced", 1:
		return action.Forced, nil
	}
	return 0, fmt.Errorf("%w: unknown priority %v", ErrDirective, v)
}

func str(m map[string]any, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrDirective, key)
	}
	return s, nil
}
