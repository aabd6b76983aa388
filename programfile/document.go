// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package programfile loads action programs from YAML documents.
//
// A document names its program as a sequence. Plain values are data;
// mappings holding one of the directive keys become interpreter tokens:
//
//	step: with               # a step; priority: normal|forced, label: name
//	step: early              # prefix: [...] is the Early prefix
//	ref: name                # the step labelled name, again
//	fn: add                  # a registry function, called by the step
//	literal: add             # a registry function passed on as data
//	close: name              # a closer for the step labelled name
//	end: true                # the quiet end marker
//	use: tpl                 # a step built from template tpl, with: {...}
//	path: [a, 0, b]          # a compound key
//	data: {step: x}          # escapes a mapping that looks like a directive
//
// Labels must be defined before they are referred to. Templates are
// resolved before the program.
package programfile

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"code.hybscloud.com/action"
)

var (
	ErrUnknownKind  = errors.New("programfile: unknown step kind")
	ErrUnknownFunc  = errors.New("programfile: unknown function")
	ErrUnknownLabel = errors.New("programfile: unknown label")
	ErrDirective    = errors.New("programfile: malformed directive")
)

// Document is the YAML form of a program and its invocation.
type Document struct {
	ArrayScope bool                    `yaml:"array_scope"`
	Strict     bool                    `yaml:"strict"`
	Scope      any                     `yaml:"scope"`
	Args       []any                   `yaml:"args"`
	Templates  map[string]TemplateSpec `yaml:"templates"`
	Program    []any                   `yaml:"program"`
}

// TemplateSpec describes an [action.Template]. Places map a value name
// to a base index or to "append".
type TemplateSpec struct {
	Priority string         `yaml:"priority"`
	Base     []any          `yaml:"base"`
	Places   map[string]any `yaml:"places"`
}

// Program is a loaded document, ready to run.
type Program struct {
	Name   string
	Doc    *Document
	Action *action.Action
}

// Loader turns documents into programs.
type Loader struct {
	reg  *Registry
	log  *zap.Logger
	opts []action.Option
}

// NewLoader returns a loader resolving names through reg. opts are
// applied to every action after the document's own settings.
func NewLoader(reg *Registry, log *zap.Logger, opts ...action.Option) *Loader {
	if reg == nil {
		reg = NewRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{reg: reg, log: log, opts: opts}
}

// Load reads and parses the document at path.
func (l *Loader) Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Name = filepath.Base(path)
	return p, nil
}

// Parse decodes a YAML document and builds its action.
func (l *Loader) Parse(data []byte) (*Program, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse program YAML: %w", err)
	}
	return l.Build(&doc)
}

// Build resolves the directives of doc.
func (l *Loader) Build(doc *Document) (*Program, error) {
	b := &builder{
		reg:    l.reg,
		labels: make(map[string]*action.Step),
		tpls:   make(map[string]*action.Template),
	}
	// Labels defined by a template are visible to templates later in
	// name order and to the program.
	for _, name := range slices.Sorted(maps.Keys(doc.Templates)) {
		tpl, err := b.template(doc.Templates[name])
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
		b.tpls[name] = tpl
	}
	program, err := b.tokens(doc.Program, "program")
	if err != nil {
		return nil, err
	}

	opts := []action.Option{action.WithLogger(l.log)}
	if doc.ArrayScope {
		opts = append(opts, action.WithArrayScope())
	}
	if doc.Strict {
		opts = append(opts, action.Strict())
	}
	opts = append(opts, l.opts...)
	l.log.Debug("program loaded",
		zap.Int("tokens", len(program)),
		zap.Int("templates", len(b.tpls)),
		zap.Int("labels", len(b.labels)))
	return &Program{Doc: doc, Action: action.New(program, opts...)}, nil
}

// Scope returns a fresh deep copy of the document's scope, or nil when
// the document has none. A run never writes through to the document.
func (p *Program) Scope() any {
	if s, ok := p.Doc.Scope.([]any); ok {
		c := clone(s).([]any)
		return &c
	}
	return clone(p.Doc.Scope)
}

// clone deep-copies the maps and lists a YAML document decodes to.
func clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(x))
		for k, e := range x {
			c[k] = clone(e)
		}
		return c
	case []any:
		c := make([]any, len(x))
		for i, e := range x {
			c[i] = clone(e)
		}
		return c
	}
	return v
}

// Run evaluates the program once with the document's scope and
// arguments. Only the first output is computed unless all is set.
func (p *Program) Run(all bool, args ...any) ([]any, error) {
	if len(args) == 0 {
		args = p.Doc.Args
	}
	var r *action.Run
	if scope := p.Scope(); scope != nil {
		r = p.Action.Start(scope, args...)
	} else if p.Doc.ArrayScope {
		r = p.Action.Start(new([]any), args...)
	} else {
		r = p.Action.Start(map[string]any{}, args...)
	}
	defer r.Close()
	if all {
		return r.All()
	}
	v, ok := r.Next()
	if !ok {
		return []any{}, r.Err()
	}
	return []any{v}, nil
}
