package template

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/abdul-hamid-achik/apix/packages/builtin"
	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
	"github.com/abdul-hamid-achik/apix/packages/ordered"
)

// Context holds the variables visible to templates.
type Context map[string]any

// Insert sets a top-level variable and returns the context.
func (c Context) Insert(key string, value any) Context {
	c[key] = value
	return c
}

type compiled struct {
	source string
	tpl    *pongo2.Template
}

// Engine is a registry of named templates. It is not safe for concurrent use.
type Engine struct {
	set       *pongo2.TemplateSet
	functions pongo2.Context
	templates map[string]*compiled
}

func NewEngine() *Engine {
	return NewEngineWithFunctions(builtin.NewRegistry())
}

// NewEngineWithFunctions builds an engine exposing the functions of reg.
func NewEngineWithFunctions(reg *builtin.Registry) *Engine {
	return &Engine{
		set:       pongo2.NewSet("apix", pongo2.DefaultLoader),
		functions: functionContext(reg),
		templates: make(map[string]*compiled),
	}
}

// Register compiles content under name, replacing any previous template
// with that name.
func (e *Engine) Register(name, content string) error {
	if c, ok := e.templates[name]; ok && c.source == content {
		return nil
	}
	tpl, err := e.set.FromString(content)
	if err != nil {
		return errdef.Template(name, err)
	}
	e.templates[name] = &compiled{source: content, tpl: tpl}
	return nil
}

// Render executes a registered template.
func (e *Engine) Render(name string, ctx Context) (string, error) {
	c, ok := e.templates[name]
	if !ok {
		return "", errdef.Template(name, fmt.Errorf("template is not registered"))
	}
	execCtx := e.executionContext(ctx)
	if err := checkUndefined(c.source, execCtx); err != nil {
		return "", errdef.Template(name, err)
	}
	out, err := c.tpl.Execute(execCtx)
	if err != nil {
		return "", errdef.Template(name, err)
	}
	return out, nil
}

// RenderString registers content under name and renders it. Text without
// template syntax is returned unchanged.
func (e *Engine) RenderString(name, content string, ctx Context) (string, error) {
	if !hasTemplateSyntax(content) {
		return content, nil
	}
	if err := e.Register(name, content); err != nil {
		return "", err
	}
	return e.Render(name, ctx)
}

// RenderMap renders every value of m. Keys and their order are kept; each
// value is registered as "<name>.<key>".
func (e *Engine) RenderMap(name string, m *ordered.Map, ctx Context) (*ordered.Map, error) {
	out := ordered.New()
	err := m.Each(func(key, value string) error {
		rendered, err := e.RenderString(name+"."+key, value, ctx)
		if err != nil {
			return err
		}
		out.Set(key, rendered)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RenderValue renders the string leaves of a JSON-shaped value. Object
// members are named "<name>.<key>" and array items "<name>.<index>".
// Numbers, booleans and null are returned as is.
func (e *Engine) RenderValue(name string, value any, ctx Context) (any, error) {
	switch v := value.(type) {
	case string:
		return e.RenderString(name, v, ctx)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(v))
		for _, k := range keys {
			r, err := e.RenderValue(name+"."+k, v[k], ctx)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			r, err := e.RenderValue(name+"."+strconv.Itoa(i), item, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return value, nil
	}
}

func (e *Engine) executionContext(ctx Context) pongo2.Context {
	out := make(pongo2.Context, len(e.functions)+len(ctx))
	for k, v := range e.functions {
		out[k] = v
	}
	for k, v := range ctx {
		out[k] = templateValue(v)
	}
	return out
}

func hasTemplateSyntax(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%") || strings.Contains(s, "{#")
}

func functionContext(reg *builtin.Registry) pongo2.Context {
	out := make(pongo2.Context)
	for _, name := range reg.Names() {
		fn, _ := reg.Lookup(name)
		out[name] = func(args ...*pongo2.Value) (*pongo2.Value, error) {
			in := make([]any, len(args))
			for i, a := range args {
				in[i] = plainValue(a.Interface())
			}
			v, err := fn(in)
			if err != nil {
				return nil, err
			}
			return pongo2.AsValue(v), nil
		}
	}
	return out
}
