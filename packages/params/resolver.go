package params

import (
	"encoding/json"
	"fmt"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
)

type Resolver struct {
	prompter    Prompter
	definitions map[string]any
}

type Option func(*Resolver)

// WithDefinitions exposes manifest definitions to parameter schemas.
func WithDefinitions(defs map[string]any) Option {
	return func(r *Resolver) {
		r.definitions = defs
	}
}

func NewResolver(p Prompter, opts ...Option) *Resolver {
	r := &Resolver{prompter: p}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a value for every parameter that is required or supplied
// in cli. Supplied values are used as strings without validation; missing
// required values are prompted for.
func (r *Resolver) Resolve(parameters []manifest.Parameter, cli map[string]string) (map[string]any, error) {
	values := make(map[string]any)
	for _, p := range parameters {
		if v, ok := cli[p.Name]; ok {
			values[p.Name] = v
			continue
		}
		if !p.Required {
			continue
		}
		v, err := r.ask(p)
		if err != nil {
			return nil, err
		}
		values[p.Name] = v
	}
	return values, nil
}

func (r *Resolver) ask(p manifest.Parameter) (any, error) {
	if r.prompter == nil {
		return nil, errdef.Parameter(p.Name, ErrNoTerminal)
	}

	prompt := Prompt{Name: p.Name, Description: p.Description}
	if p.Password {
		v, err := r.prompter.Password(prompt)
		if err != nil {
			return nil, wrap(p.Name, err)
		}
		return v, nil
	}

	validator, err := NewValidator(p.EffectiveSchema(), r.definitions)
	if err != nil {
		return nil, errdef.Parameter(p.Name, err)
	}
	prompt.Default = schemaDefault(p.EffectiveSchema())
	prompt.Validate = func(s string) error {
		_, err := validator.Check(s)
		return err
	}

	input, err := r.prompter.Input(prompt)
	if err != nil {
		return nil, wrap(p.Name, err)
	}
	value, err := validator.Check(input)
	if err != nil {
		return nil, errdef.Parameter(p.Name, err)
	}
	return value, nil
}

func schemaDefault(schema any) string {
	m, ok := schema.(map[string]any)
	if !ok {
		return ""
	}
	d, ok := m["default"]
	if !ok || d == nil {
		return ""
	}
	if s, ok := d.(string); ok {
		return s
	}
	out, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprint(d)
	}
	return string(out)
}

func wrap(name string, err error) error {
	if errdef.Is(err, errdef.KindParameter) {
		return err
	}
	return errdef.Parameter(name, err)
}
