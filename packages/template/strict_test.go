package template

import (
	"testing"

	"github.com/flosch/pongo2/v6"
	"github.com/stretchr/testify/assert"
)

func TestCheckUndefined(t *testing.T) {
	ctx := pongo2.Context{
		"parameters": map[string]any{"id": 1, "user": map[string]any{"name": "ada"}, "nothing": nil},
		"env":        map[string]string{"HOME": "/root"},
		"list":       []any{"x"},
		"uuid":       func() string { return "" },
	}

	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"resolved", "{{ parameters.user.name }}", false},
		{"missing root", "{{ params.id }}", true},
		{"missing key", "{{ parameters.user.email }}", true},
		{"env missing", "{{ env.NOPE }}", true},
		{"nil parent", "{{ parameters.nothing.x }}", true},
		{"default filter", "{{ env.NOPE|default:'' }}", false},
		{"literal", `{{ "text" }}`, false},
		{"number", "{{ 3 }}", false},
		{"function", "{{ uuid() }}", false},
		{"method on value", "{{ parameters.user.name.upper() }}", false},
		{"inside if", "{% if x %}{{ x.y }}{% endif %}", false},
		{"after if", "{% if x %}{% endif %}{{ x.y }}", true},
		{"for binding", "{% for a, b in list %}{{ a }}{{ b }}{{ forloop.Counter }}{% endfor %}", false},
		{"set binding", "{% set greeting = 'hi' %}{{ greeting }}", false},
		{"with binding", "{% with total=parameters.id %}{{ total }}{% endwith %}", false},
		{"comment ignored", "{# {{ nope }} #}ok", false},
		{"keyword", "{{ not parameters.id }}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkUndefined(tt.source, ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
