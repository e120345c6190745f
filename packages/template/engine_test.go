package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
	"github.com/abdul-hamid-achik/apix/packages/ordered"
)

func testContext() Context {
	return Context{
		"parameters": map[string]any{"id": float64(42), "name": "ada", "ratio": 0.5, "admin": true, "off": false,
			"tags": []any{"x", float64(2), 1.25, true}, "user": map[string]any{"id": float64(7), "ok": true}},
		"env":        map[string]string{"HOME": "/home/ada"},
		"context":    map[string]any{"items": []any{"a", "b"}, "raw": `{"a":{"b":7}}`},
	}
}

func TestRenderString(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"plain", "https://example.com", "https://example.com"},
		{"integer", "/users/{{ parameters.id }}", "/users/42"},
		{"env map", "{{ env.HOME }}", "/home/ada"},
		{"filter", "{{ parameters.name|upper }}", "ADA"},
		{"array index", "{{ context.items.1 }}", "b"},
		{"default filter", `{{ parameters.missing|default:"x" }}`, "x"},
		{"guarded by if", "{% if parameters.token %}{{ parameters.token }}{% endif %}", ""},
		{"for loop", "{% for i in context.items %}{{ i }}{% endfor %}", "ab"},
		{"no escaping", `{{ "<a&b>" }}`, "<a&b>"},
		{"tojson", "{{ context.items|tojson }}", `["a","b"]`},
		{"b64encode", "{{ parameters.name|b64encode }}", "YWRh"},
		{"json_path", `{{ context.raw|json_path:"a.b" }}`, "7"},
		{"bool", "{{ parameters.admin }}", "true"},
		{"false bool", "{{ parameters.off }}", "false"},
		{"fractional number", "{{ parameters.ratio }}", "0.5"},
		{"array as json", "{{ parameters.tags }}", `["x",2,1.25,true]`},
		{"object as json", "{{ parameters.user }}", `{"id":7,"ok":true}`},
		{"object member", "{{ parameters.user.id }}/{{ parameters.user.ok }}", "7/true"},
		{"array item", "{{ parameters.tags.2 }}", "1.25"},
		{"true is truthy", "{% if parameters.admin %}yes{% else %}no{% endif %}", "yes"},
		{"false is falsy", "{% if parameters.off %}yes{% else %}no{% endif %}", "no"},
		{"not false", "{% if not parameters.off %}yes{% endif %}", "yes"},
		{"number compares", "{% if parameters.ratio < 1 %}small{% endif %}", "small"},
		{"iterate array", "{% for v in parameters.tags %}{{ v }};{% endfor %}", "x;2;1.25;true;"},
		{"tojson object", "{{ parameters.user|tojson }}", `{"id":7,"ok":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.RenderString("t#/"+tt.name, tt.content, testContext())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRenderString_Functions(t *testing.T) {
	e := NewEngine()
	out, err := e.RenderString("fn", "{{ uuid() }}", Context{})
	require.NoError(t, err)
	assert.Len(t, out, 36)

	out, err = e.RenderString("rand", "{{ random(3, 3) }}", Context{})
	require.NoError(t, err)
	assert.Equal(t, "3", out)
}

func TestRenderString_UndefinedVariable(t *testing.T) {
	e := NewEngine()
	_, err := e.RenderString("req.yaml#/url", "/users/{{ parameters.nope }}", testContext())

	require.Error(t, err)
	assert.Equal(t, errdef.KindTemplate, errdef.KindOf(err))
	assert.Contains(t, err.Error(), "req.yaml#/url")
	assert.Contains(t, err.Error(), "parameters.nope")

	_, err = e.RenderString("root", "{{ missing }}", testContext())
	assert.Error(t, err)

	_, err = e.RenderString("idx", "{{ context.items.5 }}", testContext())
	assert.Error(t, err)
}

func TestRenderString_SyntaxError(t *testing.T) {
	e := NewEngine()
	_, err := e.RenderString("bad", "{% notatag %}", testContext())
	require.Error(t, err)
	assert.Equal(t, errdef.KindTemplate, errdef.KindOf(err))
	assert.Contains(t, err.Error(), "bad")
}

func TestRegister_Overwrites(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Register("name", "one"))
	require.NoError(t, e.Register("name", "two {{ parameters.name }}"))

	out, err := e.Render("name", testContext())
	require.NoError(t, err)
	assert.Equal(t, "two ada", out)
}

func TestRender_Unregistered(t *testing.T) {
	_, err := NewEngine().Render("ghost", Context{})
	assert.Error(t, err)
}

func TestRenderMap_PreservesOrder(t *testing.T) {
	e := NewEngine()
	in := ordered.FromPairs(
		"Z-Last", "z",
		"Authorization", "Bearer {{ parameters.name }}",
		"A-First", "{{ parameters.id }}",
	)

	out, err := e.RenderMap("h", in, testContext())
	require.NoError(t, err)
	assert.Equal(t, in.Keys(), out.Keys())
	v, _ := out.Get("Authorization")
	assert.Equal(t, "Bearer ada", v)
	v, _ = out.Get("A-First")
	assert.Equal(t, "42", v)
}

func TestRenderMap_ErrorNamesKey(t *testing.T) {
	e := NewEngine()
	_, err := e.RenderMap("f#/headers", ordered.FromPairs("X-Id", "{{ nope }}"), testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f#/headers.X-Id")
}

func TestRenderValue_LeavesOnly(t *testing.T) {
	e := NewEngine()
	in := map[string]any{
		"id":     "{{ parameters.id }}",
		"count":  float64(3),
		"active": true,
		"none":   nil,
		"nested": map[string]any{"tags": []any{"{{ parameters.name }}", float64(1)}},
	}

	out, err := e.RenderValue("b", in, testContext())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":     "42",
		"count":  float64(3),
		"active": true,
		"none":   nil,
		"nested": map[string]any{"tags": []any{"ada", float64(1)}},
	}, out)
}

func TestRenderValue_Idempotent(t *testing.T) {
	e := NewEngine()
	in := map[string]any{
		"a": "plain",
		"b": []any{float64(1), "two", false, nil},
		"c": map[string]any{"d": "e"},
	}

	once, err := e.RenderValue("v", in, testContext())
	require.NoError(t, err)
	assert.Equal(t, in, once)

	twice, err := e.RenderValue("v", once, testContext())
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestRenderValue_ErrorNamesPath(t *testing.T) {
	e := NewEngine()
	_, err := e.RenderValue("f#/body", map[string]any{"list": []any{"ok", "{{ nope }}"}}, testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f#/body.list.1")
}
