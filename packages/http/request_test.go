package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_BuildURLKeepsQueryOrder(t *testing.T) {
	req := NewRequest("GET", "http://example.com/search?fixed=1").
		SetQueryParam("z", "last letter").
		SetQueryParam("a", "x&y")

	got, err := req.BuildURL()
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/search?fixed=1&z=last+letter&a=x%26y", got)
}

func TestRequest_BuildURLWithoutQueries(t *testing.T) {
	req := &Request{URL: "https://example.com/a/b"}
	got, err := req.BuildURL()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a/b", got)
}

func TestParseNameValue(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		value   string
		wantErr bool
	}{
		{in: "Accept:text/plain", name: "Accept", value: "text/plain"},
		{in: "X-Trace_Id:", name: "X-Trace_Id", value: ""},
		{in: "url:http://a:8080/x", name: "url", value: "http://a:8080/x"},
		{in: "no-colon", wantErr: true},
		{in: "bad name:v", wantErr: true},
		{in: ":value", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, value, err := ParseNameValue(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "expected name:value")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestParseNameValues(t *testing.T) {
	m, err := ParseNameValues([]string{"b:2", "a:1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, m.Keys())

	_, err = ParseNameValues([]string{"ok:1", "broken"})
	assert.Error(t, err)
}
