package curl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
)

func TestParse_SimpleGet(t *testing.T) {
	cmd, err := Parse(`curl https://api.example.com/users`)
	require.NoError(t, err)

	assert.Equal(t, "GET", cmd.Method)
	assert.Equal(t, "https://api.example.com/users", cmd.URL)
	assert.Equal(t, "get-users", cmd.Name)
	assert.Zero(t, cmd.Headers.Len())
}

func TestParse_PostWithData(t *testing.T) {
	cmd, err := Parse(`curl -X PUT https://api.example.com/users/42 -d '{"name":"John"}'`)
	require.NoError(t, err)

	assert.Equal(t, "PUT", cmd.Method)
	assert.Equal(t, `{"name":"John"}`, cmd.Body)
	assert.Equal(t, "put-users-42", cmd.Name)
}

func TestParse_ImplicitPost(t *testing.T) {
	cmd, err := Parse(`curl -d "name=John" -d "age=3" https://api.example.com/users`)
	require.NoError(t, err)

	assert.Equal(t, "POST", cmd.Method)
	assert.Equal(t, "name=John&age=3", cmd.Body)
}

func TestParse_HeadersKeepOrder(t *testing.T) {
	cmd, err := Parse(`curl -H "Content-Type: application/json" -H 'Authorization: Bearer token123' -A apix-test https://api.example.com/users`)
	require.NoError(t, err)

	assert.Equal(t, []string{"Content-Type", "Authorization", "User-Agent"}, cmd.Headers.Keys())
	v, _ := cmd.Headers.Get("Authorization")
	assert.Equal(t, "Bearer token123", v)
}

func TestParse_BasicAuth(t *testing.T) {
	cmd, err := Parse(`curl -u admin:secret https://api.example.com/admin`)
	require.NoError(t, err)

	v, ok := cmd.Headers.Get("Authorization")
	require.True(t, ok)
	assert.Equal(t, "Basic YWRtaW46c2VjcmV0", v)
}

func TestParse_QueryKeepsOrder(t *testing.T) {
	cmd, err := Parse(`curl 'https://api.example.com/search?z=last&a=x%26y&flag'`)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/search", cmd.URL)
	assert.Equal(t, []string{"z", "a", "flag"}, cmd.Queries.Keys())
	v, _ := cmd.Queries.Get("a")
	assert.Equal(t, "x&y", v)
}

func TestParse_Annotations(t *testing.T) {
	cmd, err := Parse(`curl -x http://proxy:3128 -U bob:pw -o out.json -k -L --max-time 5 https://api.example.com`)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		manifest.AnnotationProxyURL:      "http://proxy:3128",
		manifest.AnnotationProxyLogin:    "bob",
		manifest.AnnotationProxyPassword: "pw",
		manifest.AnnotationOutputFile:    "out.json",
	}, cmd.Annotations)
	assert.Equal(t, []string{"-k", "-L", "--max-time"}, cmd.Ignored)
	assert.Equal(t, "get-root", cmd.Name)
}

func TestParse_Head(t *testing.T) {
	cmd, err := Parse(`curl -I https://api.example.com/health -d x`)
	require.NoError(t, err)
	assert.Equal(t, "HEAD", cmd.Method)
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"curl", "curl -X", `curl -H "Accept: */*"`} {
		_, err := Parse(in)
		require.Error(t, err, in)
		assert.True(t, errdef.Is(err, errdef.KindParameter), in)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`a b  c`, []string{"a", "b", "c"}},
		{`-d '{"a": 1}'`, []string{"-d", `{"a": 1}`}},
		{`-H "X-Quote: it's"`, []string{"-H", "X-Quote: it's"}},
		{`-d ''`, []string{"-d", ""}},
		{`a\ b`, []string{"a b"}},
		{`'c:\path'`, []string{`c:\path`}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tokenize(tt.in), tt.in)
	}
}

func TestConverter_Manifest(t *testing.T) {
	c := NewConverter(WithAPI("users"))
	m, cmd, err := c.Convert(`curl -X POST https://api.example.com/users -H 'Accept: application/json' -d '{"name":"ada","age":36}' -o created.json`)
	require.NoError(t, err)
	require.NotNil(t, cmd)

	assert.Equal(t, "post-users", m.Name())
	api, _ := m.Label(manifest.LabelAPI)
	assert.Equal(t, "users", api)
	out, _ := m.Annotation(manifest.AnnotationOutputFile)
	assert.Equal(t, "created.json", out)

	req, ok := m.Spec.(*manifest.Request)
	require.True(t, ok)
	assert.Equal(t, "POST", req.Request.Method)
	assert.Equal(t, map[string]any{"name": "ada", "age": float64(36)}, req.Request.Body)
	assert.Empty(t, m.Problems())
}

func TestConverter_FormBodyStaysString(t *testing.T) {
	m, _, err := NewConverter().Convert(`curl -d name=ada https://api.example.com/users`)
	require.NoError(t, err)

	assert.Equal(t, "name=ada", m.Spec.(*manifest.Request).Request.Body)
}

func TestConvertAll(t *testing.T) {
	input := `# users
curl https://api.example.com/users

curl -X POST \
  -H 'Content-Type: application/json' \
  -d '{"name":"ada"}' \
  https://api.example.com/users
`
	manifests, err := NewConverter().ConvertAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, "get-users", manifests[0].Name())
	assert.Equal(t, "post-users", manifests[1].Name())

	_, err = NewConverter().ConvertAll(strings.NewReader("curl -X GET\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command 1")
}
