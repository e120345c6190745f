package builtin

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, r *Registry, name string, args ...any) any {
	t.Helper()
	fn, ok := r.Lookup(name)
	require.True(t, ok, "function %s not registered", name)
	v, err := fn(args)
	require.NoError(t, err)
	return v
}

func TestRegistry_Defaults(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"date", "now", "random", "random_email", "random_string", "timestamp", "timestamp_ms", "uuid"}, r.Names())
}

func TestFuncUUID(t *testing.T) {
	v := call(t, NewRegistry(), "uuid").(string)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}$`), v)
}

func TestFuncRandom(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 50; i++ {
		v := call(t, r, "random", 5, int64(7)).(int)
		assert.GreaterOrEqual(t, v, 5)
		assert.LessOrEqual(t, v, 7)
	}

	fn, _ := r.Lookup("random")
	_, err := fn([]any{"a", 2})
	assert.Error(t, err)
	_, err = fn([]any{9, 2})
	assert.Error(t, err)
}

func TestFuncRandomString(t *testing.T) {
	v := call(t, NewRegistry(), "random_string", "12").(string)
	assert.Len(t, v, 12)
}

func TestFuncDate(t *testing.T) {
	v := call(t, NewRegistry(), "date", "2006").(string)
	assert.Len(t, v, 4)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("answer", func(_ []any) (any, error) { return 42, nil })
	assert.Equal(t, 42, call(t, r, "answer"))
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "aGVsbG8=", Base64("hello"))
	s, err := Base64Decode("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
	_, err = Base64Decode("%%%")
	assert.Error(t, err)

	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", MD5("hello"))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", SHA256("hello"))
	assert.Equal(t, "a+b%26c", URLEncode("a b&c"))
	assert.Equal(t, "a b&c", URLDecode("a+b%26c"))
}

func TestJSONPath(t *testing.T) {
	v, ok := JSONPath(`{"user":{"id":7,"tags":["a","b"]}}`, "user.tags.1")
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = JSONPath(`{"user":{}}`, "user.id")
	assert.False(t, ok)

	_, ok = JSONPath(`not json`, "a")
	assert.False(t, ok)
}
