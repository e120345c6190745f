package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultTheme, c.Theme())
	assert.True(t, c.HistoryEnabled())
	assert.Equal(t, 30*time.Second, c.Timeout())
	v, ok := c.Get("theme")
	assert.True(t, ok)
	assert.Equal(t, DefaultTheme, v)
	_, ok = c.Get("unknown")
	assert.False(t, ok)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := `apiVersion: apix.io/v1
kind: Configuration
metadata:
  name: configuration
spec:
  theme: dracula
  custom.key: value
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "dracula", c.Theme())
	v, ok := c.Get("custom.key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestLoad_WrongKind(t *testing.T) {
	dir := t.TempDir()
	content := "apiVersion: apix.io/v1\nkind: Api\nmetadata:\n  name: x\nspec:\n  url: http://x\n  version: v1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, errdef.KindManifest, errdef.KindOf(err))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)
	c.Set("theme", "github")

	t.Setenv("APIX_THEME", "nord")
	assert.Equal(t, "nord", c.Theme())
}

func TestSetDeleteSave(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	require.NoError(t, err)

	old, existed := c.Set("Theme", "dracula")
	assert.False(t, existed)
	assert.Empty(t, old)

	old, existed = c.Set("theme", "nord")
	assert.True(t, existed)
	assert.Equal(t, "dracula", old)

	c.Set("editor", "nano")
	require.NoError(t, c.Save())

	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "nord", again.Theme())
	assert.Equal(t, map[string]string{"theme": "nord", "editor": "nano"}, again.Stored())

	old, existed = again.Delete("editor")
	assert.True(t, existed)
	assert.Equal(t, "nano", old)
	_, existed = again.Delete("editor")
	assert.False(t, existed)
	_, ok := again.Get("editor")
	assert.False(t, ok)
}

func TestValues_IncludesDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)
	c.Set("editor", "vim")

	values := c.Values()
	assert.Equal(t, "vim", values["editor"])
	assert.Equal(t, DefaultTheme, values["theme"])
	assert.Contains(t, c.Keys(), "history")
}

func TestDir_Override(t *testing.T) {
	t.Setenv(HomeEnv, "/tmp/apix-home")
	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/apix-home", dir)
}
