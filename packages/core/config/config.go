package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
)

// Config is the loaded user configuration. It is created once per process
// and passed to the commands that need it.
type Config struct {
	dir    string
	values map[string]string
	v      *viper.Viper
}

// Dir returns the configuration directory: $APIX_HOME or ~/.apix.
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Load reads dir/config.yml. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	c := &Config{dir: dir, values: make(map[string]string)}

	path := c.Path()
	if _, err := os.Stat(path); err == nil {
		m, err := manifest.Load(path)
		if err != nil {
			return nil, err
		}
		conf, ok := m.Spec.(*manifest.Configuration)
		if !ok {
			return nil, errdef.Newf(errdef.KindManifest, path, "expected a %s manifest, got %q", manifest.KindConfiguration, m.KindName())
		}
		for k, v := range conf.Values {
			c.values[strings.ToLower(k)] = v
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, errdef.IO(path, err)
	}

	c.rebuild()
	return c, nil
}

// LoadDefault loads the configuration from Dir.
func LoadDefault() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return Load(dir)
}

func (c *Config) rebuild() {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	stored := make(map[string]any, len(c.values))
	for k, val := range c.values {
		stored[k] = val
	}
	_ = v.MergeConfigMap(stored)
	c.v = v
}

func (c *Config) Path() string {
	return filepath.Join(c.dir, FileName)
}

func (c *Config) Dir() string {
	return c.dir
}

// Get returns the effective value of key.
func (c *Config) Get(key string) (string, bool) {
	key = strings.ToLower(key)
	if c.v.Get(key) == nil {
		return "", false
	}
	return c.v.GetString(key), true
}

// Set stores value under key and returns the previously stored value.
func (c *Config) Set(key, value string) (string, bool) {
	key = strings.ToLower(key)
	old, existed := c.values[key]
	c.values[key] = value
	c.rebuild()
	return old, existed
}

// Delete removes a stored key and returns its value.
func (c *Config) Delete(key string) (string, bool) {
	key = strings.ToLower(key)
	old, existed := c.values[key]
	if existed {
		delete(c.values, key)
		c.rebuild()
	}
	return old, existed
}

// Keys returns the sorted keys that have an effective value.
func (c *Config) Keys() []string {
	keys := c.v.AllKeys()
	sort.Strings(keys)
	return keys
}

// Values returns every effective key and value.
func (c *Config) Values() map[string]string {
	out := make(map[string]string)
	for _, k := range c.Keys() {
		out[k] = c.v.GetString(k)
	}
	return out
}

// Stored returns a copy of the values persisted in the file.
func (c *Config) Stored() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

func (c *Config) Theme() string {
	return c.v.GetString(KeyTheme)
}

func (c *Config) HistoryEnabled() bool {
	return c.v.GetBool(KeyHistory)
}

func (c *Config) Timeout() time.Duration {
	d := c.v.GetDuration(KeyTimeout)
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Manifest returns the configuration manifest as it would be saved.
func (c *Config) Manifest() *manifest.Manifest {
	return manifest.NewConfiguration(c.Stored())
}

// Save writes the stored values to the configuration file.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return errdef.IO(c.dir, err)
	}
	return manifest.Save(c.Manifest(), c.Path())
}
