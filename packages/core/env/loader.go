package env

import (
	"os"
	"strings"
)

// System returns the process environment as a map.
func System() map[string]string {
	return LoadSystemEnv("")
}

// LoadSystemEnv returns the process environment variables whose name starts
// with prefix, with the prefix removed. An empty prefix returns everything.
func LoadSystemEnv(prefix string) map[string]string {
	result := make(map[string]string)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok || key == "" {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}
