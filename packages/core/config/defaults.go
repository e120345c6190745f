package config

import "time"

const (
	KeyTheme   = "theme"
	KeyHistory = "history"
	KeyTimeout = "timeout"

	DefaultTheme   = "monokai"
	DefaultTimeout = 30 * time.Second

	// EnvPrefix prefixes environment overrides, e.g. APIX_THEME.
	EnvPrefix = "APIX"
	// HomeEnv overrides the configuration directory.
	HomeEnv = "APIX_HOME"

	FileName = "config.yml"
	DirName  = ".apix"
)

// Defaults returns the built-in values.
func Defaults() map[string]string {
	return map[string]string{
		KeyTheme:   DefaultTheme,
		KeyHistory: "true",
		KeyTimeout: DefaultTimeout.String(),
	}
}
