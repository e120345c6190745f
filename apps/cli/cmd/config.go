package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MakeNowJust/heredoc"
	udiff "github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apix/packages/core/config"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change the user configuration",
		Long: heredoc.Docf(`
			Read and change the configuration stored in ~/.apix/%s
			(or $%s/%[1]s).

			Environment variables prefixed with %[3]s_ override stored values,
			e.g. %[3]s_THEME=dracula.`, config.FileName, config.HomeEnv, config.EnvPrefix),
	}
	cmd.AddCommand(
		newConfigListCmd(a),
		newConfigGetCmd(a),
		newConfigSetCmd(a),
		newConfigDeleteCmd(a),
	)
	return cmd
}

func newConfigListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the effective configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := a.cfg.Values()
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			var b strings.Builder
			for _, k := range keys {
				fmt.Fprintf(&b, "%s: %s\n", k, values[k])
			}
			return a.printer().PrettyPrint([]byte(b.String()), "yaml")
		},
	}
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := a.cfg.Get(args[0])
			if !ok {
				return configError(fmt.Errorf("configuration key %q is not set", args[0]))
			}
			return a.printer().PrettyPrint([]byte(fmt.Sprintf("%s: %s\n", strings.ToLower(args[0]), v)), "yaml")
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Store a configuration value",
		Example: "  apix config set theme dracula",
		Args:    exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeConfig(a, func() {
				a.cfg.Set(args[0], args[1])
			})
		},
	}
}

func newConfigDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a stored configuration value",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.cfg.Stored()[strings.ToLower(args[0])]; !ok {
				return configError(fmt.Errorf("configuration key %q is not stored", args[0]))
			}
			return changeConfig(a, func() {
				a.cfg.Delete(args[0])
			})
		},
	}
}

// changeConfig applies change, saves the configuration and shows the
// resulting diff of the configuration file.
func changeConfig(a *app, change func()) error {
	before, err := manifestText(a.cfg)
	if err != nil {
		return configError(err)
	}
	change()
	after, err := manifestText(a.cfg)
	if err != nil {
		return configError(err)
	}
	if err := a.cfg.Save(); err != nil {
		return configError(err)
	}

	diff := configDiff(before, after)
	if diff == "" {
		a.console.Info("configuration unchanged")
		return nil
	}
	return a.printer().PrettyPrint([]byte(diff), "diff")
}

func configDiff(before, after string) string {
	return udiff.Unified("a/"+config.FileName, "b/"+config.FileName, before, after)
}

// manifestText renders the stored values the way they are saved, without
// the creation annotations that change on every save.
func manifestText(cfg *config.Config) (string, error) {
	m := cfg.Manifest()
	m.Metadata.Annotations = nil
	out, err := manifest.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	return usageError(cobra.NoArgs(cmd, args))
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usageError(cobra.ExactArgs(n)(cmd, args))
	}
}
