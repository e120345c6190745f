package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apix/packages/import/curl"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
)

type importOptions struct {
	file  string
	api   string
	dir   string
	force bool
}

func newCtlImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import requests from other tools",
	}
	cmd.AddCommand(newCtlImportCurlCmd(a))
	return cmd
}

func newCtlImportCurlCmd(a *app) *cobra.Command {
	o := &importOptions{}
	cmd := &cobra.Command{
		Use:   "curl [command]",
		Short: "Create Request manifests from curl commands",
		Long: heredoc.Doc(`
			Create one Request manifest per curl command. The command is given as a
			single quoted argument, or read from a file with -f (- for stdin), one
			command per line with backslash continuations.

			Proxy and output options become annotations. Options without an apix
			equivalent are reported and skipped.`),
		Example: heredoc.Doc(`
			apix ctl import curl "curl -X POST https://api.example.com/users -d '{\"name\":\"ada\"}'"
			apix ctl import curl -f requests.sh --api users --dir requests`),
		Args: func(cmd *cobra.Command, args []string) error {
			if o.file != "" {
				return usageError(cobra.NoArgs(cmd, args))
			}
			return usageError(cobra.MinimumNArgs(1)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader
			switch o.file {
			case "":
				r = strings.NewReader(strings.Join(args, " "))
			case "-":
				r = cmd.InOrStdin()
			default:
				f, err := os.Open(o.file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return runImportCurl(a, o, r)
		},
	}
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "File with curl commands, - for stdin")
	cmd.Flags().StringVar(&o.api, "api", "default", "API the requests belong to")
	cmd.Flags().StringVarP(&o.dir, "dir", "d", ".", "Directory to write the manifests to")
	cmd.Flags().BoolVar(&o.force, "force", false, "Overwrite existing manifests")
	return cmd
}

func runImportCurl(a *app, o *importOptions, r io.Reader) error {
	commands, err := curl.SplitCommands(r)
	if err != nil {
		return err
	}
	if len(commands) == 0 {
		return usageError(fmt.Errorf("no curl commands found"))
	}

	converter := curl.NewConverter(curl.WithAPI(o.api))
	manifests := make([]*manifest.Manifest, 0, len(commands))
	paths := make([]string, 0, len(commands))
	seen := make(map[string]int)
	for i, line := range commands {
		m, parsed, err := converter.Convert(line)
		if err != nil {
			return fmt.Errorf("command %d: %w", i+1, err)
		}
		seen[m.Name()]++
		if n := seen[m.Name()]; n > 1 {
			m.Metadata.Name = fmt.Sprintf("%s-%d", m.Name(), n)
		}
		if len(parsed.Ignored) > 0 {
			a.console.Warn("%s: ignored %s", m.Name(), strings.Join(parsed.Ignored, ", "))
		}
		path := filepath.Join(o.dir, m.Name()+".yaml")
		if _, err := os.Stat(path); err == nil && !o.force {
			return usageError(fmt.Errorf("%s already exists, use --force to overwrite", path))
		}
		manifests = append(manifests, m)
		paths = append(paths, path)
	}

	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return err
	}
	for i, m := range manifests {
		if err := manifest.Save(m, paths[i]); err != nil {
			return err
		}
		a.console.Success("Created %s", paths[i])
	}
	return nil
}
