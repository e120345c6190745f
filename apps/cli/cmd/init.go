package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apix/packages/manifest"
	"github.com/abdul-hamid-achik/apix/packages/ordered"
)

const (
	// contextFile holds values local to a checkout and is never committed.
	contextFile  = ".apix/context.yaml"
	exampleName  = "get-example"
	gitignoreTag = "# apix"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize an apix project in the current directory",
		Long: heredoc.Docf(`
			Initialize an apix project in the current directory.

			This creates:
			  - .gitignore            ignores %s
			  - %s.yaml      example Request manifest`, contextFile, exampleName),
		Example: heredoc.Doc(`
			apix init
			apix init --force`),
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeGitignore(); err != nil {
				return err
			}
			a.console.Success("Updated .gitignore")

			path := exampleName + ".yaml"
			if _, err := os.Stat(path); err == nil && !force {
				return usageError(fmt.Errorf("file already exists: %s (use --force to overwrite)", path))
			}
			if err := manifest.Save(exampleManifest(), path); err != nil {
				return err
			}
			a.console.Success("Created %s", path)
			a.console.Info("\nNext steps:\n  apix exec %s -p id:1", exampleName)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}

// writeGitignore appends the context file to .gitignore unless it is
// already listed.
func writeGitignore() error {
	const path = ".gitignore"
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == contextFile {
			return nil
		}
	}

	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s\n%s\n", gitignoreTag, filepath.ToSlash(contextFile))
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func exampleManifest() *manifest.Manifest {
	req := &manifest.Request{
		Parameters: []manifest.Parameter{
			{
				Name:        "id",
				Required:    true,
				Description: "Post identifier",
				Schema:      map[string]any{"type": "integer", "minimum": 1},
			},
		},
		Context: map[string]any{
			"base": "https://jsonplaceholder.typicode.com",
		},
		Request: manifest.RequestTemplate{
			Method:  "GET",
			URL:     "{{ context.base }}/posts/{{ parameters.id }}",
			Headers: ordered.FromPairs("Accept", "application/json"),
		},
	}
	return manifest.NewRequest("jsonplaceholder", exampleName, req)
}
