package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apix/packages/http"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
	"github.com/abdul-hamid-achik/apix/packages/output"
	"github.com/abdul-hamid-achik/apix/packages/params"
)

// kindAliases maps the kind names accepted on the command line.
var kindAliases = map[string]string{
	"request":        manifest.KindRequest,
	"requests":       manifest.KindRequest,
	"req":            manifest.KindRequest,
	"api":            manifest.KindAPI,
	"apis":           manifest.KindAPI,
	"story":          manifest.KindStory,
	"stories":        manifest.KindStory,
	"configuration":  manifest.KindConfiguration,
	"configurations": manifest.KindConfiguration,
	"config":         manifest.KindConfiguration,
}

func resolveKind(name string) (string, error) {
	kind, ok := kindAliases[strings.ToLower(name)]
	if !ok {
		return "", usageError(fmt.Errorf("unknown kind %q (expected request, api, story or configuration)", name))
	}
	return kind, nil
}

func newCtlCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctl",
		Short: "Inspect, edit and create manifests",
	}
	cmd.AddCommand(
		newCtlGetCmd(a),
		newCtlEditCmd(a),
		newCtlCreateCmd(a),
		newCtlValidateCmd(a),
		newCtlImportCmd(a),
	)
	return cmd
}

func newCtlGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> [name]",
		Short: "List manifests of a kind or print one of them",
		Example: heredoc.Doc(`
			apix ctl get requests
			apix ctl get request get-user`),
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.RangeArgs(1, 2)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveKind(args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				m, err := manifest.Find(".", kind, args[1])
				if err != nil {
					return err
				}
				data, err := os.ReadFile(m.Path)
				if err != nil {
					return err
				}
				return a.printer().PrettyPrint(data, "yaml")
			}

			manifests, err := manifest.FindAll(".", kind)
			if err != nil {
				return err
			}
			if len(manifests) == 0 {
				a.console.Info("no %s manifests found", strings.ToLower(kind))
				return nil
			}
			rows := make([][]string, 0, len(manifests))
			for _, m := range manifests {
				api, _ := m.Label(manifest.LabelAPI)
				rows = append(rows, []string{m.Name(), api, m.Path})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"NAME", "API", "PATH"}, rows)
		},
	}
}

func newCtlEditCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit [kind name]",
		Short: "Open a manifest in $VISUAL or $EDITOR",
		Example: heredoc.Doc(`
			apix ctl edit request get-user
			apix ctl edit -f requests/get-user.yaml`),
		Args: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				return usageError(cobra.NoArgs(cmd, args))
			}
			return usageError(cobra.ExactArgs(2)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				kind, err := resolveKind(args[0])
				if err != nil {
					return err
				}
				m, err := manifest.Find(".", kind, args[1])
				if err != nil {
					return err
				}
				path = m.Path
			}
			if err := openEditor(cmd.Context(), path); err != nil {
				return err
			}
			return reportProblems(a, path)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Manifest file to edit")
	return cmd
}

// editorCommand returns the editor command line: $VISUAL, then $EDITOR,
// then vi.
func editorCommand() []string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

func openEditor(ctx context.Context, path string) error {
	argv := editorCommand()
	c := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor %s: %w", argv[0], err)
	}
	return nil
}

type createOptions struct {
	headers []string
	queries []string
	body    string
	api     string
	dir     string
	force   bool
}

func newCtlCreateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create manifests",
	}
	cmd.AddCommand(newCtlCreateRequestCmd(a))
	return cmd
}

func newCtlCreateRequestCmd(a *app) *cobra.Command {
	o := &createOptions{}
	cmd := &cobra.Command{
		Use:   "request [name] [method] [url]",
		Short: "Create a Request manifest",
		Long: heredoc.Doc(`
			Create a Request manifest named <name>.yaml. Missing values are
			prompted for when stdin is a terminal.`),
		Example: heredoc.Doc(`
			apix ctl create request get-user GET 'https://api.example.com/users/{{ parameters.id }}'
			apix ctl create request create-user POST https://api.example.com/users -b '{"name": "ada"}'`),
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.MaximumNArgs(3)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateRequest(a, o, args)
		},
	}
	cmd.Flags().StringArrayVarP(&o.headers, "header", "H", nil, "Header as name:value (repeatable)")
	cmd.Flags().StringArrayVarP(&o.queries, "query", "q", nil, "Query parameter as name:value (repeatable)")
	cmd.Flags().StringVarP(&o.body, "body", "b", "", "Request body, JSON or text")
	cmd.Flags().StringVar(&o.api, "api", "default", "API the request belongs to")
	cmd.Flags().StringVarP(&o.dir, "dir", "d", ".", "Directory to write the manifest to")
	cmd.Flags().BoolVar(&o.force, "force", false, "Overwrite an existing manifest")
	return cmd
}

func runCreateRequest(a *app, o *createOptions, args []string) error {
	var name, method, url string
	switch len(args) {
	case 3:
		url = args[2]
		fallthrough
	case 2:
		method = args[1]
		fallthrough
	case 1:
		name = args[0]
	}

	if name == "" || method == "" || url == "" {
		if !params.StdinIsTerminal() {
			return usageError(errors.New("name, method and url are required when stdin is not a terminal"))
		}
		if err := promptRequest(&name, &method, &url); err != nil {
			return err
		}
	}

	method = strings.ToUpper(method)
	if !isRequestMethod(method) {
		return usageError(fmt.Errorf("unsupported method %q", method))
	}
	headers, err := pairs("header", o.headers)
	if err != nil {
		return err
	}
	queries, err := pairs("query", o.queries)
	if err != nil {
		return err
	}

	req := &manifest.Request{
		Request: manifest.RequestTemplate{
			Method:  method,
			URL:     url,
			Headers: headers,
			Queries: queries,
		},
	}
	if o.body != "" {
		req.Request.Body = params.ParseInput(o.body)
	}

	path := filepath.Join(o.dir, name+".yaml")
	if _, err := os.Stat(path); err == nil && !o.force {
		overwrite := false
		if params.StdinIsTerminal() {
			confirm := huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
				Value(&overwrite)
			if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
				return err
			}
		}
		if !overwrite {
			return usageError(fmt.Errorf("%s already exists, use --force to overwrite", path))
		}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return err
	}
	if err := manifest.Save(manifest.NewRequest(o.api, name, req), path); err != nil {
		return err
	}
	a.console.Success("Created %s", path)
	return nil
}

// promptRequest asks for the values that are still empty.
func promptRequest(name, method, url *string) error {
	var fields []huh.Field
	if *name == "" {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Value(name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			}))
	}
	if *method == "" {
		options := make([]string, 0, len(requestMethods))
		for _, m := range requestMethods {
			options = append(options, strings.ToUpper(m))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Method").
			Options(huh.NewOptions(options...)...).
			Value(method))
	}
	if *url == "" {
		fields = append(fields, huh.NewInput().
			Title("URL").
			Placeholder("https://api.example.com/users/{{ parameters.id }}").
			Value(url).
			Validate(func(s string) error {
				if strings.Contains(s, "{{") {
					return nil
				}
				return http.ValidateURL(s)
			}))
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errSilent
		}
		return err
	}
	return nil
}

func isRequestMethod(method string) bool {
	for _, m := range requestMethods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func newCtlValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|directory>...",
		Short: "Validate manifests without executing them",
		Example: heredoc.Doc(`
			apix ctl validate requests/get-user.yaml
			apix ctl validate ./requests`),
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.MinimumNArgs(1)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args)
			if err != nil {
				return usageError(err)
			}
			if len(files) == 0 {
				return usageError(errors.New("no .yaml or .yml files found"))
			}

			var failed int
			for _, file := range files {
				if err := reportProblems(a, file); err != nil {
					failed++
				}
			}
			if failed > 0 {
				a.console.Warn("%d of %d manifests are invalid", failed, len(files))
				return invalidManifest()
			}
			return nil
		},
	}
}

// reportProblems validates the manifest at path and prints the outcome.
func reportProblems(a *app, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		a.console.Error(err)
		return invalidManifest()
	}
	problems := append(m.Problems(), schemaProblems(m)...)
	if len(problems) == 0 {
		a.console.Success("Valid: %s", path)
		return nil
	}
	a.console.Error(fmt.Errorf("%s:\n  %s", path, strings.Join(problems, "\n  ")))
	return invalidManifest()
}

// schemaProblems compiles every parameter schema of m.
func schemaProblems(m *manifest.Manifest) []string {
	var (
		parameters  []manifest.Parameter
		definitions map[string]any
	)
	switch s := m.Spec.(type) {
	case *manifest.Request:
		parameters, definitions = s.Parameters, s.Definitions
	case *manifest.Stories:
		parameters, definitions = s.Parameters, s.Definitions
	}

	var problems []string
	for _, p := range parameters {
		if _, err := params.NewValidator(p.EffectiveSchema(), definitions); err != nil {
			problems = append(problems, fmt.Sprintf("parameter %q: %v", p.Name, err))
		}
	}
	return problems
}

// collectFiles expands directories into the manifest files below them.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && manifest.IsManifestFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
