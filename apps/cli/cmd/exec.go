package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apix/packages/core/runner"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

type execOptions struct {
	file   string
	params []string
	watch  bool
	client clientFlags
}

func newExecCmd(a *app) *cobra.Command {
	o := &execOptions{}
	cmd := &cobra.Command{
		Use:   "exec [name]",
		Short: "Execute a request manifest",
		Long: heredoc.Doc(`
			Execute a Request manifest found by name in the current directory tree,
			or read from a file with -f.

			Required parameters that are not given with -p are prompted for.`),
		Example: heredoc.Doc(`
			apix exec get-user -p id:42
			apix exec -f requests/create-user.yaml -p name:ada
			apix exec get-user -p id:42 -o user.json
			apix exec get-user -p id:42 --watch`),
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.MaximumNArgs(1)(cmd, args))
		},
		ValidArgsFunction: completeRequestNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), a, o, args)
		},
	}

	cmd.Flags().StringVarP(&o.file, "file", "f", "", "Manifest file to execute")
	cmd.Flags().StringArrayVarP(&o.params, "param", "p", nil, "Parameter value as name:value (repeatable)")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "Re-execute when the manifest file changes")
	o.client.bind(cmd)
	return cmd
}

func runExec(ctx context.Context, a *app, o *execOptions, args []string) error {
	if o.file == "" && len(args) == 0 {
		return usageError(errors.New("a request name or --file is required"))
	}
	parameters, err := parsePairs("param", o.params)
	if err != nil {
		return err
	}
	opts := a.requestOptions()
	if err := o.client.apply(&opts); err != nil {
		return err
	}

	locate := func() (*manifest.Manifest, error) {
		if o.file != "" {
			return manifest.Load(o.file)
		}
		return manifest.Find(".", manifest.KindRequest, args[0])
	}

	store := a.openHistory()
	if store != nil {
		defer store.Close()
	}
	r := a.newRunner(store)

	run := func() (*manifest.Manifest, error) {
		m, err := locate()
		if err != nil {
			return nil, err
		}
		result, err := r.Exec(ctx, runner.Input{
			Manifest:   m,
			Parameters: parameters,
			Options:    opts,
		})
		a.report(result)
		return m, err
	}

	m, err := run()
	if !o.watch || m == nil {
		return err
	}
	if err != nil {
		a.console.Error(err)
	}
	return watchManifest(ctx, a, m.Path, func() {
		if _, err := run(); err != nil {
			a.console.Error(err)
		}
	})
}

// watchManifest calls run after every change to path until ctx is done.
// Runs happen on the calling goroutine.
func watchManifest(ctx context.Context, a *app, path string, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// Watch the directory to catch files replaced on save.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	a.console.Info("\nWatching %s for changes... (press Ctrl+C to stop)", path)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if changed, _ := filepath.Abs(event.Name); changed != abs {
				continue
			}
			debounce = time.After(WatchDebounceDelay)

		case <-debounce:
			debounce = nil
			a.console.Info("\nFile changed: %s\nRe-executing...\n", path)
			run()
			a.console.Info("\nWatching %s for changes... (press Ctrl+C to stop)", path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.console.Warn("watcher error: %v", err)
		}
	}
}

// completeRequestNames suggests the names of the Request manifests below
// the working directory.
func completeRequestNames(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	manifests, err := manifest.FindAll(".", manifest.KindRequest)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(manifests))
	for _, m := range manifests {
		names = append(names, m.Name())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
