package cmd

import (
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/abdul-hamid-achik/apix/packages/core/config"
	"github.com/abdul-hamid-achik/apix/packages/core/env"
	"github.com/abdul-hamid-achik/apix/packages/core/runner"
	"github.com/abdul-hamid-achik/apix/packages/history"
	"github.com/abdul-hamid-achik/apix/packages/http"
	"github.com/abdul-hamid-achik/apix/packages/output"
	"github.com/abdul-hamid-achik/apix/packages/params"
)

// app carries the state shared by every command of one invocation.
type app struct {
	version   string
	buildTime string

	stdout  io.Writer
	stderr  io.Writer
	console *output.Console
	cfg     *config.Config

	// prompter overrides the terminal prompter.
	prompter params.Prompter
	// isTerminal overrides the stdout terminal check.
	isTerminal func() bool

	verbose    bool
	outputFile string
	noColor    bool
	envFiles   []string
	noHistory  bool
}

func newApp(version, buildTime string) *app {
	return &app{
		version:   version,
		buildTime: buildTime,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		console:   output.NewConsole(),
	}
}

// load runs once before any command: it applies color settings, exports
// .env files and reads the user configuration.
func (a *app) load() error {
	if a.noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	if err := env.LoadFiles(a.envFiles...); err != nil {
		return usageError(err)
	}
	if a.cfg != nil {
		return nil
	}
	dir, err := config.Dir()
	if err != nil {
		return configError(err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return configError(err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) stdoutIsTerminal() bool {
	if a.isTerminal != nil {
		return a.isTerminal()
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (a *app) colorEnabled() bool {
	return a.stdoutIsTerminal() && !color.NoColor
}

// printer highlights output with the configured theme.
func (a *app) printer() *output.Printer {
	return output.NewPrinter(a.cfg.Theme(),
		output.WithOutput(a.stdout),
		output.WithColor(a.colorEnabled()))
}

// requestOptions returns the options shared by every request command.
func (a *app) requestOptions() http.Options {
	return http.Options{
		Verbose:          a.verbose,
		Theme:            a.cfg.Theme(),
		IsOutputTerminal: a.stdoutIsTerminal(),
		NoColor:          !a.colorEnabled(),
		OutputFilename:   a.outputFile,
		Timeout:          a.cfg.Timeout(),
	}
}

// openHistory opens the history database unless history is disabled. A
// database that cannot be opened only produces a warning.
func (a *app) openHistory() *history.Store {
	if a.noHistory || !a.cfg.HistoryEnabled() {
		return nil
	}
	store, err := history.OpenDir(a.cfg.Dir())
	if err != nil {
		a.console.Warn("history disabled: %v", err)
		return nil
	}
	return store
}

// newRunner builds a runner that records into store when it is not nil.
func (a *app) newRunner(store *history.Store) *runner.Runner {
	executor := http.NewExecutor(a.version)
	executor.Stdout = a.stdout

	opts := []runner.Option{
		runner.WithSender(executor),
		runner.WithConsole(a.console),
	}
	if a.prompter != nil {
		opts = append(opts, runner.WithPrompter(a.prompter))
	}
	if store != nil {
		opts = append(opts, runner.WithHistory(store))
	}
	return runner.New(opts...)
}

// report prints the outcome of an exchange on stderr.
func (a *app) report(result *http.Result) {
	if result == nil {
		return
	}
	a.console.Status(result.StatusCode, result.Status, result.Duration.Round(time.Millisecond), result.Bytes)
	if result.OutputPath != "" {
		a.console.Saved(result.OutputPath, result.Bytes)
	}
}
