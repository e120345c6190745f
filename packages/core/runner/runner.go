package runner

import (
	"context"
	"strings"

	"github.com/abdul-hamid-achik/apix/packages/core/env"
	"github.com/abdul-hamid-achik/apix/packages/history"
	"github.com/abdul-hamid-achik/apix/packages/http"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
	"github.com/abdul-hamid-achik/apix/packages/output"
	"github.com/abdul-hamid-achik/apix/packages/params"
	"github.com/abdul-hamid-achik/apix/packages/template"
)

// AdhocName is the history name of requests sent without a manifest.
const AdhocName = "adhoc"

// Recorder stores executed requests.
type Recorder interface {
	Record(ctx context.Context, e *history.Entry) error
}

// Sender executes rendered requests.
type Sender interface {
	Execute(ctx context.Context, req *http.Request) (*http.Result, error)
}

type Runner struct {
	renderer *Renderer
	prompter params.Prompter
	sender   Sender
	history  Recorder
	console  *output.Console
}

type Option func(*Runner)

func WithPrompter(p params.Prompter) Option {
	return func(r *Runner) {
		r.prompter = p
	}
}

func WithSender(s Sender) Option {
	return func(r *Runner) {
		r.sender = s
	}
}

// WithHistory records every executed request in rec. A nil recorder
// disables history.
func WithHistory(rec Recorder) Option {
	return func(r *Runner) {
		r.history = rec
	}
}

func WithConsole(c *output.Console) Option {
	return func(r *Runner) {
		r.console = c
	}
}

func WithEngine(e *template.Engine) Option {
	return func(r *Runner) {
		r.renderer = NewRenderer(e)
	}
}

func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.renderer == nil {
		r.renderer = NewRenderer(nil)
	}
	if r.prompter == nil {
		r.prompter = params.NewTerminalPrompter()
	}
	if r.sender == nil {
		r.sender = http.NewExecutor("")
	}
	if r.console == nil {
		r.console = output.NewConsole()
	}
	return r
}

// Input is one manifest execution.
type Input struct {
	Manifest *manifest.Manifest
	// Parameters are values given on the command line.
	Parameters map[string]string
	// Env is the template environment. Nil means the process environment.
	Env     map[string]string
	Options http.Options
}

// Exec resolves the manifest parameters, renders and sends the request.
// Nothing is sent when resolving or rendering fails.
func (r *Runner) Exec(ctx context.Context, in Input) (*http.Result, error) {
	spec, err := requestSpec(in.Manifest)
	if err != nil {
		return nil, err
	}

	resolver := params.NewResolver(r.prompter, params.WithDefinitions(spec.Definitions))
	values, err := resolver.Resolve(spec.Parameters, in.Parameters)
	if err != nil {
		return nil, err
	}

	environment := in.Env
	if environment == nil {
		environment = env.System()
	}

	req, err := r.renderer.Render(in.Manifest, values, environment, in.Options)
	if err != nil {
		return nil, err
	}
	return r.Send(ctx, in.Manifest.Name(), req)
}

// Send executes req and records it under name.
func (r *Runner) Send(ctx context.Context, name string, req *http.Request) (*http.Result, error) {
	result, err := r.sender.Execute(ctx, req)
	r.record(ctx, name, req, result, err)
	return result, err
}

func (r *Runner) record(ctx context.Context, name string, req *http.Request, result *http.Result, execErr error) {
	if r.history == nil {
		return
	}
	if name == "" {
		name = AdhocName
	}
	entry := &history.Entry{
		Name:   name,
		Method: strings.ToUpper(req.Method),
		URL:    req.URL,
	}
	if result != nil {
		entry.StatusCode = result.StatusCode
		entry.Duration = result.Duration
		entry.Bytes = result.Bytes
	}
	if execErr != nil {
		entry.Error = execErr.Error()
	}
	if err := r.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		r.console.Warn("could not record history: %v", err)
	}
}
